package notification

import (
	"context"
	"errors"

	"github.com/dmitrymomot/notifycenter/pkg/statemachine"
)

// State is the lifecycle position of a single delivery.
type State string

const (
	StateRequested        State = "requested"
	StateLanguageResolved State = "language_resolved"
	StatePayloadAssembled State = "payload_assembled"
	StateSent             State = "sent"
	StateFailed           State = "failed"
	StateSkipped          State = "skipped"
	StateLanguageMissing  State = "language_missing"
)

func (s State) Name() string { return string(s) }

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateSent, StateFailed, StateSkipped, StateLanguageMissing:
		return true
	}
	return false
}

const (
	eventResolveLanguage = statemachine.StringEvent("resolve_language")
	eventLanguageMissing = statemachine.StringEvent("language_missing")
	eventAssemble        = statemachine.StringEvent("assemble")
	eventDeliver         = statemachine.StringEvent("deliver")
	eventFail            = statemachine.StringEvent("fail")
	eventSkip            = statemachine.StringEvent("skip")
)

// eventTo maps a target state to the event that reaches it.
var eventTo = map[State]statemachine.Event{
	StateLanguageResolved: eventResolveLanguage,
	StateLanguageMissing:  eventLanguageMissing,
	StatePayloadAssembled: eventAssemble,
	StateSent:             eventDeliver,
	StateFailed:           eventFail,
	StateSkipped:          eventSkip,
}

// ErrInvalidTransition is returned by Progress.Advance for moves the lifecycle does not allow.
var ErrInvalidTransition = errors.New("notification: invalid state transition")

// TransitionFunc observes every state change of a delivery.
type TransitionFunc func(ctx context.Context, from, to State)

// Progress tracks one delivery through
// requested → language_resolved → payload_assembled → sent | failed,
// with the short cuts requested → skipped and requested → language_missing.
// A nil *Progress ignores every call, so gateways can be used without one.
type Progress struct {
	sm statemachine.StateMachine
}

// NewProgress starts a delivery in StateRequested. onTransition may be nil.
func NewProgress(onTransition TransitionFunc) *Progress {
	var opts []statemachine.TransitionOption
	if onTransition != nil {
		opts = append(opts, statemachine.WithAction(
			func(ctx context.Context, from, to statemachine.State, _ statemachine.Event, _ any) error {
				onTransition(ctx, from.(State), to.(State))
				return nil
			}))
	}

	edge := func(from, to State) statemachine.Option {
		return statemachine.WithTransition(from, to, eventTo[to], opts...)
	}

	return &Progress{sm: statemachine.MustNew(StateRequested,
		edge(StateRequested, StateLanguageResolved),
		edge(StateRequested, StateLanguageMissing),
		edge(StateRequested, StateSkipped),
		edge(StateLanguageResolved, StatePayloadAssembled),
		edge(StatePayloadAssembled, StateSent),
		edge(StateRequested, StateFailed),
		edge(StateLanguageResolved, StateFailed),
		edge(StatePayloadAssembled, StateFailed),
	)}
}

// Current returns the current state; StateRequested for a nil Progress.
func (p *Progress) Current() State {
	if p == nil {
		return StateRequested
	}
	return p.sm.Current().(State)
}

// Advance moves the delivery to state to.
func (p *Progress) Advance(ctx context.Context, to State) error {
	if p == nil {
		return nil
	}
	ev, ok := eventTo[to]
	if !ok || !p.sm.CanFire(ctx, ev, nil) {
		return errors.Join(ErrInvalidTransition, errors.New(string(p.Current())+" -> "+string(to)))
	}
	return p.sm.Fire(ctx, ev, nil)
}

// finish drives the delivery to its terminal state according to the gateway result.
func (p *Progress) finish(ctx context.Context, sendErr error) State {
	switch {
	case sendErr == nil:
		for !p.Current().Terminal() {
			next := StateSent
			switch p.Current() {
			case StateRequested:
				next = StateLanguageResolved
			case StateLanguageResolved:
				next = StatePayloadAssembled
			}
			if p.Advance(ctx, next) != nil {
				break
			}
		}
	case errors.Is(sendErr, ErrLanguageNotFound) && p.Current() == StateRequested:
		_ = p.Advance(ctx, StateLanguageMissing)
	case !p.Current().Terminal():
		_ = p.Advance(ctx, StateFailed)
	}
	return p.Current()
}
