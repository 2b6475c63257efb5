package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// State represents a state in the state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// Action executes side effects during state transitions. Returning an error prevents the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // All must pass for transition to proceed
	Actions []Action // Executed in order before state change
}

// StateMachine defines the core finite state machine operations.
type StateMachine interface {
	Current() State
	Fire(ctx context.Context, event Event, data any) error
	CanFire(ctx context.Context, event Event, data any) bool
	Reset()
}

// StringState provides a simple string-based state implementation.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based event implementation.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}

// machine is a thread-safe in-memory state machine.
// Transitions are indexed as [fromState][event][]Transition.
type machine struct {
	initialState State
	currentState State
	transitions  map[string]map[string][]Transition
	mu           sync.RWMutex
}

func (sm *machine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

func (sm *machine) addTransition(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}

	byEvent, ok := sm.transitions[t.From.Name()]
	if !ok {
		byEvent = make(map[string][]Transition)
		sm.transitions[t.From.Name()] = byEvent
	}
	// Several transitions per from/event pair allow guard-based branching.
	byEvent[t.Event.Name()] = append(byEvent[t.Event.Name()], t)
	return nil
}

func (sm *machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	current := sm.currentState.Name()
	candidates := sm.transitions[current][event.Name()]
	if len(candidates) == 0 {
		return NewErrNoTransitionAvailable(current, event.Name())
	}

	t := sm.firstAllowed(ctx, candidates, event, data)
	if t == nil {
		return NewErrTransitionRejected(current, event.Name())
	}

	for _, action := range t.Actions {
		if err := action(ctx, sm.currentState, t.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	sm.currentState = t.To
	return nil
}

func (sm *machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	candidates := sm.transitions[sm.currentState.Name()][event.Name()]
	return sm.firstAllowed(ctx, candidates, event, data) != nil
}

func (sm *machine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = sm.initialState
}

// Must be called with lock held. The first transition whose guards all pass wins.
func (sm *machine) firstAllowed(ctx context.Context, candidates []Transition, event Event, data any) *Transition {
	for i, t := range candidates {
		allowed := true
		for _, guard := range t.Guards {
			if !guard(ctx, sm.currentState, event, data) {
				allowed = false
				break
			}
		}
		if allowed {
			return &candidates[i]
		}
	}
	return nil
}
