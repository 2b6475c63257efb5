// Package statemachine implements a small finite state machine with guarded
// transitions and side-effect actions.
//
//	const (
//	    Requested = statemachine.StringState("requested")
//	    Sent      = statemachine.StringState("sent")
//	    Deliver   = statemachine.StringEvent("deliver")
//	)
//
//	sm := statemachine.MustNew(Requested,
//	    statemachine.WithTransition(Requested, Sent, Deliver,
//	        statemachine.WithAction(logTransition)),
//	)
//	err := sm.Fire(ctx, Deliver, nil)
//
// Firing an event without a matching transition returns
// *ErrNoTransitionAvailable; when every candidate is blocked by its guards
// the error is *ErrTransitionRejected. An action error aborts the transition
// and leaves the current state unchanged.
package statemachine
