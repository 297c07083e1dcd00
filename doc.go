// Package nova provides a generic finite-state routing and dispatch engine
// for Go.
//
// Nova drives state-dependent behavior in a host application without the
// host re-implementing transition validation, guard evaluation, or
// notification ordering. It is an in-process library with no background
// goroutines, timers, or I/O: every query, transition, and observer runs
// synchronously on the caller's goroutine.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Identity
//  2. Transition and Route
//  3. Machine and StateMachine
//  4. Handler
//  5. Disposable
//
// # Identity
//
// An Identity wraps a concrete state or event value, or the wildcard "any".
// Routes built from wildcard identities match whole families of
// transitions: "from => any" permits every transition out of a state,
// "any => to" every transition into one.
//
// # Transition and Route
//
// A Transition is an ordered (from, to) pair of identities; a Route is a
// Transition plus an optional Guard predicate evaluated against the
// transition Context at resolution time. TransitionChain and RouteChain
// describe ordered sequences that must occur back to back.
//
// # Machine and StateMachine
//
// Machine is the event-driven engine: routes are keyed by event identity
// and transitions are requested with TryEvent. StateMachine extends it with
// transition-keyed routes, TryState, and chain detection, so transitions
// can also be requested directly by target state:
//
//	sm := nova.NewStateMachine[State, nova.NoEvent](StateIdle)
//	sm.AddRoute(nova.NewRoute[State, nova.NoEvent](nova.Between(StateIdle, StateRunning), nil))
//	sm.AddHandler(nova.Between(StateIdle, StateRunning), func(c nova.Context[State, nova.NoEvent]) {
//		fmt.Println("started")
//	})
//
//	sm.TryState(StateRunning) // true, handler fired
//
// A failed attempt mutates nothing, returns false, and dispatches the
// error-handler list instead.
//
// # Handler
//
// Handlers observe transitions in non-decreasing dispatch order; handlers
// of equal order fire in registration order. Dispatch for one transition
// merges the handlers keyed to the exact event or transition with those
// keyed to the wildcard. LoggingHandler, ErrorLoggingHandler, and Metrics
// provide ready-made observers for logging and counting.
//
// # Disposable
//
// Every registration returns a Disposable whose Dispose revokes exactly
// that registration, idempotently. Handles reference their engine weakly,
// so outstanding handles neither leak a dropped engine nor fail after it is
// gone.
//
// # Chains
//
// AddRouteChain, AddChainHandler, and AddChainErrorHandler detect whether a
// fixed sequence of transitions occurs consecutively, firing a success or
// failure callback once it completes or deviates. Progress counters are
// private to each registration, so independent chains never interfere.
//
// # Concurrency
//
// A machine is not safe for unsynchronized concurrent use; callers needing
// that add external locking. Handlers may re-enter the machine, producing
// nested dispatch passes on the same call stack.
package nova
