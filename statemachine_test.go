package nova

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noGuardRoute(tr Transition[testState]) Route[testState, NoEvent] {
	return NewRoute[testState, NoEvent](tr, nil)
}

func TestStateMachineBasicRouting(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(Between(s0, s1)))
	})

	assert.True(t, sm.CanTryState(s1))
	assert.False(t, sm.CanTryState(s2))

	require.True(t, sm.TryState(s1))
	assert.Equal(t, s1, sm.State())

	require.False(t, sm.TryState(s1), "route is directional and already consumed its from state")
	assert.Equal(t, s1, sm.State())
}

// Mirrors the canonical usage scenario: wildcard routes in both directions
// with payload-recording handlers, then a rejected attempt.
func TestStateMachineScenario(t *testing.T) {
	t.Parallel()

	var intoS2, outOfS2 []any
	var failures []noCtx

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(Between(s0, s1)))
		sm.AddRoute(noGuardRoute(To(s2)), func(c noCtx) { intoS2 = append(intoS2, c.UserInfo) })
		sm.AddRoute(noGuardRoute(From(s2)), func(c noCtx) { outOfS2 = append(outOfS2, c.UserInfo) })
		sm.AddErrorHandler(func(c noCtx) { failures = append(failures, c) })
	})

	require.True(t, sm.TryState(s1))
	assert.Equal(t, s1, sm.State())

	require.True(t, sm.TryState(s2, "Hello"))
	assert.Equal(t, s2, sm.State())
	assert.Equal(t, []any{"Hello"}, intoS2)

	require.True(t, sm.TryState(s1, "Bye"))
	assert.Equal(t, s1, sm.State())
	assert.Equal(t, []any{"Bye"}, outOfS2)

	require.False(t, sm.TryState(s0))
	assert.Equal(t, s1, sm.State())
	require.Len(t, failures, 1)
	assert.Equal(t, s1, failures[0].From)
	assert.Equal(t, s1, failures[0].To)
}

func TestStateMachineNoRouteFiresOnlyErrorHandlers(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0)
	handled, failed := 0, 0
	sm.AddHandler(AnyToAny[testState](), func(noCtx) { handled++ })
	sm.AddErrorHandler(func(noCtx) { failed++ })

	for _, to := range []testState{s1, s2, s3} {
		require.False(t, sm.TryState(to))
	}

	assert.Equal(t, s0, sm.State())
	assert.Zero(t, handled)
	assert.Equal(t, 3, failed)
}

func TestStateMachineWildcardRoutes(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(From(s0)))
	})

	assert.True(t, sm.HasRoute(s0, s1))
	assert.True(t, sm.HasRoute(s0, s3))
	assert.False(t, sm.HasRoute(s1, s3))

	sm2 := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(To(s2)))
	})

	assert.True(t, sm2.HasRoute(s0, s2))
	assert.True(t, sm2.HasRoute(s3, s2))
	assert.False(t, sm2.HasRoute(s0, s1))
}

func TestStateMachineGuardedRoute(t *testing.T) {
	t.Parallel()

	open := false
	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(NewRoute(Between(s0, s1), func(noCtx) bool { return open }))
	})

	assert.False(t, sm.TryState(s1), "a failing guard is equivalent to no route")
	open = true
	assert.True(t, sm.TryState(s1))
}

func TestStateMachineFanInRoute(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoutes(
			noGuardRoute(From(s0)),
			FanIn[testState, NoEvent]([]testState{s1, s2}, s3),
		)
	})

	require.True(t, sm.TryState(s1))
	require.True(t, sm.HasRoute(s1, s3))
	assert.False(t, sm.HasRoute(s0, s3), "fan-in admits only its member origins")
	require.True(t, sm.TryState(s3))
	assert.Equal(t, s3, sm.State())
}

func TestStateMachineHandlerOrdering(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(Between(s0, s1)))
	})

	var fired []string
	sm.AddHandlerWithOrder(Between(s0, s1), 20, func(noCtx) { fired = append(fired, "late") })
	sm.AddHandlerWithOrder(Between(s0, s1), 10, func(noCtx) { fired = append(fired, "early") })

	require.True(t, sm.TryState(s1))
	assert.Equal(t, []string{"early", "late"}, fired)
}

func TestStateMachineEqualOrderFiresInRegistrationOrder(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(Between(s0, s1)))
	})

	var fired []int
	for i := range 4 {
		sm.AddHandler(Between(s0, s1), func(noCtx) { fired = append(fired, i) })
	}

	require.True(t, sm.TryState(s1))
	assert.Equal(t, []int{0, 1, 2, 3}, fired)
}

func TestStateMachineHandlersObserveConcreteStates(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(From(s0)))
	})

	var got []noCtx
	sm.AddHandler(AnyToAny[testState](), func(c noCtx) { got = append(got, c) })

	require.True(t, sm.TryState(s2))
	require.Len(t, got, 1)
	assert.Equal(t, s0, got[0].From)
	assert.Equal(t, s2, got[0].To, "wildcard routes still dispatch concrete endpoints")
}

func TestStateMachineStateRouteMapping(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0)
	sm.AddStateRouteMapping(func(from testState, userInfo any) (testState, bool) {
		if from == s0 && userInfo == "up" {
			return s1, true
		}
		return "", false
	})

	assert.False(t, sm.CanTryState(s1))
	assert.True(t, sm.CanTryState(s1, "up"))
	assert.False(t, sm.CanTryState(s2, "up"), "mapping approves only its preferred destination")

	require.True(t, sm.TryState(s1, "up"))
	assert.Equal(t, s1, sm.State())
}

func TestStateMachineEventRoutesServeStateQueries(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, testEvent](s0)
	sm.Machine.AddRoute(Exact(evGo), NewRoute[testState, testEvent](Between(s0, s1), nil))

	assert.True(t, sm.HasRoute(s0, s1), "state-driven queries consult every event sub-table")
	require.True(t, sm.TryState(s1))
}

func TestStateMachineTryEventDispatchesTransitionHandlers(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, testEvent](s0)
	sm.Machine.AddRoute(Exact(evGo), NewRoute[testState, testEvent](Between(s0, s1), nil))

	var byEvent, byTransition int
	sm.Machine.AddHandler(Exact(evGo), func(Context[testState, testEvent]) { byEvent++ })
	sm.AddHandler(Between(s0, s1), func(Context[testState, testEvent]) { byTransition++ })

	require.True(t, sm.TryEvent(evGo))
	assert.Equal(t, s1, sm.State())
	assert.Equal(t, 1, byEvent)
	assert.Equal(t, 1, byTransition)
}

func TestStateMachineRevocation(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0)
	route := sm.AddRoute(noGuardRoute(Between(s0, s1)))
	keep := sm.AddRoute(noGuardRoute(Between(s0, s2)))

	fired := 0
	handler := sm.AddHandler(AnyToAny[testState](), func(noCtx) { fired++ })

	route.Dispose()
	assert.True(t, route.Disposed())
	assert.False(t, sm.CanTryState(s1), "a revoked route never approves again")

	route.Dispose() // second call is a no-op
	assert.True(t, sm.CanTryState(s2), "revocation must not affect other registrations")
	assert.False(t, keep.Disposed())

	require.True(t, sm.TryState(s2))
	assert.Equal(t, 1, fired)

	handler.Dispose()
	sm.AddRoute(noGuardRoute(Between(s2, s0)))
	require.True(t, sm.TryState(s0))
	assert.Equal(t, 1, fired, "a revoked handler never fires again")
}

func TestStateMachineBundledRevocation(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0)
	var seen int
	handle := sm.AddRoute(noGuardRoute(From(s0)), func(noCtx) { seen++ })

	require.True(t, sm.TryState(s1))
	assert.Equal(t, 1, seen)

	handle.Dispose()
	sm.AddRoute(noGuardRoute(From(s1)))
	require.True(t, sm.TryState(s2))
	assert.Equal(t, 1, seen, "disposing the route also revokes its attached handler")
	assert.False(t, sm.HasRoute(s0, s1))
}

func TestStateMachineReentrantDispatch(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(Between(s0, s1)))
		sm.AddRoute(noGuardRoute(Between(s1, s2)))
	})

	var order []testState
	sm.AddHandlerWithOrder(Between(s0, s1), 10, func(noCtx) {
		require.True(t, sm.TryState(s2), "handlers may re-enter the machine")
	})
	sm.AddHandler(AnyToAny[testState](), func(c noCtx) { order = append(order, c.To) })

	require.True(t, sm.TryState(s1))
	assert.Equal(t, s2, sm.State())
	// The nested pass for s1->s2 completes inside the outer pass for s0->s1.
	assert.Equal(t, []testState{s2, s1}, order)
}

func TestStateMachineSelfTransition(t *testing.T) {
	t.Parallel()

	sm := NewStateMachine[testState, NoEvent](s0, func(sm *StateMachine[testState, NoEvent]) {
		sm.AddRoute(noGuardRoute(Between(s0, s0)))
	})

	count := 0
	sm.AddHandler(Between(s0, s0), func(noCtx) { count++ })

	require.True(t, sm.TryState(s0))
	assert.Equal(t, s0, sm.State())
	assert.Equal(t, 1, count)
}
