package nova

import (
	"slices"
	"weak"

	"github.com/CarsonAurum/NovaStateMachine/internal/dispatch"
)

// NoEvent is the event type for machines driven purely by state requests.
type NoEvent struct{}

// StateRouteMapping resolves state-driven routes too irregular to express
// as a transition plus guard.
type StateRouteMapping[S comparable] func(from S, userInfo any) (S, bool)

type stateMappingEntry[S comparable] struct {
	key uint64
	fn  StateRouteMapping[S]
}

// StateMachine extends Machine with transition-keyed routes, handlers, and
// chain tracking, so transitions can be requested by target state as well
// as by event. State-driven resolution consults the transition-keyed tables
// first and then every event sub-table of the embedded Machine, so a route
// registered for any event also permits a direct state request.
type StateMachine[S, E comparable] struct {
	*Machine[S, E]

	stateRoutes   *routeTable[S, E]
	stateMappings []stateMappingEntry[S]
	stateHandlers map[Transition[S]]*dispatch.List[Context[S, E]]
}

// NewStateMachine creates a state machine in the given initial state and
// applies the optional configure callbacks before returning it.
func NewStateMachine[S, E comparable](initial S, configure ...func(*StateMachine[S, E])) *StateMachine[S, E] {
	sm := &StateMachine[S, E]{
		Machine:       NewMachine[S, E](initial),
		stateRoutes:   newRouteTable[S, E](),
		stateHandlers: make(map[Transition[S]]*dispatch.List[Context[S, E]]),
	}
	sm.Configure(configure...)
	return sm
}

// Configure applies the given callbacks to the state machine.
func (sm *StateMachine[S, E]) Configure(configure ...func(*StateMachine[S, E])) {
	for _, fn := range configure {
		if fn != nil {
			fn(sm)
		}
	}
}

// AddRoute registers a state-driven route. Optional handlers are registered
// alongside it under the wildcard transition, filtered to the transitions
// this route approves, so a wildcard route still observes the concrete
// transitions it permitted. The returned handle revokes the route and its
// handlers together.
func (sm *StateMachine[S, E]) AddRoute(route Route[S, E], handlers ...Handler[S, E]) Disposable {
	key := sm.nextRegistrationKey()
	sm.stateRoutes.insert(route.Transition, key, route.Guard)

	ref := weak.Make(sm)
	handle := newActionDisposable(func() {
		if s := ref.Value(); s != nil {
			s.stateRoutes.remove(route.Transition, key)
		}
	})
	if len(handlers) == 0 {
		return handle
	}

	bundle := make([]Disposable, 0, len(handlers)+1)
	bundle = append(bundle, handle)
	for _, h := range handlers {
		bundle = append(bundle, sm.AddHandler(AnyToAny[S](), routeFiltered(route, h)))
	}
	return CombineDisposables(bundle...)
}

// AddRoutes registers several state-driven routes and returns one handle
// revoking them all. It panics when no routes are given.
func (sm *StateMachine[S, E]) AddRoutes(routes ...Route[S, E]) Disposable {
	if len(routes) == 0 {
		panic("nova: AddRoutes requires at least one route")
	}
	bundle := make([]Disposable, len(routes))
	for i, r := range routes {
		bundle[i] = sm.AddRoute(r)
	}
	return CombineDisposables(bundle...)
}

// AddStateRouteMapping registers a free-form state-driven mapping consulted
// in registration order after the stored routes.
func (sm *StateMachine[S, E]) AddStateRouteMapping(fn StateRouteMapping[S]) Disposable {
	if fn == nil {
		panic("nova: route mapping must not be nil")
	}
	key := sm.nextRegistrationKey()
	sm.stateMappings = append(sm.stateMappings, stateMappingEntry[S]{key: key, fn: fn})

	ref := weak.Make(sm)
	return newActionDisposable(func() {
		s := ref.Value()
		if s == nil {
			return
		}
		s.stateMappings = slices.DeleteFunc(s.stateMappings, func(e stateMappingEntry[S]) bool {
			return e.key == key
		})
	})
}

// AddHandler registers a transition-keyed observer at DefaultHandlerOrder.
// Dispatch for a successful transition runs the handlers keyed to the exact
// concrete transition and those keyed to the wildcard transition.
func (sm *StateMachine[S, E]) AddHandler(t Transition[S], h Handler[S, E]) Disposable {
	return sm.AddHandlerWithOrder(t, DefaultHandlerOrder, h)
}

// AddHandlerWithOrder registers a transition-keyed observer at an explicit
// dispatch order.
func (sm *StateMachine[S, E]) AddHandlerWithOrder(t Transition[S], order int, h Handler[S, E]) Disposable {
	if h == nil {
		panic("nova: handler must not be nil")
	}
	key := sm.nextRegistrationKey()
	l := sm.stateHandlers[t]
	if l == nil {
		l = &dispatch.List[Context[S, E]]{}
		sm.stateHandlers[t] = l
	}
	l.Insert(order, key, h)

	ref := weak.Make(sm)
	return newActionDisposable(func() {
		s := ref.Value()
		if s == nil {
			return
		}
		if list := s.stateHandlers[t]; list != nil {
			list.Remove(key)
		}
	})
}

// HasRoute reports whether the transition from -> to would currently be
// approved, consulting the transition-keyed routes, every event sub-table,
// and finally the mappings.
func (sm *StateMachine[S, E]) HasRoute(from, to S, userInfo ...any) bool {
	return sm.approves(from, to, firstUserInfo(userInfo))
}

// CanTryState reports whether a transition from the current state to the
// given state would succeed, without transitioning.
func (sm *StateMachine[S, E]) CanTryState(to S, userInfo ...any) bool {
	return sm.approves(sm.state, to, firstUserInfo(userInfo))
}

// TryState attempts a state-driven transition to the given state. On
// success the stored state is mutated before any observer runs, then the
// transition-keyed handlers are dispatched. On failure nothing is mutated
// and the error handlers run instead, with To equal to the unchanged
// current state. The return value reports whether the machine transitioned.
func (sm *StateMachine[S, E]) TryState(to S, userInfo ...any) bool {
	ui := firstUserInfo(userInfo)
	from := sm.state
	if !sm.approves(from, to, ui) {
		sm.dispatchError(Context[S, E]{From: from, To: from, UserInfo: ui})
		return false
	}
	sm.state = to
	sm.dispatchTransition(Context[S, E]{From: from, To: to, UserInfo: ui})
	return true
}

// TryEvent attempts an event-driven transition. It resolves the destination
// exactly like Machine.TryEvent and additionally dispatches the
// transition-keyed handlers, so chain tracking observes event-driven
// transitions too.
func (sm *StateMachine[S, E]) TryEvent(event E, userInfo ...any) bool {
	ui := firstUserInfo(userInfo)
	dest, ok := sm.resolveEventDestination(event, ui)
	if !ok {
		sm.dispatchError(Context[S, E]{Event: &event, From: sm.state, To: sm.state, UserInfo: ui})
		return false
	}
	from := sm.state
	sm.state = dest
	ctx := Context[S, E]{Event: &event, From: from, To: dest, UserInfo: ui}
	sm.dispatchEvent(event, ctx)
	sm.dispatchTransition(ctx)
	return true
}

func (sm *StateMachine[S, E]) approves(from, to S, userInfo any) bool {
	return sm.stateRouteApproves(from, to, userInfo) ||
		sm.routeApproves(nil, from, to, userInfo) ||
		sm.stateMappingApproves(from, to, userInfo) ||
		sm.mappingApproves(nil, from, to, userInfo)
}

func (sm *StateMachine[S, E]) stateRouteApproves(from, to S, userInfo any) bool {
	ctx := Context[S, E]{From: from, To: to, UserInfo: userInfo}
	for _, k := range wildcardClosure(from, to) {
		if b := sm.stateRoutes.buckets[k]; b != nil && b.Approves(ctx) {
			return true
		}
	}
	return false
}

func (sm *StateMachine[S, E]) stateMappingApproves(from, to S, userInfo any) bool {
	for _, me := range sm.stateMappings {
		if dest, ok := me.fn(from, userInfo); ok && dest == to {
			return true
		}
	}
	return false
}

func (sm *StateMachine[S, E]) dispatchTransition(ctx Context[S, E]) {
	exact := sm.stateHandlers[Between(ctx.From, ctx.To)]
	wild := sm.stateHandlers[AnyToAny[S]()]
	dispatch.Run(dispatch.Merge(exact, wild), ctx)
}
