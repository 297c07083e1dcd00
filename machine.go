package nova

import (
	"slices"
	"weak"

	"github.com/google/uuid"

	"github.com/CarsonAurum/NovaStateMachine/internal/dispatch"
)

// RouteMapping resolves event-driven routes too irregular to express as a
// transition plus guard. Given the triggering event (nil for state-driven
// queries), the current state, and the caller payload, it returns the
// preferred destination and whether it applies. Mappings are consulted in
// registration order, after every stored route has been tried.
type RouteMapping[S, E comparable] func(event *E, from S, userInfo any) (S, bool)

type mappingEntry[S, E comparable] struct {
	key uint64
	fn  RouteMapping[S, E]
}

// routeTable is the per-event routing sub-table: transition key to guard
// bucket, with key insertion order retained so resolution walks the table
// reproducibly.
type routeTable[S, E comparable] struct {
	order   []Transition[S]
	buckets map[Transition[S]]*dispatch.Bucket[Context[S, E]]
}

func newRouteTable[S, E comparable]() *routeTable[S, E] {
	return &routeTable[S, E]{
		buckets: make(map[Transition[S]]*dispatch.Bucket[Context[S, E]]),
	}
}

func (t *routeTable[S, E]) insert(tr Transition[S], key uint64, guard Guard[S, E]) {
	b := t.buckets[tr]
	if b == nil {
		b = &dispatch.Bucket[Context[S, E]]{}
		t.buckets[tr] = b
		t.order = append(t.order, tr)
	}
	b.Insert(key, guard)
}

func (t *routeTable[S, E]) remove(tr Transition[S], key uint64) {
	b := t.buckets[tr]
	if b == nil {
		return
	}
	if b.Remove(key) && b.Empty() {
		delete(t.buckets, tr)
		if i := slices.Index(t.order, tr); i >= 0 {
			t.order = slices.Delete(t.order, i, i+1)
		}
	}
}

// Machine is the event-driven routing and dispatch engine. It stores
// permitted transitions keyed by event identity (including the wildcard
// event), free-form route mappings, and priority-ordered observer lists,
// and owns the current state as the single source of truth.
//
// A Machine is synchronous and single-owner: every mutation and every
// dispatch pass completes on the caller's goroutine before the initiating
// call returns. Handlers may re-enter the machine; nested attempts produce
// nested dispatch passes on the same call stack. Concurrent use from
// multiple goroutines requires external locking.
type Machine[S, E comparable] struct {
	id      string
	state   S
	nextKey uint64

	routeEvents []Identity[E]
	routes      map[Identity[E]]*routeTable[S, E]
	mappings    []mappingEntry[S, E]

	handlers      map[Identity[E]]*dispatch.List[Context[S, E]]
	errorHandlers dispatch.List[Context[S, E]]
}

// NewMachine creates an event-driven machine in the given initial state and
// applies the optional configure callbacks before returning it.
func NewMachine[S, E comparable](initial S, configure ...func(*Machine[S, E])) *Machine[S, E] {
	m := &Machine[S, E]{
		id:       uuid.NewString(),
		state:    initial,
		routes:   make(map[Identity[E]]*routeTable[S, E]),
		handlers: make(map[Identity[E]]*dispatch.List[Context[S, E]]),
	}
	m.Configure(configure...)
	return m
}

// ID returns the unique identifier of this machine instance, useful for
// correlating log output from several machines.
func (m *Machine[S, E]) ID() string {
	return m.id
}

// State returns the current state.
func (m *Machine[S, E]) State() S {
	return m.state
}

// Configure applies the given callbacks to the machine. It exists so setup
// can be grouped after construction the same way it can be at construction.
func (m *Machine[S, E]) Configure(configure ...func(*Machine[S, E])) {
	for _, fn := range configure {
		if fn != nil {
			fn(m)
		}
	}
}

func (m *Machine[S, E]) nextRegistrationKey() uint64 {
	m.nextKey++
	return m.nextKey
}

// AddRoute registers a route under the given event identity. Optional
// handlers are registered alongside it, filtered so they only observe
// transitions this route approves; they fire even when the route's
// transition is a wildcard pattern. The returned handle revokes the route
// and its handlers together.
func (m *Machine[S, E]) AddRoute(event Identity[E], route Route[S, E], handlers ...Handler[S, E]) Disposable {
	key := m.nextRegistrationKey()
	tbl := m.routes[event]
	if tbl == nil {
		tbl = newRouteTable[S, E]()
		m.routes[event] = tbl
		m.routeEvents = append(m.routeEvents, event)
	}
	tbl.insert(route.Transition, key, route.Guard)

	ref := weak.Make(m)
	handle := newActionDisposable(func() {
		mm := ref.Value()
		if mm == nil {
			return
		}
		if t := mm.routes[event]; t != nil {
			t.remove(route.Transition, key)
		}
	})
	if len(handlers) == 0 {
		return handle
	}

	bundle := make([]Disposable, 0, len(handlers)+1)
	bundle = append(bundle, handle)
	for _, h := range handlers {
		bundle = append(bundle, m.AddHandler(event, routeFiltered(route, h)))
	}
	return CombineDisposables(bundle...)
}

// AddRoutes registers several routes under one event identity and returns a
// single handle revoking them all. It panics when no routes are given.
func (m *Machine[S, E]) AddRoutes(event Identity[E], routes ...Route[S, E]) Disposable {
	if len(routes) == 0 {
		panic("nova: AddRoutes requires at least one route")
	}
	bundle := make([]Disposable, len(routes))
	for i, r := range routes {
		bundle[i] = m.AddRoute(event, r)
	}
	return CombineDisposables(bundle...)
}

// AddRouteMapping registers a free-form mapping consulted, in registration
// order, whenever no stored route approves a transition.
func (m *Machine[S, E]) AddRouteMapping(fn RouteMapping[S, E]) Disposable {
	if fn == nil {
		panic("nova: route mapping must not be nil")
	}
	key := m.nextRegistrationKey()
	m.mappings = append(m.mappings, mappingEntry[S, E]{key: key, fn: fn})

	ref := weak.Make(m)
	return newActionDisposable(func() {
		mm := ref.Value()
		if mm == nil {
			return
		}
		mm.mappings = slices.DeleteFunc(mm.mappings, func(e mappingEntry[S, E]) bool {
			return e.key == key
		})
	})
}

// AddHandler registers a transition observer for the given event identity
// at DefaultHandlerOrder.
func (m *Machine[S, E]) AddHandler(event Identity[E], h Handler[S, E]) Disposable {
	return m.AddHandlerWithOrder(event, DefaultHandlerOrder, h)
}

// AddHandlerWithOrder registers a transition observer for the given event
// identity at an explicit dispatch order.
func (m *Machine[S, E]) AddHandlerWithOrder(event Identity[E], order int, h Handler[S, E]) Disposable {
	if h == nil {
		panic("nova: handler must not be nil")
	}
	key := m.nextRegistrationKey()
	l := m.handlers[event]
	if l == nil {
		l = &dispatch.List[Context[S, E]]{}
		m.handlers[event] = l
	}
	l.Insert(order, key, h)

	ref := weak.Make(m)
	return newActionDisposable(func() {
		mm := ref.Value()
		if mm == nil {
			return
		}
		if list := mm.handlers[event]; list != nil {
			list.Remove(key)
		}
	})
}

// AddErrorHandler registers an observer for failed transition attempts at
// DefaultHandlerOrder.
func (m *Machine[S, E]) AddErrorHandler(h Handler[S, E]) Disposable {
	return m.AddErrorHandlerWithOrder(DefaultHandlerOrder, h)
}

// AddErrorHandlerWithOrder registers a failed-transition observer at an
// explicit dispatch order.
func (m *Machine[S, E]) AddErrorHandlerWithOrder(order int, h Handler[S, E]) Disposable {
	if h == nil {
		panic("nova: handler must not be nil")
	}
	key := m.nextRegistrationKey()
	m.errorHandlers.Insert(order, key, h)

	ref := weak.Make(m)
	return newActionDisposable(func() {
		if mm := ref.Value(); mm != nil {
			mm.errorHandlers.Remove(key)
		}
	})
}

// HasRoute reports whether the given transition would currently be approved
// for the event, consulting routes (with the four-way wildcard closure of
// the transition) and then mappings, without mutating anything.
func (m *Machine[S, E]) HasRoute(event E, from, to S, userInfo ...any) bool {
	ui := firstUserInfo(userInfo)
	return m.routeApproves(&event, from, to, ui) || m.mappingApproves(&event, from, to, ui)
}

// CanTryEvent resolves the destination the machine would move to for the
// event from the current state, without transitioning.
func (m *Machine[S, E]) CanTryEvent(event E, userInfo ...any) (S, bool) {
	return m.resolveEventDestination(event, firstUserInfo(userInfo))
}

// TryEvent attempts an event-driven transition. On success the stored state
// is mutated before any observer runs, then the handlers registered for the
// exact event and for the wildcard event are dispatched in order with a
// Context carrying the concrete endpoints. On failure nothing is mutated
// and the error handlers are dispatched instead, with To equal to the
// unchanged current state. The return value reports whether the machine
// transitioned.
func (m *Machine[S, E]) TryEvent(event E, userInfo ...any) bool {
	ui := firstUserInfo(userInfo)
	dest, ok := m.resolveEventDestination(event, ui)
	if !ok {
		m.dispatchError(Context[S, E]{Event: &event, From: m.state, To: m.state, UserInfo: ui})
		return false
	}
	from := m.state
	m.state = dest
	m.dispatchEvent(event, Context[S, E]{Event: &event, From: from, To: dest, UserInfo: ui})
	return true
}

// routeApproves walks every candidate sub-table (the exact event's and the
// wildcard event's when an event is given, all of them otherwise) and tries
// each wildcard-closure key present in it. The first passing guard wins.
func (m *Machine[S, E]) routeApproves(event *E, from, to S, userInfo any) bool {
	ctx := Context[S, E]{Event: event, From: from, To: to, UserInfo: userInfo}
	keys := wildcardClosure(from, to)
	for _, ek := range m.routeEvents {
		if event != nil && !ek.Matches(*event) {
			continue
		}
		tbl := m.routes[ek]
		for _, k := range keys {
			if b := tbl.buckets[k]; b != nil && b.Approves(ctx) {
				return true
			}
		}
	}
	return false
}

func (m *Machine[S, E]) mappingApproves(event *E, from, to S, userInfo any) bool {
	for _, me := range m.mappings {
		if dest, ok := me.fn(event, from, userInfo); ok && dest == to {
			return true
		}
	}
	return false
}

// resolveEventDestination finds the destination for an event from the
// current state: first a stored route whose from side matches the current
// state and whose to side is concrete, then the mappings in registration
// order. Wildcard-destination routes cannot name a state and are skipped.
func (m *Machine[S, E]) resolveEventDestination(event E, userInfo any) (S, bool) {
	from := m.state
	for _, ek := range m.routeEvents {
		if !ek.Matches(event) {
			continue
		}
		tbl := m.routes[ek]
		for _, tk := range tbl.order {
			if !tk.From.Matches(from) {
				continue
			}
			dest, concrete := tk.To.Value()
			if !concrete {
				continue
			}
			ctx := Context[S, E]{Event: &event, From: from, To: dest, UserInfo: userInfo}
			if tbl.buckets[tk].Approves(ctx) {
				return dest, true
			}
		}
	}
	for _, me := range m.mappings {
		if dest, ok := me.fn(&event, from, userInfo); ok {
			return dest, true
		}
	}
	var zero S
	return zero, false
}

func (m *Machine[S, E]) dispatchEvent(event E, ctx Context[S, E]) {
	merged := dispatch.Merge(m.handlers[Exact(event)], m.handlers[Any[E]()])
	dispatch.Run(merged, ctx)
}

func (m *Machine[S, E]) dispatchError(ctx Context[S, E]) {
	dispatch.Run(m.errorHandlers.Entries(), ctx)
}

// wildcardClosure lists the four table keys a concrete transition may be
// stored under.
func wildcardClosure[S comparable](from, to S) [4]Transition[S] {
	return [4]Transition[S]{
		{From: Exact(from), To: Exact(to)},
		{From: Exact(from), To: Any[S]()},
		{From: Any[S](), To: Exact(to)},
		{From: Any[S](), To: Any[S]()},
	}
}

// routeFiltered narrows a handler to the transitions a specific route
// approves, so route-attached handlers observe only their own route even
// when it is registered under a wildcard key.
func routeFiltered[S, E comparable](route Route[S, E], h Handler[S, E]) Handler[S, E] {
	return func(c Context[S, E]) {
		if !route.Transition.Matches(c.From, c.To) {
			return
		}
		if route.Guard != nil && !route.Guard(c) {
			return
		}
		h(c)
	}
}

func firstUserInfo(userInfo []any) any {
	if len(userInfo) == 0 {
		return nil
	}
	return userInfo[0]
}
