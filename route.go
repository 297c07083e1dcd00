package nova

import "slices"

// Route restricts a Transition with an optional guard. Multiple routes may
// exist for the same transition; each is stored under its own registration
// key so it can be revoked independently.
type Route[S, E comparable] struct {
	Transition Transition[S]
	Guard      Guard[S, E]
}

// NewRoute pairs a transition with a guard. A nil guard always passes.
func NewRoute[S, E comparable](t Transition[S], guard Guard[S, E]) Route[S, E] {
	return Route[S, E]{Transition: t, Guard: guard}
}

// FanIn routes any of fromStates into a single destination. It expands to
// the wildcard transition "any => to" gated by a membership check on the
// concrete from state, so callers avoid enumerating every pairwise
// transition.
func FanIn[S, E comparable](fromStates []S, to S) Route[S, E] {
	members := append([]S(nil), fromStates...)
	return Route[S, E]{
		Transition: To(to),
		Guard: func(c Context[S, E]) bool {
			return slices.Contains(members, c.From)
		},
	}
}

// FanOut routes a single origin into any of toStates, as "from => any"
// gated by a membership check on the concrete destination.
func FanOut[S, E comparable](from S, toStates []S) Route[S, E] {
	members := append([]S(nil), toStates...)
	return Route[S, E]{
		Transition: From(from),
		Guard: func(c Context[S, E]) bool {
			return slices.Contains(members, c.To)
		},
	}
}

// RouteChain is an ordered sequence of routes, one per adjacent pair of a
// TransitionChain, sharing one guard.
type RouteChain[S, E comparable] struct {
	routes []Route[S, E]
}

// NewRouteChain derives one route per adjacent transition of the chain, all
// sharing the given guard.
func NewRouteChain[S, E comparable](chain TransitionChain[S], guard Guard[S, E]) RouteChain[S, E] {
	transitions := chain.Transitions()
	routes := make([]Route[S, E], len(transitions))
	for i, t := range transitions {
		routes[i] = Route[S, E]{Transition: t, Guard: guard}
	}
	return RouteChain[S, E]{routes: routes}
}

// RouteChainOf builds a chain directly from routes. A single route yields a
// degenerate chain that behaves as an ordinary route plus handler. It
// panics when no routes are given.
func RouteChainOf[S, E comparable](routes ...Route[S, E]) RouteChain[S, E] {
	if len(routes) == 0 {
		panic("nova: route chain requires at least one route")
	}
	return RouteChain[S, E]{routes: append([]Route[S, E](nil), routes...)}
}

// Routes returns the ordered routes of the chain.
func (c RouteChain[S, E]) Routes() []Route[S, E] {
	return append([]Route[S, E](nil), c.routes...)
}

// Len is the number of transitions in the chain.
func (c RouteChain[S, E]) Len() int {
	return len(c.routes)
}
