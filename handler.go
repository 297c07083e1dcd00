package nova

// Guard is a predicate over a transition Context deciding whether a Route
// applies. A nil Guard always passes.
type Guard[S, E comparable] func(Context[S, E]) bool

// Handler observes a successful or failed transition.
type Handler[S, E comparable] func(Context[S, E])

// DefaultHandlerOrder is the dispatch order used by registrations that do
// not specify one. Handlers fire in non-decreasing order; among handlers of
// equal order on the same key, registration order is preserved.
const DefaultHandlerOrder = 100
