package nova

// Context is the read-only snapshot passed to guards and handlers: the
// triggering event (nil for state-driven transitions), the concrete from
// and to states, and an optional caller-supplied payload.
//
// On a successful transition From and To are the concrete endpoints, never
// wildcards. On a failed attempt both equal the unchanged current state.
type Context[S, E comparable] struct {
	Event    *E
	From     S
	To       S
	UserInfo any
}

// HasEvent reports whether the transition was driven by an event.
func (c Context[S, E]) HasEvent() bool {
	return c.Event != nil
}
