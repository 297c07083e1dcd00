package nova

import "fmt"

// Transition is an ordered (from, to) pair of state identities. Either side
// may be the wildcard. Transitions are comparable and serve both as request
// descriptors and as routing-table keys.
type Transition[S comparable] struct {
	From Identity[S]
	To   Identity[S]
}

// NewTransition builds a transition from two identities.
func NewTransition[S comparable](from, to Identity[S]) Transition[S] {
	return Transition[S]{From: from, To: to}
}

// Between builds a transition between two concrete states.
func Between[S comparable](from, to S) Transition[S] {
	return Transition[S]{From: Exact(from), To: Exact(to)}
}

// From builds a transition out of a concrete state into any state.
func From[S comparable](from S) Transition[S] {
	return Transition[S]{From: Exact(from), To: Any[S]()}
}

// To builds a transition from any state into a concrete state.
func To[S comparable](to S) Transition[S] {
	return Transition[S]{From: Any[S](), To: Exact(to)}
}

// AnyToAny builds the fully wildcard transition.
func AnyToAny[S comparable]() Transition[S] {
	return Transition[S]{From: Any[S](), To: Any[S]()}
}

// To continues fluent construction: Exact(a).To(Exact(b)).
func (i Identity[T]) To(to Identity[T]) Transition[T] {
	return Transition[T]{From: i, To: to}
}

// Matches reports whether a concrete (from, to) pair satisfies the
// transition pattern.
func (t Transition[S]) Matches(from, to S) bool {
	return t.From.Matches(from) && t.To.Matches(to)
}

// Then extends the transition into a three-state chain.
func (t Transition[S]) Then(next Identity[S]) TransitionChain[S] {
	return TransitionChain[S]{states: []Identity[S]{t.From, t.To, next}}
}

func (t Transition[S]) String() string {
	return fmt.Sprintf("%s => %s", t.From, t.To)
}

// TransitionChain is an ordered sequence of at least two state identities,
// describing the adjacent transitions that must occur back to back.
type TransitionChain[S comparable] struct {
	states []Identity[S]
}

// NewChain builds a chain from concrete states. It panics when fewer than
// two states are given.
func NewChain[S comparable](states ...S) TransitionChain[S] {
	if len(states) < 2 {
		panic("nova: transition chain requires at least two states")
	}
	ids := make([]Identity[S], len(states))
	for i, s := range states {
		ids[i] = Exact(s)
	}
	return TransitionChain[S]{states: ids}
}

// ChainOf builds a chain from identities, allowing wildcard members. It
// panics when fewer than two identities are given.
func ChainOf[S comparable](states ...Identity[S]) TransitionChain[S] {
	if len(states) < 2 {
		panic("nova: transition chain requires at least two states")
	}
	return TransitionChain[S]{states: append([]Identity[S](nil), states...)}
}

// Then appends one more state to the chain.
func (c TransitionChain[S]) Then(next Identity[S]) TransitionChain[S] {
	states := make([]Identity[S], 0, len(c.states)+1)
	states = append(states, c.states...)
	states = append(states, next)
	return TransitionChain[S]{states: states}
}

// Len is the number of transitions the chain implies.
func (c TransitionChain[S]) Len() int {
	if len(c.states) == 0 {
		return 0
	}
	return len(c.states) - 1
}

// Transitions derives the ordered adjacent transitions of the chain.
func (c TransitionChain[S]) Transitions() []Transition[S] {
	if len(c.states) < 2 {
		return nil
	}
	out := make([]Transition[S], len(c.states)-1)
	for i := range out {
		out[i] = Transition[S]{From: c.states[i], To: c.states[i+1]}
	}
	return out
}
