package nova

// Dispatch bands for the handlers a chain registration installs. The arm
// handler must run before the per-transition handlers, the wildcard watcher
// after all of them, and the completion check last of all.
const (
	chainArmOrder   = DefaultHandlerOrder + 10
	chainStepOrder  = DefaultHandlerOrder + 20
	chainWatchOrder = DefaultHandlerOrder + 30
	chainFinalOrder = DefaultHandlerOrder + 40
)

// chainProgress is the private counter state of one chain registration.
// matched counts chain transitions taken in order, observed counts every
// actual transition while armed; the chain is broken the moment matched
// falls behind observed. counted latches the per-pass matched increment so
// a chain containing the same transition twice counts it once per pass.
type chainProgress struct {
	armed    bool
	matched  int
	observed int
	counted  bool
}

func (p *chainProgress) reset() {
	p.armed = false
	p.matched = 0
	p.observed = 0
	p.counted = false
}

// AddRouteChain registers every route of the chain plus a chain handler
// fired when the whole sequence occurs back to back. One handle revokes all
// of it.
func (sm *StateMachine[S, E]) AddRouteChain(chain RouteChain[S, E], handler Handler[S, E]) Disposable {
	routes := chain.Routes()
	if len(routes) == 0 {
		panic("nova: route chain requires at least one route")
	}
	bundle := make([]Disposable, 0, len(routes)+1)
	for _, r := range routes {
		bundle = append(bundle, sm.AddRoute(r))
	}
	bundle = append(bundle, sm.AddChainHandler(chain, handler))
	return CombineDisposables(bundle...)
}

// AddChainHandler fires handler when every transition of the chain occurs
// consecutively, with no unmatched transition in between. It does not
// register the chain's routes; pair it with AddRoutes or use AddRouteChain.
func (sm *StateMachine[S, E]) AddChainHandler(chain RouteChain[S, E], handler Handler[S, E]) Disposable {
	return sm.addChainTracking(chain, handler, nil)
}

// AddChainErrorHandler fires handler when an armed chain is broken by a
// transition outside the expected sequence.
func (sm *StateMachine[S, E]) AddChainErrorHandler(chain RouteChain[S, E], handler Handler[S, E]) Disposable {
	return sm.addChainTracking(chain, nil, handler)
}

// addChainTracking installs the counter group detecting one chain: an arm
// handler on the first transition, one matched-counter per chain position,
// a wildcard watcher that counts every transition and detects deviation,
// and a completion check on the last transition. Each registration owns its
// counters, so re-entrant transitions driving an unrelated chain cannot
// corrupt this one.
func (sm *StateMachine[S, E]) addChainTracking(chain RouteChain[S, E], onComplete, onBreak Handler[S, E]) Disposable {
	routes := chain.Routes()
	if len(routes) == 0 {
		panic("nova: route chain requires at least one route")
	}
	total := len(routes)
	first := routes[0].Transition
	last := routes[total-1].Transition
	progress := &chainProgress{}

	// Everything is keyed to the wildcard transition and filtered by
	// Transition.Matches, so chains containing wildcard links are tracked
	// the same way as fully concrete ones.
	bundle := make([]Disposable, 0, total+3)

	// The first transition restarts tracking, even mid-chain.
	bundle = append(bundle, sm.AddHandlerWithOrder(AnyToAny[S](), chainArmOrder, func(c Context[S, E]) {
		if first.Matches(c.From, c.To) {
			progress.reset()
			progress.armed = true
		}
	}))

	for _, r := range routes {
		tr, guard := r.Transition, r.Guard
		bundle = append(bundle, sm.AddHandlerWithOrder(AnyToAny[S](), chainStepOrder, func(c Context[S, E]) {
			if !progress.armed || progress.counted || !tr.Matches(c.From, c.To) {
				return
			}
			if guard != nil && !guard(c) {
				return
			}
			progress.matched++
			progress.counted = true
		}))
	}

	bundle = append(bundle, sm.AddHandlerWithOrder(AnyToAny[S](), chainWatchOrder, func(c Context[S, E]) {
		if !progress.armed {
			return
		}
		progress.observed++
		progress.counted = false
		if progress.matched < progress.observed {
			progress.reset()
			if onBreak != nil {
				onBreak(c)
			}
		}
	}))

	bundle = append(bundle, sm.AddHandlerWithOrder(AnyToAny[S](), chainFinalOrder, func(c Context[S, E]) {
		if !progress.armed || !last.Matches(c.From, c.To) || progress.matched != total || progress.observed != total {
			return
		}
		progress.reset()
		if onComplete != nil {
			onComplete(c)
		}
	}))

	return CombineDisposables(bundle...)
}
