package nova

// Disposable revokes exactly the registration it was issued for. Dispose is
// idempotent: the second and later calls are no-ops and never affect other
// registrations. Disposables hold only a weak reference to the owning
// engine, so a live handle does not keep a dropped engine reachable and
// revokes silently once the engine is gone.
type Disposable interface {
	Dispose()
	Disposed() bool
}

type actionDisposable struct {
	action func()
}

func newActionDisposable(action func()) *actionDisposable {
	return &actionDisposable{action: action}
}

func (d *actionDisposable) Dispose() {
	if d.action == nil {
		return
	}
	action := d.action
	d.action = nil
	action()
}

func (d *actionDisposable) Disposed() bool {
	return d.action == nil
}

// CombineDisposables bundles several handles into one that disposes them
// all. It is used by bulk registrations such as AddRoutes and AddRouteChain.
func CombineDisposables(handles ...Disposable) Disposable {
	bundled := make([]Disposable, 0, len(handles))
	for _, h := range handles {
		if h != nil {
			bundled = append(bundled, h)
		}
	}
	if len(bundled) == 1 {
		return bundled[0]
	}
	return newActionDisposable(func() {
		for _, h := range bundled {
			h.Dispose()
		}
	})
}
