package nova

import (
	"runtime"
	"testing"
	"weak"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionDisposableIsIdempotent(t *testing.T) {
	t.Parallel()

	calls := 0
	d := newActionDisposable(func() { calls++ })

	require.False(t, d.Disposed())
	d.Dispose()
	d.Dispose()
	assert.Equal(t, 1, calls)
	assert.True(t, d.Disposed())
}

func TestCombineDisposables(t *testing.T) {
	t.Parallel()

	calls := 0
	a := newActionDisposable(func() { calls++ })
	b := newActionDisposable(func() { calls++ })

	combined := CombineDisposables(a, nil, b)
	combined.Dispose()
	combined.Dispose()

	assert.Equal(t, 2, calls)
	assert.True(t, a.Disposed())
	assert.True(t, b.Disposed())
}

func TestCombineDisposablesSingleHandlePassesThrough(t *testing.T) {
	t.Parallel()

	a := newActionDisposable(func() {})
	assert.Same(t, Disposable(a), CombineDisposables(a))
}

// Handles must not keep a dropped machine reachable.
func TestHandleDoesNotRetainMachine(t *testing.T) {
	sm := NewStateMachine[testState, NoEvent](s0)
	handle := sm.AddRoute(noGuardRoute(Between(s0, s1)))
	ref := weak.Make(sm)

	sm = nil
	for range 10 {
		runtime.GC()
		if ref.Value() == nil {
			break
		}
	}

	require.Nil(t, ref.Value(), "machine should be collectable while handles are live")
	assert.NotPanics(t, handle.Dispose, "revoking after the machine is gone is a silent no-op")
}
