package pool

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/perfbible/pkg/errors"
)

type message struct {
	ID   int
	Body string
	Tags []string
}

func TestGuard_RoundTrip(t *testing.T) {
	p := New[message](2)
	g, ok := p.Allocate()
	require.True(t, ok)
	defer g.Release()

	want := message{ID: 9, Body: "hello", Tags: []string{"a"}}
	g.Set(want)

	got, err := g.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, Occupied, g.State())
}

func TestGuard_ReadBeforeWriteFails(t *testing.T) {
	p := New[message](1)
	g, ok := p.Allocate()
	require.True(t, ok)
	defer g.Release()

	assert.Equal(t, Empty, g.State())

	_, err := g.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUninitialized)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUninitialized))
	assert.True(t, errors.IsProgrammerError(err))

	ptr, err := g.Ptr()
	assert.Nil(t, ptr)
	assert.ErrorIs(t, err, ErrUninitialized)

	requirePanicType(t, errors.ErrorTypeUninitialized, func() { g.MustGet() })
}

func TestGuard_PtrMutatesInPlace(t *testing.T) {
	p := New[message](1)
	g, _ := p.Allocate()
	defer g.Release()

	g.Set(message{ID: 1})
	ptr, err := g.Ptr()
	require.NoError(t, err)
	ptr.Body = "edited"

	assert.Equal(t, "edited", g.MustGet().Body)
}

func TestGuard_EmplaceAndReset(t *testing.T) {
	p := New[message](1)
	g, _ := p.Allocate()
	defer g.Release()

	m := g.Emplace()
	assert.Equal(t, message{}, *m, "empty slot holds the zero value")
	m.ID = 3
	assert.Equal(t, 3, g.MustGet().ID)

	g.Reset()
	assert.Equal(t, Empty, g.State())
	_, err := g.Get()
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestReuse_DefaultPolicyClearsSlot(t *testing.T) {
	p := New[message](1)

	g, _ := p.Allocate()
	g.Set(message{ID: 1, Body: "secret"})
	idx := g.Index()
	g.Release()

	g2, ok := p.Allocate()
	require.True(t, ok)
	defer g2.Release()
	require.Equal(t, idx, g2.Index())

	assert.Equal(t, Empty, g2.State())
	_, err := g2.Get()
	assert.ErrorIs(t, err, ErrUninitialized, "reused slot must not expose the previous value")
	assert.Equal(t, message{}, *g2.Emplace())
}

func TestReuse_RetainPolicyKeepsValue(t *testing.T) {
	p := New[message](1, WithRetainValues[message]())
	require.Equal(t, RetainOnRelease, p.Policy())

	g, _ := p.Allocate()
	g.Set(message{ID: 1, Body: "stale"})
	g.Release()

	g2, ok := p.Allocate()
	require.True(t, ok)
	defer g2.Release()

	assert.Equal(t, Occupied, g2.State())
	got, err := g2.Get()
	require.NoError(t, err)
	assert.Equal(t, "stale", got.Body)
}

func TestReuse_RetainPolicyFirstUseStillEmpty(t *testing.T) {
	p := New[message](1, WithRetainValues[message]())
	g, _ := p.Allocate()
	defer g.Release()

	_, err := g.Get()
	assert.ErrorIs(t, err, ErrUninitialized)
}

func TestReuse_HookPolicyKeepsCapacity(t *testing.T) {
	p := New[message](1, WithReset(func(m *message) {
		m.ID = 0
		m.Body = ""
		m.Tags = m.Tags[:0]
	}))
	require.Equal(t, HookOnRelease, p.Policy())

	g, _ := p.Allocate()
	g.Set(message{ID: 5, Tags: make([]string, 3, 16)})
	g.Release()

	g2, _ := p.Allocate()
	defer g2.Release()

	got, err := g2.Get()
	require.NoError(t, err)
	assert.Zero(t, got.ID)
	assert.Len(t, got.Tags, 0)
	assert.Equal(t, 16, cap(got.Tags))
}

func TestReuse_HookPolicyUnwrittenSlotStaysEmpty(t *testing.T) {
	calls := 0
	p := New[int](1, WithReset(func(v *int) { calls++ }))

	g, _ := p.Allocate()
	_, err := g.Get()
	require.ErrorIs(t, err, ErrUninitialized)
	g.Release()
	assert.Zero(t, calls, "hook only runs for written slots")

	g2, _ := p.Allocate()
	assert.Equal(t, Empty, g2.State())
	_, err = g2.Get()
	assert.ErrorIs(t, err, ErrUninitialized)

	g2.Set(7)
	g2.Release()
	assert.Equal(t, 1, calls)

	g3, _ := p.Allocate()
	defer g3.Release()
	assert.Equal(t, Occupied, g3.State())
}

func TestReuse_PanickingHookKeepsCapacity(t *testing.T) {
	p := New[int](1, WithReset(func(v *int) { panic("reset failed") }))

	g, _ := p.Allocate()
	g.Set(1)
	require.Panics(t, func() { g.Release() })

	assert.Equal(t, 1, p.Len())
	require.NoError(t, p.Audit())

	g2, ok := p.Allocate()
	require.True(t, ok, "slot must be reusable after a failed hook")
	defer g2.Release()
	assert.Equal(t, Empty, g2.State())
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Release() })
}

func TestWithReset_NilHookFallsBackToDefault(t *testing.T) {
	p := New[int](1, WithReset[int](nil))
	assert.Equal(t, ResetOnRelease, p.Policy())
}

func TestGuard_DoubleReleasePanics(t *testing.T) {
	p := New[int](2)
	g, _ := p.Allocate()
	g.Release()

	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Release() })
	assert.Equal(t, 2, p.Len(), "double release must not grow the free list")
	require.NoError(t, p.Audit())
}

func TestGuard_UseAfterReleasePanics(t *testing.T) {
	p := New[int](1)
	g, _ := p.Allocate()
	g.Set(1)
	g.Release()

	assert.False(t, g.Live())
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Set(2) })
	requirePanicType(t, errors.ErrorTypeMisuse, func() { _, _ = g.Get() })
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.State() })
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Emplace() })
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Reset() })
}

func TestGuard_StaleCopyCannotTouchNewLoan(t *testing.T) {
	p := New[int](1)
	g, _ := p.Allocate()
	stale := g
	g.Release()

	fresh, ok := p.Allocate()
	require.True(t, ok)
	require.Equal(t, stale.Index(), fresh.Index())
	fresh.Set(10)

	requirePanicType(t, errors.ErrorTypeMisuse, func() { stale.Set(99) })
	requirePanicType(t, errors.ErrorTypeMisuse, func() { stale.Release() })

	assert.Equal(t, 10, fresh.MustGet())
	assert.True(t, fresh.Live())
	fresh.Release()
	require.NoError(t, p.Audit())
}

func TestGuard_CopyReleasesOnce(t *testing.T) {
	p := New[int](1)
	g, _ := p.Allocate()
	cp := g

	cp.Release()
	assert.False(t, g.Live(), "all copies share one loan")
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Release() })
}

func TestGuard_ZeroValuePanics(t *testing.T) {
	var g Guard[int]
	assert.False(t, g.Live())
	requirePanicType(t, errors.ErrorTypeMisuse, func() { g.Release() })
}

func TestGuard_MisuseIsNotUninitialized(t *testing.T) {
	p := New[int](1)
	g, _ := p.Allocate()
	g.Release()

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.False(t, stderrors.Is(err, ErrUninitialized))
	}()
	_, _ = g.Get()
}
