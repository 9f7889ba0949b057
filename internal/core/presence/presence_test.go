package presence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kydu/internal/core/notify"
)

type handle string

func (h handle) ID() string                                  { return string(h) }
func (h handle) Relay(context.Context, notify.Payload) error { return nil }

func TestRegister_SupersedesPrevious(t *testing.T) {
	t.Parallel()

	r := New()
	assert.Nil(t, r.Register("u1", handle("a")))

	prev := r.Register("u1", handle("b"))
	require.NotNil(t, prev)
	assert.Equal(t, "a", prev.ID())

	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID())
	assert.Equal(t, 1, r.Len())
}

func TestRegister_SameHandleTwiceReturnsNothing(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("u1", handle("a"))
	assert.Nil(t, r.Register("u1", handle("a")))
}

func TestUnregister_StaleHandleKeepsNewer(t *testing.T) {
	t.Parallel()

	r := New()
	a, b := handle("a"), handle("b")
	r.Register("u1", a)
	r.Register("u1", b)

	assert.False(t, r.Unregister("u1", a), "stale disconnect must be a no-op")
	got, ok := r.Lookup("u1")
	require.True(t, ok)
	assert.Equal(t, "b", got.ID())

	assert.True(t, r.Unregister("u1", b))
	_, ok = r.Lookup("u1")
	assert.False(t, ok)
	assert.False(t, r.Unregister("u1", b), "second unregister is a no-op")
	assert.False(t, r.Unregister("nobody", nil))
}

func TestObserver(t *testing.T) {
	t.Parallel()

	var seen []int
	r := New(WithObserver(func(n int) { seen = append(seen, n) }))
	r.Register("u1", handle("a"))
	r.Register("u2", handle("b"))
	r.Unregister("u1", handle("stale"))
	r.Unregister("u1", handle("a"))

	assert.Equal(t, []int{1, 2, 1}, seen)
}

func TestConcurrentChurn(t *testing.T) {
	t.Parallel()

	r := New()
	var wg sync.WaitGroup
	for u := 0; u < 16; u++ {
		for s := 0; s < 8; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				uid := fmt.Sprintf("u%d", u)
				h := handle(fmt.Sprintf("%s-s%d", uid, s))
				r.Register(uid, h)
				r.Lookup(uid)
				r.Unregister(uid, h)
			}()
		}
	}
	wg.Wait()
	assert.LessOrEqual(t, r.Len(), 16)
}
