package testkit

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestMustPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("boom") })
}

func TestMustNotPanic(t *testing.T) {
	t.Parallel()
	MustNotPanic(t, func() {})
}

func TestMustContain(t *testing.T) {
	t.Parallel()
	MustContain(t, `{"level":"info","gig_id":"g1"}`, `"gig_id":"g1"`)
}

func TestMust(t *testing.T) {
	t.Parallel()
	if got := Must(t, 7, nil); got != 7 {
		t.Fatalf("Must = %d", got)
	}
}

func TestEventually(t *testing.T) {
	t.Parallel()

	var flag atomic.Bool
	go func() {
		time.Sleep(20 * time.Millisecond)
		flag.Store(true)
	}()
	Eventually(t, time.Second, flag.Load, "flag set by goroutine")
}

func TestNever(t *testing.T) {
	t.Parallel()
	Never(t, 30*time.Millisecond, func() bool { return false }, "constant false")
}
