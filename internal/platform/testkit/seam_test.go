package testkit

import (
	"sync"
	"testing"
	"time"
)

var (
	nowFn     = func() int64 { return 1 }
	swapLimit = 10
)

func TestSwapRestores(t *testing.T) {
	t.Run("func", func(t *testing.T) {
		Swap(t, &nowFn, func() int64 { return 99 })
		if nowFn() != 99 {
			t.Fatal("swap did not take effect")
		}
	})
	if nowFn() != 1 {
		t.Fatal("func not restored")
	}

	t.Run("int", func(t *testing.T) {
		Swap(t, &swapLimit, 42)
		if swapLimit != 42 {
			t.Fatal("swap did not take effect")
		}
	})
	if swapLimit != 10 {
		t.Fatal("int not restored")
	}
}

func TestSerialDoesNotInterleave(t *testing.T) {
	var mu sync.Mutex
	var seq []string
	record := func(s string) {
		mu.Lock()
		seq = append(seq, s)
		mu.Unlock()
	}

	t.Run("group", func(t *testing.T) {
		for _, name := range []string{"A", "B"} {
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				Serial(t)
				record(name + "-start")
				time.Sleep(20 * time.Millisecond)
				record(name + "-end")
			})
		}
	})

	if len(seq) != 4 {
		t.Fatalf("seq = %v", seq)
	}
	if seq[0][:1] != seq[1][:1] || seq[2][:1] != seq[3][:1] {
		t.Fatalf("interleaved: %v", seq)
	}
}
