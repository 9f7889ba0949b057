package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type pingCloser struct {
	fakeQ
	pingErr error
	closed  bool
}

func (p *pingCloser) Ping(context.Context) error { return p.pingErr }
func (p *pingCloser) Close() error               { p.closed = true; return nil }
func (p *pingCloser) Tx(ctx context.Context, fn func(RowQuerier) error) error {
	return fn(p.fakeQ)
}

type fakeCH struct {
	pingErr error
	closed  bool
}

func (f *fakeCH) Insert(context.Context, string, [][]any) error { return nil }
func (f *fakeCH) Exec(context.Context, string, ...any) error    { return nil }
func (f *fakeCH) Query(context.Context, string, ...any) (Rows, error) {
	return &fakeRows{}, nil
}
func (f *fakeCH) Ping(context.Context) error { return f.pingErr }
func (f *fakeCH) Close() error               { f.closed = true; return nil }

func TestOpenWithNothingEnabled(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatal("disabled backends must stay nil")
	}
	if err := s.Guard(context.Background()); err != nil {
		t.Fatalf("Guard on empty store = %v", err)
	}
}

func TestGuardAndClose(t *testing.T) {
	t.Parallel()

	pg := &pingCloser{pingErr: errors.New("conn refused")}
	ch := &fakeCH{pingErr: errors.New("auth failed")}
	s := &Store{PG: pg, CH: ch}

	err := s.Guard(context.Background())
	if err == nil || !strings.Contains(err.Error(), "pg: conn refused") || !strings.Contains(err.Error(), "ch: auth failed") {
		t.Fatalf("Guard = %v", err)
	}

	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !pg.closed || !ch.closed {
		t.Fatalf("closed pg=%v ch=%v", pg.closed, ch.closed)
	}

	var nilStore *Store
	if nilStore.Guard(context.Background()) == nil {
		t.Fatal("nil store must fail Guard")
	}
}

func TestOptionError(t *testing.T) {
	t.Parallel()
	boom := errors.New("bad option")
	_, err := Open(context.Background(), Config{}, func(*Store) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Open = %v", err)
	}
}
