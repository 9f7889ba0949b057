package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	perr "kydu/internal/platform/errors"
	kit "kydu/internal/platform/testkit"
)

type tag struct{}

func (tag) String() string      { return "SELECT 1" }
func (tag) RowsAffected() int64 { return 1 }

type recQ struct{ log *[]string }

func (q recQ) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	*q.log = append(*q.log, sql)
	return tag{}, nil
}
func (q recQ) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (q recQ) QueryRow(context.Context, string, ...any) Row        { return nil }

type fakeTx struct {
	recQ
	err error
}

func (f fakeTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(f.recQ)
}

func TestMustBind(t *testing.T) {
	t.Parallel()

	var log []string
	b := BindFunc[string](func(q Queryer) string { return "bound" })
	if got := MustBind[string](b, recQ{log: &log}); got != "bound" {
		t.Fatalf("got %q", got)
	}
	kit.MustPanic(t, func() { MustBind[string](b, nil) })
}

func TestInTx(t *testing.T) {
	t.Parallel()

	var log []string
	tx := fakeTx{recQ: recQ{log: &log}}
	b := BindFunc[recQ](func(q Queryer) recQ { return q.(recQ) })

	err := InTx(context.Background(), tx, b, func(r recQ) error {
		_, err := r.Exec(context.Background(), "UPDATE gigs")
		return err
	})
	if err != nil || len(log) != 1 {
		t.Fatalf("err=%v log=%v", err, log)
	}

	boom := errors.New("boom")
	if err := WithTx(context.Background(), fakeTx{recQ: recQ{log: &log}, err: boom}, func(Queryer) error { return nil }); !errors.Is(err, boom) {
		t.Fatalf("tx error not propagated: %v", err)
	}
}

func TestWithBeginHooks(t *testing.T) {
	t.Parallel()

	var log []string
	tx := WithBeginHooks(fakeTx{recQ: recQ{log: &log}}, LockTimeout(2000), func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, "hook2")
		return err
	})

	err := tx.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "body")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(log) != 3 || !strings.Contains(log[0], "lock_timeout") || log[1] != "hook2" || log[2] != "body" {
		t.Fatalf("order = %v", log)
	}

	stop := errors.New("stop")
	log = nil
	tx = WithBeginHooks(fakeTx{recQ: recQ{log: &log}}, func(context.Context, Queryer) error { return stop })
	if err := tx.Tx(context.Background(), func(Queryer) error {
		t.Fatal("fn must not run after a failing hook")
		return nil
	}); !errors.Is(err, stop) {
		t.Fatalf("err = %v", err)
	}
}

type pinger struct {
	err      error
	deadline bool
}

func (p *pinger) Guard(ctx context.Context) error {
	_, p.deadline = ctx.Deadline()
	return p.err
}

func TestCheckReady(t *testing.T) {
	t.Parallel()

	p := &pinger{}
	if err := CheckReady(context.Background(), p, 0); err != nil {
		t.Fatalf("ready: %v", err)
	}
	if !p.deadline {
		t.Fatalf("CheckReady should bound the ping")
	}

	down := errors.New("connection refused")
	err := CheckReady(context.Background(), &pinger{err: down}, time.Second)
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || !errors.Is(err, down) {
		t.Fatalf("err = %v", err)
	}

	if err := CheckReady(context.Background(), nil, time.Second); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("nil guarder err = %v", err)
	}
}
