//go:build integration_pg

package store_test

import (
	"context"
	"errors"
	"testing"

	"kydu/internal/platform/store"
	"kydu/internal/platform/store/pgtest"
)

func TestPGAdapterTx(t *testing.T) {
	s := pgtest.Open(t)
	ctx := context.Background()

	if err := s.Guard(ctx); err != nil {
		t.Fatalf("guard: %v", err)
	}

	boom := errors.New("rollback please")
	err := s.PG.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO users (display_name, email, password_hash) VALUES ('a', 'a@x.io', 'h')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("tx = %v", err)
	}
	n, err := store.Scalar[int64](ctx, s.PG, `SELECT count(*) FROM users`)
	if err != nil || n != 0 {
		t.Fatalf("after rollback count=%d err=%v", n, err)
	}

	err = s.PG.Tx(ctx, func(q store.RowQuerier) error {
		return store.ExecOne(ctx, q, `INSERT INTO users (display_name, email, password_hash) VALUES ('b', 'b@x.io', 'h')`)
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	emails, err := store.Many(ctx, s.PG, func(r store.Row) (string, error) {
		var e string
		return e, r.Scan(&e)
	}, `SELECT email FROM users ORDER BY email`)
	if err != nil || len(emails) != 1 || emails[0] != "b@x.io" {
		t.Fatalf("emails = %v %v", emails, err)
	}
}
