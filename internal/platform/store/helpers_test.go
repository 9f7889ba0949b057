package store

import (
	"context"
	"errors"
	"testing"

	perr "kydu/internal/platform/errors"
)

type fakeTag int64

func (f fakeTag) String() string      { return "UPDATE" }
func (f fakeTag) RowsAffected() int64 { return int64(f) }

type fakeRows struct {
	data [][]any
	i    int
	err  error
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		*(d.(*string)) = r.data[r.i-1][i].(string)
	}
	return nil
}
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"id"} }

type fakeQ struct {
	affected int64
	rows     [][]any
	err      error
}

func (q fakeQ) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fakeTag(q.affected), q.err
}
func (q fakeQ) Query(context.Context, string, ...any) (Rows, error) {
	if q.err != nil {
		return nil, q.err
	}
	return &fakeRows{data: q.rows}, nil
}
func (q fakeQ) QueryRow(ctx context.Context, sql string, args ...any) Row {
	rs, _ := q.Query(ctx, sql, args...)
	rs.Next()
	return rs
}

func scanID(r Row) (string, error) {
	var s string
	return s, r.Scan(&s)
}

func TestExecOne(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if err := ExecOne(ctx, fakeQ{affected: 1}, "UPDATE"); err != nil {
		t.Fatalf("one row: %v", err)
	}
	if err := ExecOne(ctx, fakeQ{affected: 0}, "UPDATE"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("zero rows: %v", err)
	}
	if err := ExecOne(ctx, fakeQ{affected: 11}, "UPDATE"); err == nil {
		t.Fatal("eleven rows must fail")
	}
	boom := errors.New("boom")
	if err := ExecOne(ctx, fakeQ{err: boom}, "UPDATE"); !errors.Is(err, boom) {
		t.Fatalf("exec error: %v", err)
	}
}

func TestOneAndMany(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	got, err := One(ctx, fakeQ{rows: [][]any{{"g1"}}}, scanID, "SELECT")
	if err != nil || got != "g1" {
		t.Fatalf("One = %q %v", got, err)
	}
	if _, err := One(ctx, fakeQ{}, scanID, "SELECT"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("One empty = %v", err)
	}
	if _, err := One(ctx, fakeQ{rows: [][]any{{"a"}, {"b"}}}, scanID, "SELECT"); err == nil {
		t.Fatal("One with two rows must fail")
	}

	all, err := Many(ctx, fakeQ{rows: [][]any{{"a"}, {"b"}}}, scanID, "SELECT")
	if err != nil || len(all) != 2 || all[1] != "b" {
		t.Fatalf("Many = %v %v", all, err)
	}
	none, err := Many(ctx, fakeQ{}, scanID, "SELECT")
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("Many empty = %#v %v", none, err)
	}

	v, err := Scalar[string](ctx, fakeQ{rows: [][]any{{"x"}}}, "SELECT")
	if err != nil || v != "x" {
		t.Fatalf("Scalar = %q %v", v, err)
	}
}
