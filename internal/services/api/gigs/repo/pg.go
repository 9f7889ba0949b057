// Package repo stores gigs in postgres or in memory
package repo

import (
	"context"
	"strconv"
	"strings"

	"kydu/internal/modkit/repokit"
	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/store"
	"kydu/internal/services/api/gigs/domain"
)

// DefaultLockTimeoutMS bounds how long Close and Delete wait on a row lock
const DefaultLockTimeoutMS = 2000

const columns = `id::text, owner_id::text, title, description, state,
	connected_party::text, last_party::text, created_at, updated_at, closed_at`

type (
	// PG is the postgres gig repo
	PG struct{ db repokit.TxRunner }

	queries struct{ q repokit.Queryer }
)

var binder = repokit.BindFunc[*queries](func(q repokit.Queryer) *queries { return &queries{q: q} })

// NewPG returns a repo over db; transactions take row locks with lockMS as the wait bound
func NewPG(db repokit.TxRunner, lockMS int) *PG {
	if db == nil {
		panic("gigs.repo requires a non nil TxRunner")
	}
	if lockMS <= 0 {
		lockMS = DefaultLockTimeoutMS
	}
	return &PG{db: repokit.WithBeginHooks(db, repokit.LockTimeout(lockMS))}
}

var _ domain.Repo = (*PG)(nil)

// Create inserts an open gig
func (p *PG) Create(ctx context.Context, in domain.NewGig) (domain.Gig, error) {
	g, err := store.One(ctx, binder.Bind(p.db).q, scanGig, `
		INSERT INTO gigs (owner_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING `+columns, in.OwnerID, in.Title, in.Description)
	return g, perr.FromPostgres(err, "create gig")
}

// Get reads one gig
func (p *PG) Get(ctx context.Context, id string) (domain.Gig, error) {
	g, err := binder.Bind(p.db).get(ctx, id, false)
	return g, perr.FromPostgres(err, "get gig")
}

// List returns one page and the total number of matches
func (p *PG) List(ctx context.Context, f domain.Filter) ([]domain.Gig, int, error) {
	f = f.Normalize()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	switch {
	case f.State != "":
		where = append(where, "state = "+arg(string(f.State)))
	case !f.IncludeClosed:
		where = append(where, "state <> 'closed'")
	}
	if f.OwnerID != "" {
		where = append(where, "owner_id = "+arg(f.OwnerID)+"::uuid")
	}

	sql := `SELECT ` + columns + `, count(*) OVER () FROM gigs`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY created_at DESC, id LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	total := 0
	items, err := store.Many(ctx, p.db, func(r store.Row) (domain.Gig, error) {
		var (
			g           domain.Gig
			party, last *string
		)
		if err := r.Scan(append(gigDest(&g, &party, &last), &total)...); err != nil {
			return g, err
		}
		setParties(&g, party, last)
		return g, nil
	}, sql, args...)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "list gigs")
	}
	return items, total, nil
}

// Connect is a single conditional update; only one concurrent caller can win
func (p *PG) Connect(ctx context.Context, id, party string) (domain.Gig, bool, error) {
	q := binder.Bind(p.db)
	g, err := store.One(ctx, q.q, scanGig, `
		UPDATE gigs
		   SET state = 'connected', connected_party = $2, updated_at = now()
		 WHERE id = $1 AND state = 'open' AND owner_id <> $2
		RETURNING `+columns, id, party)
	if err == nil {
		return g, true, nil
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Gig{}, false, perr.FromPostgres(err, "connect gig")
	}
	cur, err := q.get(ctx, id, false)
	if err != nil {
		return domain.Gig{}, false, perr.FromPostgres(err, "connect gig")
	}
	return cur, false, nil
}

// Close locks the row, runs guard and closes it unless it already is
func (p *PG) Close(ctx context.Context, id string, guard domain.Guard) (domain.Gig, bool, error) {
	var (
		prev    domain.Gig
		changed bool
	)
	err := repokit.InTx(ctx, p.db, binder, func(q *queries) error {
		var err error
		if prev, err = q.get(ctx, id, true); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(prev); err != nil {
				return err
			}
		}
		if prev.State == domain.StateClosed {
			return nil
		}
		changed = true
		return q.close(ctx, id)
	})
	if err != nil {
		return domain.Gig{}, false, perr.FromPostgres(err, "close gig")
	}
	return prev, changed, nil
}

// Delete locks the row, runs guard, closes a live gig and removes it in one transaction
func (p *PG) Delete(ctx context.Context, id string, guard domain.Guard) (domain.Gig, error) {
	var prev domain.Gig
	err := repokit.InTx(ctx, p.db, binder, func(q *queries) error {
		var err error
		if prev, err = q.get(ctx, id, true); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(prev); err != nil {
				return err
			}
		}
		if prev.State == domain.StateConnected {
			if err := q.close(ctx, id); err != nil {
				return err
			}
		}
		return store.ExecOne(ctx, q.q, `DELETE FROM gigs WHERE id = $1`, id)
	})
	if err != nil {
		return domain.Gig{}, perr.FromPostgres(err, "delete gig")
	}
	return prev, nil
}

func (q *queries) get(ctx context.Context, id string, lock bool) (domain.Gig, error) {
	sql := `SELECT ` + columns + ` FROM gigs WHERE id = $1`
	if lock {
		sql += ` FOR UPDATE`
	}
	return store.One(ctx, q.q, scanGig, sql, id)
}

func (q *queries) close(ctx context.Context, id string) error {
	return store.ExecOne(ctx, q.q, `
		UPDATE gigs
		   SET state = 'closed', last_party = connected_party, connected_party = NULL,
		       updated_at = now(), closed_at = now()
		 WHERE id = $1 AND state <> 'closed'`, id)
}

func gigDest(g *domain.Gig, party, last **string) []any {
	return []any{&g.ID, &g.OwnerID, &g.Title, &g.Description, (*string)(&g.State),
		party, last, &g.CreatedAt, &g.UpdatedAt, &g.ClosedAt}
}

func setParties(g *domain.Gig, party, last *string) {
	if party != nil {
		g.ConnectedParty = *party
	}
	if last != nil {
		g.LastParty = *last
	}
}

func scanGig(r store.Row) (domain.Gig, error) {
	var (
		g           domain.Gig
		party, last *string
	)
	err := r.Scan(gigDest(&g, &party, &last)...)
	setParties(&g, party, last)
	return g, err
}
