//go:build integration_pg

package repo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	perr "kydu/internal/platform/errors"
	"kydu/internal/platform/store"
	"kydu/internal/platform/store/pgtest"
	"kydu/internal/services/api/gigs/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(t *testing.T, db store.TxRunner, email string) string {
	t.Helper()
	id, err := store.Scalar[string](context.Background(), db, `
		INSERT INTO users (display_name, email, password_hash)
		VALUES ('x', $1, 'h') RETURNING id::text`, email)
	require.NoError(t, err)
	return id
}

func TestPG_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := pgtest.Open(t)
	r := NewPG(s.PG, 0)

	owner := newUser(t, s.PG, "owner@example.com")
	party := newUser(t, s.PG, "party@example.com")

	g, err := r.Create(ctx, domain.NewGig{OwnerID: owner, Title: "paint fence"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateOpen, g.State)

	_, won, err := r.Connect(ctx, g.ID, owner)
	require.NoError(t, err)
	assert.False(t, won, "owner never wins")

	got, won, err := r.Connect(ctx, g.ID, party)
	require.NoError(t, err)
	require.True(t, won)
	assert.Equal(t, party, got.ConnectedParty)
	assert.True(t, got.Consistent())

	items, total, err := r.List(ctx, domain.Filter{OwnerID: owner})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, party, items[0].ConnectedParty)

	prev, changed, err := r.Close(ctx, g.ID, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, party, prev.ConnectedParty)

	_, changed, err = r.Close(ctx, g.ID, nil)
	require.NoError(t, err)
	assert.False(t, changed)

	cur, err := r.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateClosed, cur.State)
	assert.Empty(t, cur.ConnectedParty)
	assert.Equal(t, party, cur.LastParty)
	assert.NotNil(t, cur.ClosedAt)
	assert.True(t, cur.Consistent())

	_, _, err = r.List(ctx, domain.Filter{})
	require.NoError(t, err)

	_, err = r.Delete(ctx, g.ID, func(domain.Gig) error { return perr.Forbiddenf("no") })
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))

	_, err = r.Delete(ctx, g.ID, nil)
	require.NoError(t, err)
	_, err = r.Get(ctx, g.ID)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestPG_ConcurrentConnect(t *testing.T) {
	ctx := context.Background()
	s := pgtest.Open(t)
	r := NewPG(s.PG, 0)

	owner := newUser(t, s.PG, "o@example.com")
	g, err := r.Create(ctx, domain.NewGig{OwnerID: owner, Title: "move couch"})
	require.NoError(t, err)

	const N = 12
	users := make([]string, N)
	for i := range users {
		users[i] = newUser(t, s.PG, "u"+string(rune('a'+i))+"@example.com")
	}

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, won, err := r.Connect(ctx, g.ID, u)
			assert.NoError(t, err)
			if won {
				wins.Add(1)
			}
		}(u)
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins.Load())
}
