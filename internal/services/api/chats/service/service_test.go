package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kydu/internal/core/notify"
	perr "kydu/internal/platform/errors"
	"kydu/internal/services/api/chats/domain"
	"kydu/internal/services/api/chats/repo"
	gdom "kydu/internal/services/api/gigs/domain"
	grepo "kydu/internal/services/api/gigs/repo"
	gsvc "kydu/internal/services/api/gigs/service"
)

type recNotifier struct {
	mu  sync.Mutex
	out map[string][]notify.Payload
}

func (n *recNotifier) Schedule(_ context.Context, to string, p notify.Payload) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.out[to] = append(n.out[to], p)
	return true
}

func (n *recNotifier) chats(to string) []notify.Payload {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Payload
	for _, p := range n.out[to] {
		if p.Kind == notify.KindChatMessage {
			out = append(out, p)
		}
	}
	return out
}

type fixture struct {
	chats *Svc
	gigs  *gsvc.Svc
	n     *recNotifier
	owner string
	party string
	gig   gdom.Gig
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	n := &recNotifier{out: map[string][]notify.Payload{}}
	gigs := gsvc.New(grepo.NewMemory(), n, gsvc.Options{})
	f := fixture{
		chats: New(repo.NewMemory(), gigs, n, 0),
		gigs:  gigs,
		n:     n,
		owner: uuid.NewString(),
		party: uuid.NewString(),
	}
	g, err := gigs.Create(ctx, f.owner, gdom.CreateInput{Title: "garden"})
	require.NoError(t, err)
	f.gig = g
	return f
}

func TestSendRequiresConnectedGig(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.chats.Send(ctx, f.owner, f.gig.ID, "hello?")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConflict), "open gig")

	_, err = f.gigs.Connect(ctx, f.party, f.gig.ID)
	require.NoError(t, err)

	_, err = f.chats.Send(ctx, uuid.NewString(), f.gig.ID, "let me in")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))

	_, err = f.chats.Send(ctx, f.party, f.gig.ID, "  \n ")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	msg, err := f.chats.Send(ctx, f.party, f.gig.ID, "on my way")
	require.NoError(t, err)
	assert.Equal(t, f.party, msg.SenderID)

	got := f.n.chats(f.owner)
	require.Len(t, got, 1)
	assert.Equal(t, "on my way", got[0].Body)
	assert.Equal(t, msg.ID, got[0].Data["message_id"])
	assert.Empty(t, f.n.chats(f.party), "sender is not notified")

	_, err = f.gigs.Close(ctx, f.owner, f.gig.ID)
	require.NoError(t, err)
	_, err = f.chats.Send(ctx, f.owner, f.gig.ID, "thanks")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeGigClosed))
}

func TestSendRejectsOverlongBody(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.gigs.Connect(ctx, f.party, f.gig.ID)
	require.NoError(t, err)

	_, err = f.chats.Send(ctx, f.party, f.gig.ID, strings.Repeat("é", domain.MaxBody+1))
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
	pe, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, "body", pe.Field())
	assert.Empty(t, f.n.chats(f.owner), "nothing stored, nothing sent")

	hist, err := f.chats.History(ctx, f.owner, f.gig.ID)
	require.NoError(t, err)
	assert.Empty(t, hist)

	msg, err := f.chats.Send(ctx, f.party, f.gig.ID, strings.Repeat("é", domain.MaxBody))
	require.NoError(t, err)
	assert.Equal(t, domain.MaxBody, len([]rune(msg.Body)), "a body at the limit is kept whole")
}

func TestHistoryAccess(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.gigs.Connect(ctx, f.party, f.gig.ID)
	require.NoError(t, err)

	_, err = f.chats.Send(ctx, f.owner, f.gig.ID, "first")
	require.NoError(t, err)
	_, err = f.chats.Send(ctx, f.party, f.gig.ID, "second")
	require.NoError(t, err)

	msgs, err := f.chats.History(ctx, f.owner, f.gig.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body, "oldest first")
	assert.Equal(t, "second", msgs[1].Body)

	_, err = f.chats.History(ctx, uuid.NewString(), f.gig.ID)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeForbidden))

	_, err = f.gigs.Close(ctx, f.owner, f.gig.ID)
	require.NoError(t, err)
	msgs, err = f.chats.History(ctx, f.party, f.gig.ID)
	require.NoError(t, err, "a former party keeps read access to what they wrote on")
	assert.Len(t, msgs, 2)

	_, err = f.chats.History(ctx, f.owner, uuid.NewString())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}
