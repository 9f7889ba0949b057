package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kydu/internal/core/notify"
	"kydu/internal/core/presence"
)

type fakeSession struct {
	id    string
	err   error
	block bool

	mu  sync.Mutex
	got []notify.Payload
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Relay(ctx context.Context, p notify.Payload) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	f.got = append(f.got, p)
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) relayed() []notify.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Payload(nil), f.got...)
}

type tokenStore struct {
	tokens map[string]string
	err    error
}

func (s tokenStore) PushToken(_ context.Context, userID string) (string, error) {
	return s.tokens[userID], s.err
}

type pushCall struct {
	token   string
	payload notify.Payload
}

type fakePusher struct {
	err error

	mu    sync.Mutex
	calls []pushCall
}

func (f *fakePusher) Send(_ context.Context, token string, p notify.Payload) error {
	f.mu.Lock()
	f.calls = append(f.calls, pushCall{token: token, payload: p})
	f.mu.Unlock()
	return f.err
}

func (f *fakePusher) sent() []pushCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pushCall(nil), f.calls...)
}

type countRec struct {
	mu sync.Mutex
	by map[string]int
}

func (c *countRec) RecordDelivery(o string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.by == nil {
		c.by = map[string]int{}
	}
	c.by[o]++
}

var payload = notify.GigConnected("g1", "Paint fence", "u2", time.Unix(0, 0))

func TestDeliver_RecipientOnline_RelaysWithoutPush(t *testing.T) {
	t.Parallel()

	reg := presence.New()
	sess := &fakeSession{id: "s1"}
	reg.Register("u1", sess)
	push := &fakePusher{}
	rec := &countRec{}

	out := NewRouter(reg, tokenStore{tokens: map[string]string{"u1": "tok-1"}}, push, rec, Config{}).
		Deliver(context.Background(), "u1", payload)

	assert.Equal(t, Outcome{Path: InSession}, out)
	assert.True(t, out.Delivered())
	require.Len(t, sess.relayed(), 1)
	assert.Equal(t, "u2", sess.relayed()[0].FromUserID)
	assert.Empty(t, push.sent())
	assert.Equal(t, 1, rec.by["in_session"])
}

func TestDeliver_RecipientOffline_PushesStoredToken(t *testing.T) {
	t.Parallel()

	push := &fakePusher{}
	out := NewRouter(presence.New(), tokenStore{tokens: map[string]string{"u1": "tok-1"}}, push, nil, Config{}).
		Deliver(context.Background(), "u1", payload)

	assert.Equal(t, ViaPush, out.Path)
	calls := push.sent()
	require.Len(t, calls, 1)
	assert.Equal(t, "tok-1", calls[0].token)
	assert.Equal(t, "g1", calls[0].payload.GigID)
}

func TestDeliver_OfflineWithoutToken_Fails(t *testing.T) {
	t.Parallel()

	push := &fakePusher{}
	rec := &countRec{}
	var out Outcome
	assert.NotPanics(t, func() {
		out = NewRouter(presence.New(), tokenStore{}, push, rec, Config{}).
			Deliver(context.Background(), "u1", payload)
	})

	assert.Equal(t, Outcome{Path: Failed, Reason: ReasonNoToken}, out)
	assert.False(t, out.Delivered())
	assert.Empty(t, push.sent())
	assert.Equal(t, 1, rec.by["failed"])
}

func TestDeliver_RelayErrorFallsBackToPush(t *testing.T) {
	t.Parallel()

	reg := presence.New()
	reg.Register("u1", &fakeSession{id: "s1", err: errors.New("closed")})
	push := &fakePusher{}

	out := NewRouter(reg, tokenStore{tokens: map[string]string{"u1": "tok-1"}}, push, nil, Config{}).
		Deliver(context.Background(), "u1", payload)

	assert.Equal(t, ViaPush, out.Path)
	assert.Len(t, push.sent(), 1)
}

func TestDeliver_RelayTimeoutFallsBackToPush(t *testing.T) {
	t.Parallel()

	reg := presence.New()
	reg.Register("u1", &fakeSession{id: "s1", block: true})
	push := &fakePusher{}

	start := time.Now()
	out := NewRouter(reg, tokenStore{tokens: map[string]string{"u1": "tok-1"}}, push, nil,
		Config{RelayTimeout: 20 * time.Millisecond}).
		Deliver(context.Background(), "u1", payload)

	assert.Equal(t, ViaPush, out.Path)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDeliver_PushAndLookupFailuresAreOutcomes(t *testing.T) {
	t.Parallel()

	out := NewRouter(presence.New(), tokenStore{tokens: map[string]string{"u1": "tok-1"}},
		&fakePusher{err: errors.New("unregistered")}, nil, Config{}).
		Deliver(context.Background(), "u1", payload)
	assert.Equal(t, Outcome{Path: Failed, Reason: ReasonPush}, out)

	out = NewRouter(presence.New(), tokenStore{err: errors.New("db down")}, &fakePusher{}, nil, Config{}).
		Deliver(context.Background(), "u1", payload)
	assert.Equal(t, Outcome{Path: Failed, Reason: ReasonTokenLookup}, out)
}

func TestPath_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "in_session", InSession.String())
	assert.Equal(t, "via_push", ViaPush.String())
	assert.Equal(t, "failed", Failed.String())
}
