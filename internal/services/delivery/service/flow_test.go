package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kydu/internal/core/delivery"
	"kydu/internal/core/notify"
	"kydu/internal/core/presence"
	"kydu/internal/platform/testkit"
	gigrepo "kydu/internal/services/api/gigs/repo"
	gigsvc "kydu/internal/services/api/gigs/service"
	"kydu/internal/services/api/gigs/domain"
)

type directory struct {
	mu      sync.Mutex
	tokens  map[string]string
	journal map[string][]notify.Kind
}

func newDirectory() *directory {
	return &directory{tokens: map[string]string{}, journal: map[string][]notify.Kind{}}
}

func (d *directory) PushToken(_ context.Context, uid string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tokens[uid], nil
}

func (d *directory) Journal(_ context.Context, uid string, p notify.Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal[uid] = append(d.journal[uid], p.Kind)
	return nil
}

func (d *directory) kinds(uid string) []notify.Kind {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Kind(nil), d.journal[uid]...)
}

type pushed struct {
	token string
	p     notify.Payload
}

type pusher struct {
	mu   sync.Mutex
	sent []pushed
}

func (f *pusher) Send(_ context.Context, token string, p notify.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, pushed{token: token, p: p})
	return nil
}

func (f *pusher) calls() []pushed {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pushed(nil), f.sent...)
}

type session struct {
	id  string
	mu  sync.Mutex
	got []notify.Payload
}

func (s *session) ID() string { return s.id }

func (s *session) Relay(_ context.Context, p notify.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, p)
	return nil
}

func (s *session) relayed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type outcomes struct {
	mu sync.Mutex
	by map[string]int
}

func (o *outcomes) RecordDelivery(out string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.by[out]++
}
func (o *outcomes) SetQueueDepth(int) {}
func (o *outcomes) RecordDropped()    {}

func (o *outcomes) get(k string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.by[k]
}

type harness struct {
	reg  *presence.Registry
	dir  *directory
	push *pusher
	out  *outcomes
	svc  *Svc
	gigs *gigsvc.Svc
	stop func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		reg:  presence.New(),
		dir:  newDirectory(),
		push: &pusher{},
		out:  &outcomes{by: map[string]int{}},
	}
	h.svc = New(h.reg, h.dir, h.push, h.out, nil, Config{
		Router:    delivery.Config{RelayTimeout: time.Second, PushTimeout: time.Second},
		Scheduler: delivery.SchedulerConfig{Workers: 2, Queue: 16},
	})
	h.gigs = gigsvc.New(gigrepo.NewMemory(), h.svc, gigsvc.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.svc.Run(ctx)
	}()
	h.stop = func() { cancel(); <-done }
	t.Cleanup(h.stop)
	return h
}

func TestOfflineOwnerGetsExactlyOnePush(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner, requester := uuid.NewString(), uuid.NewString()
	h.dir.tokens[owner] = "tok-123"

	g, err := h.gigs.Create(ctx, owner, domain.CreateInput{Title: "hang shelves"})
	require.NoError(t, err)
	_, err = h.gigs.Connect(ctx, requester, g.ID)
	require.NoError(t, err)

	_, err = h.gigs.Connect(ctx, uuid.NewString(), g.ID)
	require.Error(t, err, "losers schedule nothing")

	h.stop()

	calls := h.push.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "tok-123", calls[0].token)
	assert.Equal(t, notify.KindGigConnected, calls[0].p.Kind)
	assert.Equal(t, requester, calls[0].p.FromUserID)
	assert.Equal(t, g.ID, calls[0].p.GigID)
	assert.Equal(t, []notify.Kind{notify.KindGigConnected}, h.dir.kinds(owner), "journaled once")
	assert.Equal(t, 1, h.out.get(delivery.ViaPush.String()))
}

func TestOnlinePartyIsRelayedNotPushed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner, party := uuid.NewString(), uuid.NewString()
	h.dir.tokens[owner] = "tok-owner"
	h.dir.tokens[party] = "tok-party"

	ownerSess := &session{id: "s-owner"}
	partySess := &session{id: "s-party"}
	h.reg.Register(owner, ownerSess)
	h.reg.Register(party, partySess)

	g, err := h.gigs.Create(ctx, owner, domain.CreateInput{Title: "tutor maths"})
	require.NoError(t, err)
	_, err = h.gigs.Connect(ctx, party, g.ID)
	require.NoError(t, err)
	_, err = h.gigs.Close(ctx, owner, g.ID)
	require.NoError(t, err)
	_, err = h.gigs.Close(ctx, owner, g.ID)
	require.NoError(t, err)

	testkit.Eventually(t, 2*time.Second, func() bool {
		return ownerSess.relayed() == 1 && partySess.relayed() == 1
	}, "both sides relayed once")
	h.stop()

	assert.Empty(t, h.push.calls())
	assert.Equal(t, 2, h.out.get(delivery.InSession.String()))
	assert.Equal(t, 1, partySess.relayed(), "second close delivers nothing")
}

func TestOfflineWithoutTokenFailsQuietly(t *testing.T) {
	h := newHarness(t)
	recipient := uuid.NewString()

	out := h.svc.Deliver(context.Background(), recipient, notify.ChatMessage("g", "m", "s", "hi", time.Now()))
	assert.False(t, out.Delivered())
	assert.Equal(t, delivery.ReasonNoToken, out.Reason)
	assert.Empty(t, h.push.calls())
}
