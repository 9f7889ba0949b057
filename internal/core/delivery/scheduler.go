package delivery

import (
	"context"
	"sync"
	"time"

	"kydu/internal/core/notify"
	"kydu/internal/platform/logger"
)

// Deliverer is what the scheduler's workers call
type Deliverer interface {
	Deliver(ctx context.Context, recipientID string, p notify.Payload) Outcome
}

// Inbox journals a notification for the recipient before delivery
type Inbox interface {
	Journal(ctx context.Context, recipientID string, p notify.Payload) error
}

// Event is one delivery outcome as analytics sees it
type Event struct {
	At          time.Time
	RecipientID string
	Kind        notify.Kind
	GigID       string
	Outcome     Outcome
}

// Sink records delivery events
type Sink interface {
	Record(ctx context.Context, ev Event) error
}

// QueueGauge tracks queue pressure
type QueueGauge interface {
	SetQueueDepth(n int)
	RecordDropped()
}

// SchedulerConfig sizes the worker pool
type SchedulerConfig struct {
	Workers int
	Queue   int
}

type job struct {
	ctx         context.Context
	recipientID string
	payload     notify.Payload
}

// Scheduler runs deliveries off the caller's goroutine
// Schedule never blocks; a full queue drops the delivery
type Scheduler struct {
	d     Deliverer
	inbox Inbox
	sink  Sink
	gauge QueueGauge
	now   func() time.Time

	queue chan job
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool
	workers int
}

// SchedulerOption configures optional collaborators
type SchedulerOption func(*Scheduler)

// WithInbox journals every payload before it is delivered
func WithInbox(i Inbox) SchedulerOption { return func(s *Scheduler) { s.inbox = i } }

// WithSink records every outcome
func WithSink(k Sink) SchedulerOption { return func(s *Scheduler) { s.sink = k } }

// WithGauge reports queue depth and drops
func WithGauge(g QueueGauge) SchedulerOption { return func(s *Scheduler) { s.gauge = g } }

// WithClock overrides time.Now for event timestamps
func WithClock(now func() time.Time) SchedulerOption { return func(s *Scheduler) { s.now = now } }

// NewScheduler builds a stopped scheduler; call Start
func NewScheduler(d Deliverer, cfg SchedulerConfig, opts ...SchedulerOption) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Queue <= 0 {
		cfg.Queue = 1024
	}
	s := &Scheduler{
		d:       d,
		now:     time.Now,
		queue:   make(chan job, cfg.Queue),
		workers: cfg.Workers,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start launches the workers; cancelling ctx closes the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.work()
	}
	go func() {
		<-ctx.Done()
		s.Close()
	}()
}

// Schedule queues a delivery and returns at once
// the request's cancellation does not reach the delivery, its log fields do
func (s *Scheduler) Schedule(ctx context.Context, recipientID string, p notify.Payload) bool {
	if recipientID == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		logger.C(ctx).Warn().Str("recipient_id", recipientID).Msg("delivery scheduled after shutdown, dropped")
		return false
	}
	select {
	case s.queue <- job{ctx: context.WithoutCancel(ctx), recipientID: recipientID, payload: p}:
		s.depth()
		return true
	default:
		logger.C(ctx).Warn().
			Str("recipient_id", recipientID).
			Str("kind", string(p.Kind)).
			Msg("delivery queue full, dropped")
		if s.gauge != nil {
			s.gauge.RecordDropped()
		}
		return false
	}
}

// Close stops accepting work, drains what is queued and waits for workers
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.wg.Wait()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	for j := range s.queue {
		s.depth()
		s.run(j)
	}
}

func (s *Scheduler) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			logger.C(j.ctx).Error().Interface("panic", r).Str("recipient_id", j.recipientID).Msg("delivery panicked")
		}
	}()

	if s.inbox != nil {
		if err := s.inbox.Journal(j.ctx, j.recipientID, j.payload); err != nil {
			logger.C(j.ctx).Warn().Err(err).Str("recipient_id", j.recipientID).Msg("journal alert failed")
		}
	}

	out := s.d.Deliver(j.ctx, j.recipientID, j.payload)

	if s.sink != nil {
		ev := Event{
			At:          s.now(),
			RecipientID: j.recipientID,
			Kind:        j.payload.Kind,
			GigID:       j.payload.GigID,
			Outcome:     out,
		}
		if err := s.sink.Record(j.ctx, ev); err != nil {
			logger.C(j.ctx).Debug().Err(err).Msg("record delivery event failed")
		}
	}
}

func (s *Scheduler) depth() {
	if s.gauge != nil {
		s.gauge.SetQueueDepth(len(s.queue))
	}
}
