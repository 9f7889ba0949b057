// Package service runs the delivery router behind a bounded scheduler
package service

import (
	"context"

	"kydu/internal/core/delivery"
	"kydu/internal/core/notify"
	"kydu/internal/core/presence"
	"kydu/internal/platform/logger"
	dom "kydu/internal/services/delivery/domain"
)

// Service implements both the worker and the notifier port
type Service interface {
	dom.WorkerPort
	dom.NotifierPort
}

// Metrics is the slice of the collector delivery reports to
type Metrics interface {
	delivery.Recorder
	delivery.QueueGauge
}

// Flusher is a sink that buffers and needs a background loop
type Flusher interface {
	delivery.Sink
	Run(ctx context.Context)
}

// Config sizes the router and the pool
type Config struct {
	Router    delivery.Config
	Scheduler delivery.SchedulerConfig
}

// Svc owns the router and scheduler
type Svc struct {
	router *delivery.Router
	sched  *delivery.Scheduler
	sink   Flusher
	log    logger.Logger
}

// New wires a router over reg, dir and push and queues work onto a scheduler.
// sink may be nil.
func New(reg *presence.Registry, dir dom.Directory, push delivery.Pusher, m Metrics, sink Flusher, cfg Config) *Svc {
	if reg == nil || dir == nil || push == nil {
		panic("delivery.Service requires a presence registry, a directory and a pusher")
	}
	r := delivery.NewRouter(reg, dir, push, m, cfg.Router)

	opts := []delivery.SchedulerOption{delivery.WithInbox(dir)}
	if m != nil {
		opts = append(opts, delivery.WithGauge(m))
	}
	if sink != nil {
		opts = append(opts, delivery.WithSink(sink))
	}
	return &Svc{
		router: r,
		sched:  delivery.NewScheduler(r, cfg.Scheduler, opts...),
		sink:   sink,
		log:    *logger.Named("delivery"),
	}
}

// Schedule queues p for recipientID
func (s *Svc) Schedule(ctx context.Context, recipientID string, p notify.Payload) bool {
	return s.sched.Schedule(ctx, recipientID, p)
}

// Deliver runs one delivery inline; tests and tools use it
func (s *Svc) Deliver(ctx context.Context, recipientID string, p notify.Payload) delivery.Outcome {
	return s.router.Deliver(ctx, recipientID, p)
}

// Run starts the workers and the sink loop, then blocks until ctx ends and
// the queue has drained
func (s *Svc) Run(ctx context.Context) error {
	s.log.Info().Msg("delivery workers starting")
	s.sched.Start(ctx)

	// the sink outlives ctx until the queue has drained into it
	sinkCtx, stopSink := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		if s.sink != nil {
			s.sink.Run(sinkCtx)
		}
	}()

	<-ctx.Done()
	s.sched.Close()
	stopSink()
	<-done
	s.log.Info().Msg("delivery workers stopped")
	return nil
}

// Close drains the queue without waiting on ctx
func (s *Svc) Close() { s.sched.Close() }
