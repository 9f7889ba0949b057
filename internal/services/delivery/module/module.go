// Package module wires the delivery worker service and exposes its ports
package module

import (
	"context"
	"fmt"

	"kydu/internal/adapters/deliverylog"
	"kydu/internal/adapters/push"
	"kydu/internal/core/delivery"
	"kydu/internal/core/presence"
	"kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"
	"kydu/internal/services/delivery/service"
)

// Module defines the delivery worker module
type Module struct {
	deps  modkit.Deps
	svc   *service.Svc
	ports Ports
}

// New constructs the delivery module. Non zero overrides win over config.
func New(ctx context.Context, deps modkit.Deps, needs Needs, overrides Options) (*Module, error) {
	if needs.Directory == nil {
		return nil, fmt.Errorf("delivery module requires a Directory (from accounts)")
	}

	opts := FromConfig(deps.Cfg)
	if overrides.Workers != 0 {
		opts.Workers = overrides.Workers
	}
	if overrides.Queue != 0 {
		opts.Queue = overrides.Queue
	}
	if overrides.RelayTimeout != 0 {
		opts.RelayTimeout = overrides.RelayTimeout
	}
	if overrides.PushTimeout != 0 {
		opts.PushTimeout = overrides.PushTimeout
	}

	pusher := needs.Pusher
	if pusher == nil {
		var err error
		if pusher, err = push.New(ctx, deps.Cfg.Prefix("PUSH_"), deps.Metrics); err != nil {
			return nil, fmt.Errorf("push: %w", err)
		}
	}

	var sink service.Flusher
	if deps.CH != nil {
		s := deliverylog.New(deps.CH, deliverylog.Config{BatchSize: opts.SinkBatch, FlushInterval: opts.SinkInterval})
		if err := s.Ensure(ctx); err != nil {
			deps.Log.Warn().Err(err).Msg("delivery events table not ensured; analytics off")
		} else {
			sink = s
		}
	}

	reg := presence.New(presence.WithObserver(deps.Metrics.SetSessions))

	svc := service.New(reg, needs.Directory, pusher, deps.Metrics, sink, service.Config{
		Router:    delivery.Config{RelayTimeout: opts.RelayTimeout, PushTimeout: opts.PushTimeout},
		Scheduler: delivery.SchedulerConfig{Workers: opts.Workers, Queue: opts.Queue},
	})

	return &Module{
		deps: deps,
		svc:  svc,
		ports: Ports{
			Worker:   svc,
			Notifier: svc,
			Presence: reg,
		},
	}, nil
}

// Ports returns the module ports (Worker, Notifier, Presence)
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "delivery" }

// MountRoutes returns no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
