// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"

	metahttp "kydu/internal/services/api/meta/http"
)

// Ports declares what meta reads from other modules
type Ports struct {
	Sessions metahttp.Sessions
}

// Module implements the modkit.Module interface
type Module struct {
	b         modkit.Built
	deps      modkit.Deps
	sessions  metahttp.Sessions
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	p, _ := b.Ports.(Ports)
	return &Module{b: b, deps: deps, sessions: p.Sessions, startedAt: time.Now()}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	d := metahttp.Deps{
		ServiceName: "kydu-api",
		StartedAt:   m.startedAt,
		Sessions:    m.sessions,
	}
	// typed nils would report as present, so only set what exists
	if m.deps.PG != nil {
		d.PG = m.deps.PG
	}
	if m.deps.CH != nil {
		d.CH = m.deps.CH
	}
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, d) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
