// Package module wires the websocket endpoint into the API using modkit
package module

import (
	"context"

	"kydu/internal/adapters/realtime/ws"
	modkit "kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"

	cdom "kydu/internal/services/api/chats/domain"
	rsvc "kydu/internal/services/api/realtime/service"
	ddom "kydu/internal/services/delivery/domain"
)

// Module implements the realtime API module
type Module struct {
	b   modkit.Built
	hub *rsvc.Hub
	srv *ws.Server
}

// Ports declares what realtime needs from other modules
type Ports struct {
	Presence ddom.PresencePort
	Chats    cdom.Sender
}

// Exports lets the process drain sessions on shutdown
type Exports struct {
	Transport Transport
}

// Transport is the lifecycle surface of the websocket server
type Transport interface {
	Len() int
	Shutdown(ctx context.Context) error
}

// New constructs the realtime module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("realtime"),
		modkit.WithPrefix("/realtime"),
	}, opts...)...)

	p, _ := b.Ports.(Ports)
	if p.Presence == nil {
		panic("realtime API module requires Presence port (from delivery)")
	}

	hub := rsvc.New(p.Presence, p.Chats)
	srv := ws.NewServer(ws.FromConfig(deps.Cfg.Prefix("REALTIME_")), deps.Auth().Parse, ws.Hooks{
		Open:  func(s *ws.Session) { hub.Open(s) },
		Close: func(s *ws.Session) { hub.Close(s) },
		Message: func(ctx context.Context, s *ws.Session, f ws.Frame) {
			hub.Message(ctx, s, f)
		},
	})
	return &Module{b: b, hub: hub, srv: srv}
}

// MountRoutes mounts the upgrade endpoint; the upgrade authenticates itself
// and must not sit behind a request timeout
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		rr.Get("/", m.srv.ServeHTTP)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the exported ports
func (m *Module) Ports() any { return Exports{Transport: m.srv} }
