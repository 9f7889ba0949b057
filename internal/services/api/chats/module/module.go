// Package module wires chats into the API using modkit
package module

import (
	"time"

	modkit "kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"
	"kydu/internal/platform/net/middleware"

	"kydu/internal/services/api/chats/domain"
	chttp "kydu/internal/services/api/chats/http"
	crepo "kydu/internal/services/api/chats/repo"
	csvc "kydu/internal/services/api/chats/service"
	gdom "kydu/internal/services/api/gigs/domain"
)

// Module implements the chats API module
type Module struct {
	b       modkit.Built
	deps    modkit.Deps
	auth    middleware.AuthPort
	timeout time.Duration
	svc     *csvc.Svc
}

// Ports declares what chats needs from other modules
type Ports struct {
	Gigs     gdom.Reader
	Notifier gdom.Notifier
}

// Exports is what chats offers other modules
type Exports struct {
	Sender domain.Sender
}

// New constructs the chats module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("chats"),
		modkit.WithPrefix("/gigs/{gigID}/messages"),
	}, opts...)...)

	p, _ := b.Ports.(Ports)
	if p.Gigs == nil || p.Notifier == nil {
		panic("chats API module requires Gigs (from gigs) and Notifier (from delivery) ports")
	}

	c := deps.Cfg.Prefix("CHATS_")

	var repo domain.Repo
	if deps.PG != nil {
		repo = crepo.NewPG(deps.PG)
	} else {
		repo = crepo.NewMemory()
	}

	return &Module{
		b:       b,
		deps:    deps,
		auth:    deps.Auth(),
		timeout: c.MayDuration("TIMEOUT", 10*time.Second),
		svc:     csvc.New(repo, p.Gigs, p.Notifier, c.MayInt("HISTORY", csvc.DefaultHistory)),
	}
}

// MountRoutes mounts the message routes behind bearer auth
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.auth, func(pr httpkit.Router) {
			chttp.Register(pr, m.svc)
		}, append(m.deps.PerUser(), middleware.Timeout(m.timeout))...)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the exported ports
func (m *Module) Ports() any { return Exports{Sender: m.svc} }
