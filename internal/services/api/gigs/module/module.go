// Package module wires gigs into the API using modkit
package module

import (
	"net/http"

	modkit "kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"
	"kydu/internal/platform/net/middleware"

	"kydu/internal/services/api/gigs/domain"
	ghttp "kydu/internal/services/api/gigs/http"
	grepo "kydu/internal/services/api/gigs/repo"
	gsvc "kydu/internal/services/api/gigs/service"
)

// Module implements the gigs API module
type Module struct {
	b       modkit.Built
	auth    middleware.AuthPort
	perUser []func(http.Handler) http.Handler
	opts    Options
	svc     domain.Service
	ports   Exports
}

// Ports declares what gigs needs from other modules
type Ports struct {
	Notifier domain.Notifier
}

// Exports is what gigs offers other modules
type Exports struct {
	Reader  domain.Reader
	Service domain.Service
}

// New constructs the gigs module; without PG it keeps gigs in memory
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("gigs"),
		modkit.WithPrefix("/gigs"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Notifier == nil {
		panic("gigs API module requires a Notifier port (from services/delivery)")
	}

	o := FromConfig(deps.Cfg)

	var repo domain.Repo
	if deps.PG != nil {
		repo = grepo.NewPG(deps.PG, o.LockTimeoutMS)
	} else {
		deps.Log.Warn().Msg("gigs: no postgres configured, using the in memory repo")
		repo = grepo.NewMemory()
	}

	var rec gsvc.ConnectRecorder
	if deps.Metrics != nil {
		rec = deps.Metrics
	}
	svc := gsvc.New(repo, injected.Notifier, gsvc.Options{Metrics: rec})

	return &Module{
		b:       b,
		auth:    deps.Auth(),
		perUser: deps.PerUser(),
		opts:    o,
		svc:     svc,
		ports:   Exports{Reader: svc, Service: svc},
	}
}

// MountRoutes mounts every gig route behind bearer auth
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		httpkit.Protected(rr, m.auth, func(pr httpkit.Router) {
			ghttp.Register(pr, m.svc)
		}, append(m.perUser, middleware.Timeout(m.opts.Timeout))...)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the exported ports
func (m *Module) Ports() any { return m.ports }
