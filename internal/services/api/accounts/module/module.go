// Package module wires accounts into the API using modkit
package module

import (
	modkit "kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"
	"kydu/internal/platform/net/middleware"

	"kydu/internal/services/api/accounts/domain"
	ahttp "kydu/internal/services/api/accounts/http"
	arepo "kydu/internal/services/api/accounts/repo"
	asvc "kydu/internal/services/api/accounts/service"
	ddom "kydu/internal/services/delivery/domain"
)

// Module implements the accounts API module
type Module struct {
	b    modkit.Built
	deps modkit.Deps
	auth middleware.AuthPort
	svc  *asvc.Svc
}

// Exports is what accounts offers other modules
type Exports struct {
	// Directory feeds the delivery router its token lookups and inbox
	Directory ddom.Directory
}

// New constructs the accounts module; without PG it keeps users in memory
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("accounts"),
		modkit.WithPrefix("/auth"),
	}, opts...)...)

	if deps.Tokens == nil {
		panic("accounts API module requires Tokens to issue logins")
	}
	o := FromConfig(deps.Cfg)

	var repo domain.Repo
	if deps.PG != nil {
		repo = arepo.NewPG(deps.PG)
	} else {
		deps.Log.Warn().Msg("accounts: no postgres configured, using the in memory repo")
		repo = arepo.NewMemory()
	}

	return &Module{
		b:    b,
		deps: deps,
		auth: deps.Auth(),
		svc:  asvc.New(repo, deps.Tokens, asvc.Options{Cost: o.BcryptCost, AlertLimit: o.AlertLimit}),
	}
}

// MountRoutes mounts signup and login openly and the rest behind auth
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		ahttp.RegisterPublic(rr, m.svc)
		httpkit.Protected(rr, m.auth, func(pr httpkit.Router) {
			ahttp.RegisterProtected(pr, m.svc)
		}, m.deps.PerUser()...)
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the exported ports
func (m *Module) Ports() any { return Exports{Directory: m.svc} }
