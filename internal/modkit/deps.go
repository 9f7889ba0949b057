// Package modkit provides module wiring and core deps
package modkit

import (
	"net/http"

	"kydu/internal/modkit/httpkit"
	"kydu/internal/modkit/repokit"
	"kydu/internal/platform/auth"
	"kydu/internal/platform/config"
	"kydu/internal/platform/logger"
	"kydu/internal/platform/metrics"
	"kydu/internal/platform/net/middleware"
	"kydu/internal/platform/store"
)

// Deps holds core dependencies passed to modules
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	CH      store.Clickhouse
	Tokens  *auth.Tokens
	Metrics *metrics.Collector

	// Limiter throttles authenticated callers; nil disables it
	Limiter *middleware.RateLimiter
}

// Named returns a copy of d whose logger carries the component field
func (d Deps) Named(component string) Deps {
	d.Log = d.Log.With().Str("component", component).Logger()
	return d
}

// Auth returns the bearer port protected routes verify against; without
// Tokens every request is unauthorized
func (d Deps) Auth() *httpkit.Port {
	if d.Tokens == nil {
		return httpkit.NewPortFunc(nil)
	}
	return httpkit.NewPortFunc(d.Tokens.Verify)
}

// PerUser returns the middleware protected routes add after auth
func (d Deps) PerUser() []func(http.Handler) http.Handler {
	if d.Limiter == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{httpkit.RateLimit(d.Limiter)}
}
