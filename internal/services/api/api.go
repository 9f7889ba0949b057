// Package api composes the kydu modules into one HTTP surface
package api

import (
	"context"
	"fmt"

	"kydu/internal/core/delivery"
	"kydu/internal/core/version"
	"kydu/internal/platform/auth"
	"kydu/internal/platform/config"
	"kydu/internal/platform/logger"
	"kydu/internal/platform/metrics"
	phttp "kydu/internal/platform/net/http"
	"kydu/internal/platform/net/middleware"
	"kydu/internal/platform/store"

	"kydu/internal/modkit"
	"kydu/internal/modkit/httpkit"
	"kydu/internal/modkit/module"
	"kydu/internal/modkit/swaggerkit"

	accountsmod "kydu/internal/services/api/accounts/module"
	chatsmod "kydu/internal/services/api/chats/module"
	gigsmod "kydu/internal/services/api/gigs/module"
	metamod "kydu/internal/services/api/meta/module"
	realtimemod "kydu/internal/services/api/realtime/module"
	ddom "kydu/internal/services/delivery/domain"
	deliverymod "kydu/internal/services/delivery/module"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Options are the API options
type Options struct {
	// Config is the root view; modules take their own prefixes from it
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	EnableSwagger bool

	// Registry backs /metrics; nil disables metrics
	Registry *prometheus.Registry

	// Pusher replaces the configured push provider, mostly for tests
	Pusher delivery.Pusher
}

// Runtime is what the process must run and stop besides the HTTP server
type Runtime struct {
	Worker    ddom.WorkerPort
	Transport realtimemod.Transport
	Limiter   *middleware.RateLimiter
}

// Close releases what Mount started outside the worker
func (rt *Runtime) Close() {
	if rt != nil && rt.Limiter != nil {
		rt.Limiter.Stop()
	}
}

// Mount builds every module and mounts them under /api/v1
func Mount(ctx context.Context, r phttp.Router, opt Options) (*Runtime, error) {
	if opt.Logger == nil {
		opt.Logger = logger.Get()
	}

	var coll *metrics.Collector
	if opt.Registry != nil {
		coll = metrics.NewCollector(opt.Registry)
	}

	deps := modkit.Deps{
		Log:     *opt.Logger,
		Cfg:     opt.Config,
		Tokens:  auth.FromConfig(opt.Config.Prefix("AUTH_")),
		Metrics: coll,
		Limiter: limiterFromConfig(opt.Config.Prefix("CORE_API_")),
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	accounts := accountsmod.New(deps.Named("accounts"))
	dir := module.MustPortsOf[ddom.Directory](accounts)

	dm, err := deliverymod.New(ctx, deps.Named("delivery"), deliverymod.Needs{Directory: dir, Pusher: opt.Pusher}, deliverymod.Options{})
	if err != nil {
		return nil, fmt.Errorf("delivery: %w", err)
	}
	dp := module.MustPortsOf[deliverymod.Ports](dm)

	gigs := gigsmod.New(deps.Named("gigs"), modkit.WithPorts(gigsmod.Ports{Notifier: dp.Notifier}))
	gp := module.MustPortsOf[gigsmod.Exports](gigs)

	chats := chatsmod.New(deps.Named("chats"), modkit.WithPorts(chatsmod.Ports{
		Gigs:     gp.Reader,
		Notifier: dp.Notifier,
	}))
	cp := module.MustPortsOf[chatsmod.Exports](chats)

	rt := realtimemod.New(deps.Named("realtime"), modkit.WithPorts(realtimemod.Ports{
		Presence: dp.Presence,
		Chats:    cp.Sender,
	}))
	transport := module.MustPortsOf[realtimemod.Exports](rt).Transport

	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{Sessions: dp.Presence}))

	mods := []module.Module{meta, accounts, dm, gigs, chats, rt}

	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromConfig(opt.Config.Prefix("CORE_API_"))), func(api httpkit.Router) {
		for _, m := range mods {
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	if opt.EnableSwagger {
		swaggerkit.Register(stampVersion)
	}
	swaggerkit.Mount(r, opt.EnableSwagger)
	if opt.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opt.Registry))
	}

	return &Runtime{
		Worker:    dp.Worker,
		Transport: transport,
		Limiter:   deps.Limiter,
	}, nil
}

// limiterFromConfig reads RATE_LIMIT (requests per second) and RATE_BURST;
// a non positive rate turns throttling off
func limiterFromConfig(c config.Conf) *middleware.RateLimiter {
	rps := c.MayFloat64("RATE_LIMIT", 20)
	if rps <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:  rate.Limit(rps),
		Burst: c.MayInt("RATE_BURST", 40),
	})
}

// stampVersion reports the running build in the served OpenAPI document
func stampVersion(doc map[string]any) {
	info, ok := doc["info"].(map[string]any)
	if !ok {
		info = map[string]any{}
		doc["info"] = info
	}
	b := version.Info("kydu-api")
	info["version"] = b.Version
	info["x-commit"] = b.Commit
}
