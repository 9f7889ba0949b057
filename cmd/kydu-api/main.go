// @title         Kydu API
// @version       0.1.0
// @description   Gig connections, chats and realtime delivery

package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"kydu/internal/modkit/repokit"
	"kydu/internal/platform/config"
	"kydu/internal/platform/logger"
	phttp "kydu/internal/platform/net/http"
	"kydu/internal/platform/net/middleware"
	"kydu/internal/platform/store"
	"kydu/internal/platform/store/migrate"

	"kydu/internal/services/api"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := store.Config{
		AppName: "kydu-api",
		PG:      store.PGFromConfig(pgCfg),
		CH:      store.CHFromConfig(chCfg, "api"),
	}
	if sc.PG.Enabled && pgCfg.MayBool("MIGRATE", true) {
		if err := migrate.Up(sc.PG.URL); err != nil {
			l.Fatal().Err(err).Msg("migrations failed")
		}
	}

	st, err := store.Open(ctx, sc, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if err := repokit.CheckReady(ctx, st, pgCfg.MayDuration("READY_TIMEOUT", repokit.DefaultReadyTimeout)); err != nil {
		l.Fatal().Err(err).Msg("store not reachable")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// load balancers probe /healthz ahead of routing and logging
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) { m.Use(middleware.Heartbeat("/healthz")) })
	rt, err := api.Mount(ctx, srv.Router(), api.Options{
		Config:        root,
		Store:         st,
		Logger:        l,
		EnableSwagger: apiCfg.MayBool("SWAGGER", true),
		Registry:      reg,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("api mount failed")
	}
	defer rt.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rt.Worker.Run(ctx); err != nil {
			l.Error().Err(err).Msg("delivery worker stopped")
		}
	}()

	// hijacked websocket connections outlive http.Server.Shutdown, so the
	// transport drains them itself once the signal arrives
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), apiCfg.MayDuration("REALTIME_DRAIN", 5*time.Second))
		defer cancel()
		if err := rt.Transport.Shutdown(sctx); err != nil {
			l.Warn().Err(err).Int("sessions", rt.Transport.Len()).Msg("realtime drain incomplete")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
		stop()
	}
	wg.Wait()
	l.Info().Msg("kydu-api stopped")
}
