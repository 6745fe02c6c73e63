// @title         Share Relay API
// @version       0.1.0
// @description   Accepts shared links, persists them and fans them out to live event streams
// @BasePath      /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-Api-Key

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"sharerelay/internal/core/version"
	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"
	phttp "sharerelay/internal/platform/net/http"
	"sharerelay/internal/platform/store"

	"sharerelay/internal/services/api"
)

const shutdownFlush = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	pgCfg := root.Prefix("PG_")

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()

	dbURL := root.MayString("DATABASE_URL", "")
	chDSN := root.MayString("CLICKHOUSE_DSN", "")

	// both backends are optional: without them shares go to PostgREST and no ledger is kept
	st, err := store.Open(ctx,
		store.Config{
			AppName: "sharerelay-api",
			PG: store.PGConfig{
				Enabled:     dbURL != "",
				URL:         dbURL,
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			CH: store.CHConfig{
				Enabled: chDSN != "",
				DSN:     chDSN,
				Role:    "sharerelay",
				Tag:     "api",
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	bi := version.Info()
	l.Info().
		Str("version", bi.Version).
		Str("commit", bi.Commit).
		Str("addr", phttp.ListenAddr(root)).
		Str("relay_store", root.MayString("RELAY_STORE", "postgrest")).
		Str("supabase_url", root.MayString("SUPABASE_URL", "")).
		Int("supabase_key_len", len(root.MayString("SUPABASE_SERVICE_ROLE_KEY", ""))).
		Str("table_channels", root.MayString("SUPABASE_TABLE_CHANNELS", "channels")).
		Str("table_videos", root.MayString("SUPABASE_TABLE_VIDEOS", "relay_videos")).
		Str("videos_mode", root.MayString("SUPABASE_VIDEOS_MODE", "relay")).
		Bool("postgres", st.PG != nil).
		Bool("ledger", st.CH != nil).
		Bool("require_sse_token", root.MayBool("REQUIRE_SSE_TOKEN", false)).
		Msg("sharerelay starting")

	// http server (reads PORT / ADDR)
	srv := phttp.NewServer(root)

	mounted, err := api.Mount(ctx, srv.Router(), api.Options{
		Config:         root,
		Store:          st,
		Logger:         l,
		EnableSwagger:  root.MayBool("SWAGGER", true),
		EnableProfiler: root.MayBool("PROFILER", false),
		EnableMetrics:  root.MayBool("METRICS", true),
	})
	if err != nil {
		l.Error().Err(err).Msg("api mount failed")
		return
	}
	// runs before the store closes so queued ledger rows still have a connection
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), shutdownFlush)
		defer cancel()
		if err := mounted.Close(cctx); err != nil {
			l.Error().Err(err).Msg("failed to close api modules")
		}
	}()

	// run until SIGINT/SIGTERM, then drain
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
}
