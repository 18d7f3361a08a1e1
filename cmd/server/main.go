package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/mkalra/peercall/internal/adapters/http"
	"github.com/mkalra/peercall/internal/adapters/rest"
	wsignal "github.com/mkalra/peercall/internal/adapters/signal"
	"github.com/mkalra/peercall/internal/app"
	"github.com/mkalra/peercall/internal/app/orch"
	"github.com/mkalra/peercall/internal/auth"
	"github.com/mkalra/peercall/internal/config"
	"github.com/mkalra/peercall/internal/presence"
	"github.com/mkalra/peercall/internal/sms"
	"github.com/mkalra/peercall/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	st, err := store.Open(ctx, cfg.Postgres.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to reach redis")
	}
	defer rdb.Close()

	tokens := auth.New(cfg.Secret, cfg.TokenTTL)
	pres := presence.New(rdb, cfg.SMS.CodeTTL)

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRooms(),
	}

	opts := wsignal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PeerLeft:   cfg.PeerLeft,
	}
	if cfg.WSRequireAuth {
		opts.Tokens = tokens
	}
	ctl := wsignal.NewController(o, opts)

	h := rest.NewHandlers(st, pres, tokens, sms.LogSender{}, cfg.WebRTCICEServers(), cfg.SMS.Limit, cfg.SMS.Interval)

	r := router.SetupRouter(cfg, ctl, h, tokens)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("PeerCall server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
