package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Spok95/poletreat/internal/api"
	"github.com/Spok95/poletreat/internal/auth"
	"github.com/Spok95/poletreat/internal/config"
	"github.com/Spok95/poletreat/internal/crud"
	"github.com/Spok95/poletreat/internal/domain/finance"
	"github.com/Spok95/poletreat/internal/domain/parties"
	"github.com/Spok95/poletreat/internal/domain/sorting"
	"github.com/Spok95/poletreat/internal/domain/stock"
	"github.com/Spok95/poletreat/internal/domain/suppliers"
	"github.com/Spok95/poletreat/internal/domain/treatment"
	"github.com/Spok95/poletreat/internal/infra/db"
	httpx "github.com/Spok95/poletreat/internal/infra/http"
	"github.com/Spok95/poletreat/internal/infra/metrics"
	"github.com/Spok95/poletreat/internal/infra/telegram"
	"github.com/Spok95/poletreat/internal/report"
	"github.com/Spok95/poletreat/migrations"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := migrations.Up(cfg.Postgres.DSN, log); err != nil {
		log.Error("migrations failed", "err", err)
		return err
	}

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer pool.Close()
	log.Info("db connected")

	m := metrics.New(nil)

	users := auth.NewUsers(pool)
	var principals auth.PrincipalStore = users
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer func() { _ = rdb.Close() }()
		principals = auth.NewCachedStore(users, rdb, log)
		log.Info("principal cache enabled", "addr", cfg.Redis.Addr)
	}

	sinks := sorting.MultiSink{sorting.LogSink{Log: log}, sorting.ContextSink{}}
	if cfg.Telegram.Token != "" {
		tg, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.AdminChatID, log)
		if err != nil {
			log.Warn("telegram notifier disabled", "err", err)
		} else {
			sinks = append(sinks, tg)
			go func() { _ = tg.Run(ctx) }()
			log.Info("telegram notifier enabled", "chat_id", cfg.Telegram.AdminChatID)
		}
	}

	stockRepo := stock.NewRepo(pool, cfg.Stock.EnforceRemaining)
	financeRepo := finance.NewRepo(pool)

	srv := httpx.New(cfg.HTTP.Addr, cfg.App.Env, log, m, cfg.Metrics.Enabled)
	api.Register(srv.Engine(), api.Deps{
		Log:        log,
		Authz:      auth.NewRoleAuthorizer(),
		Tokens:     auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Principals: principals,
		Users:      users,
		Sorter:     sorting.NewService(stockRepo, sinks, log, m),
		Stock:      stockRepo,
		Suppliers:  suppliers.NewRepo(pool),
		Treatments: treatment.NewRepo(pool),
		Clients:    crud.NewRepo(pool, parties.Clients()),
		Customers:  crud.NewRepo(pool, parties.Customers()),
		Finance:    financeRepo,
		Reports:    report.NewService(stockRepo, financeRepo),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
