package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/meddot/meddot-backend/api/routes"
	"github.com/meddot/meddot-backend/internal/mailrelay"
	"github.com/meddot/meddot-backend/internal/toast"
	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/db"
	"github.com/meddot/meddot-backend/pkg/logger"
	"github.com/meddot/meddot-backend/pkg/metrics"
	"github.com/meddot/meddot-backend/pkg/migrate"
	"github.com/meddot/meddot-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	params := routes.Params{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
	}

	// Redis is optional; without it the relay rate limit is off.
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		params.Redis = redisClient
		params.RateLimiter = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, mail relay rate limit disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	params.Gatherer = registry

	hub := toast.NewHub(toast.HubParams{
		DefaultDuration: cfg.Toast.DefaultDuration,
		IdleTTL:         cfg.Toast.IdleTTL,
		Metrics:         metrics.NewToastMetrics(registry),
	})
	params.Toasts = hub

	sweeper, err := toast.NewSweeper(hub, cfg.Toast.SweepInterval, logg)
	if err != nil {
		logg.Error(ctx, "failed to create toast sweeper", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer func() {
		if err := sweeper.Shutdown(); err != nil {
			logg.Error(context.Background(), "error stopping toast sweeper", err)
		}
	}()

	relay, err := newMailRelay(cfg, logg, metrics.NewMailMetrics(registry))
	if err != nil {
		logg.Error(ctx, "failed to create mail relay", err)
		os.Exit(1)
	}
	params.Mail = relay

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(params),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logg.Info(serverCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logg.Error(serverCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// newMailRelay picks SendGrid when an API key is configured and logs mail otherwise.
func newMailRelay(cfg *config.Config, logg *logger.Logger, mailMetrics *metrics.MailMetrics) (*mailrelay.Relay, error) {
	params := mailrelay.RelayParams{Metrics: mailMetrics, Logger: logg}
	if cfg.Mail.UseConsole() {
		if cfg.App.IsProd() {
			logg.Warn(context.Background(), "sendgrid api key missing in prod, mail is logged only")
		}
		params.Sender = mailrelay.NewConsoleSender(logg)
		params.Provider = "console"
		return mailrelay.NewRelay(params), nil
	}

	sender, err := mailrelay.NewSendgridSender(cfg.Mail)
	if err != nil {
		return nil, err
	}
	params.Sender = sender
	params.Provider = "sendgrid"
	return mailrelay.NewRelay(params), nil
}
