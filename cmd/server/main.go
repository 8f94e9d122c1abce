package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/api"
	"github.com/notifyhub/flagnotify/internal/config"
	"github.com/notifyhub/flagnotify/internal/db"
	"github.com/notifyhub/flagnotify/internal/mailer"
	"github.com/notifyhub/flagnotify/internal/metrics"
	"github.com/notifyhub/flagnotify/internal/notify"
	"github.com/notifyhub/flagnotify/internal/pending"
	"github.com/notifyhub/flagnotify/internal/queue"
	"github.com/notifyhub/flagnotify/internal/render"
	"github.com/notifyhub/flagnotify/internal/store"
	"github.com/notifyhub/flagnotify/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, "migrations"); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- pending-work lock (redis) ----
	rdb := pending.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()
	lock := pending.NewRedisLock(rdb)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	contentStore := store.NewPgContentStore(pool)
	subscriptionStore := store.NewPgSubscriptionStore(pool)
	accountStore := store.NewPgAccountStore(pool)
	settingsStore := store.NewPgSettingsStore(pool)
	localeStore := store.NewPgLocaleStore(pool)

	jobQueue := queue.NewPgQueue(pool, cfg.RedeliveryDelay, cfg.ClaimTimeout)
	mail := mailer.NewGatewayMailer(cfg.MailGatewayURL, cfg.MailTimeout, cfg.MailRatePerSec, logger)
	renderer := render.NewTokenRenderer()

	onDelivered, onFailed, onSkipped := m.EngineHooks()
	engine := notify.NewEngine(
		contentStore, subscriptionStore, accountStore, settingsStore, localeStore,
		renderer, mail, cfg.SiteName, cfg.BatchSize, logger,
		notify.Hooks{OnDelivered: onDelivered, OnFailed: onFailed, OnSkipped: onSkipped},
	)
	publisher := notify.NewPublisher(lock, jobQueue, logger)

	// ---- queue consumers ----
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	for i := 0; i < cfg.ConsumerCount; i++ {
		c := worker.NewConsumer(
			i, jobQueue, lock, settingsStore, engine,
			cfg.ConsumerInterval, logger, m.ConsumerHook(),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Run(workerCtx)
		}()
	}

	// ---- HTTP server ----
	router := api.NewRouter(publisher, jobQueue, reg, logger, func() {
		m.EventsDebounced.Inc()
	})
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests (and new update events).
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal consumers to stop claiming jobs, then wait for in-flight
	// dispatch runs to finish. Pending entries for unfinished jobs stay
	// set; the durable queue redelivers them after restart.
	cancelWorkers()
	wg.Wait()

	logger.Info("server stopped cleanly")
}
