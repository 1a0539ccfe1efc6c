// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-home-decorator/internal/config"
	"ai-home-decorator/internal/domain/model"
	"ai-home-decorator/internal/domain/ports/adapter"
	aiAdapters "ai-home-decorator/internal/infra/adapters/ai"
	"ai-home-decorator/internal/infra/adapters/notification"
	payAdapters "ai-home-decorator/internal/infra/adapters/payment"
	pg "ai-home-decorator/internal/infra/db/postgres"
	httpapi "ai-home-decorator/internal/infra/http"
	"ai-home-decorator/internal/infra/logging"
	"ai-home-decorator/internal/infra/metrics"
	red "ai-home-decorator/internal/infra/redis"
	"ai-home-decorator/internal/infra/sched"
	"ai-home-decorator/internal/infra/web"
	"ai-home-decorator/internal/infra/worker"
	"ai-home-decorator/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop store, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	profileRepo := pg.NewPostgresProfileRepo(pool)
	fulfillmentRepo := pg.NewPostgresFulfillmentRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Credit catalog ----
	catalog := model.DefaultCreditCatalog()
	if len(cfg.Credits.Catalog) > 0 {
		catalog, err = model.NewCreditCatalog(cfg.Credits.Catalog)
		if err != nil {
			logger.Fatal().Err(err).Msg("credits.catalog")
		}
	}
	logger.Info().Strs("products", catalog.Products()).Msg("credit catalog loaded")

	// ---- Notifications ----
	notifier := notification.NewExpoPushDispatcher(cfg.Notify.ExpoPushURL)
	pushPool := worker.NewPool(cfg.Notify.Workers, logger)
	pushPool.Start(ctx)
	defer pushPool.Stop()

	// ---- Payment gateway (RevenueCat -> noop in dev) ----
	var gateway adapter.PaymentGateway
	if cfg.RevenueCat.APIKey != "" {
		gateway, err = payAdapters.NewRevenueCatGateway(cfg.RevenueCat.APIKey, cfg.RevenueCat.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("revenuecat gateway")
		}
	} else if cfg.Runtime.Dev {
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Warn().Msg("no revenuecat api key, using noop gateway")
	} else {
		logger.Fatal().Msg("revenuecat.api_key is required outside dev mode")
	}

	// ---- AI adapter ----
	if cfg.AI.GeminiKey == "" {
		logger.Fatal().Msgf("no AI provider configured: set ai.gemini_key in %s", *cfgPath)
	}
	generator, err := aiAdapters.NewGeminiImageAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.Model)
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini adapter")
	}

	// ---- Use cases ----
	fulfillmentUC := usecase.NewFulfillmentUseCase(profileRepo, fulfillmentRepo, txManager, catalog, notifier, pushPool, logger)
	profileUC := usecase.NewProfileUseCase(profileRepo, txManager, notifier, gateway, pushPool, cfg.Credits.Welcome, logger)
	purchaseUC := usecase.NewPurchaseUseCase(gateway, locker, cfg.Redis.TTL, logger)
	generationUC := usecase.NewGenerationUseCase(profileRepo, generator, logger)
	statsUC := usecase.NewStatsUseCase(profileRepo, logger)

	// ---- Webhook receiver ----
	webhookSrv := httpapi.NewServer(cfg, fulfillmentUC, logger)
	go func() {
		if err := webhookSrv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("webhook server stopped")
		}
	}()

	// ---- Client/admin API ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, 0)
	apiSrv := web.NewServer(profileUC, purchaseUC, generationUC, statsUC, auth, cfg.Auth.AdminAPIKey, logger)
	mux := http.NewServeMux()
	apiSrv.RegisterRoutes(mux)
	apiServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.APIPort), Handler: mux}
	go func() {
		logger.Info().Int("port", cfg.Server.APIPort).Msg("api server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api server stopped")
		}
	}()

	// ---- Reconciliation worker ----
	reconciler := sched.NewReconcileWorker(fulfillmentUC, profileRepo, gateway,
		cfg.Reconcile.Interval, cfg.Reconcile.Lookback, cfg.Reconcile.Batch, logger)
	go reconciler.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := webhookSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("webhook shutdown")
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("api shutdown")
	}
}
