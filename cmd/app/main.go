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

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"saman-gateway-mock/internal/config"
	pg "saman-gateway-mock/internal/infra/db/postgres"
	"saman-gateway-mock/internal/infra/logging"
	"saman-gateway-mock/internal/infra/metrics"
	red "saman-gateway-mock/internal/infra/redis"
	"saman-gateway-mock/internal/infra/sched"
	"saman-gateway-mock/internal/infra/web"
	"saman-gateway-mock/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	// ---- Redis (optional; without it the gateway runs unthrottled) ----
	var limiter red.Limiter = red.NoopLimiter{}
	var locker red.Locker = red.NoopLocker{}
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
		locker = red.NewLocker(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; rate limiting and finalize locks disabled")
	}

	// ---- Repositories ----
	terminalRepo := pg.NewTerminalRepo(pool)
	transactionRepo := pg.NewTransactionRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	terminalUC := usecase.NewTerminalUseCase(terminalRepo)
	tokenUC := usecase.NewTokenUseCase(transactionRepo, terminalRepo, txManager, usecase.TokenLimits{
		MinExpiryMin:    cfg.Gateway.MinTokenExpiryMin,
		MaxExpiryMin:    cfg.Gateway.MaxTokenExpiryMin,
		ReceiptTTL:      cfg.Gateway.ReceiptTTL,
		VerifyDeadline:  cfg.Gateway.VerifyDeadline,
		ReverseDeadline: cfg.Gateway.ReverseDeadline,
		Website:         cfg.Gateway.Website,
	}, logger)
	receiptUC := usecase.NewReceiptUseCase(transactionRepo, txManager, logger)

	// ---- Expiry worker ----
	worker := sched.NewExpiryWorker(cfg.Sweeper.Interval, tokenUC, logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- HTTP server ----
	metrics.MustRegister()
	srv := web.NewServer(terminalUC, tokenUC, receiptUC, limiter, locker, cfg, logger)
	router := chi.NewRouter()
	srv.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	handler := web.Chain(router,
		web.TraceID(),
		web.RequestLog(logger),
		web.LowercaseBankPaths(web.BankPrefix),
	)

	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: handler}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	_ = server.Shutdown(context.Background())
	cancel()
}
