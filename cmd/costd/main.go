package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/AliGanji14/cost-management/internal/cache"
	"github.com/AliGanji14/cost-management/internal/cli"
	apphttp "github.com/AliGanji14/cost-management/internal/http"
	"github.com/AliGanji14/cost-management/internal/log"
	"github.com/AliGanji14/cost-management/internal/middleware/ratelimit"
	"github.com/AliGanji14/cost-management/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg)

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	taxonomy := services.NewTaxonomyService(store)

	cacheManager := cache.NewManager()
	cacheManager.Register(taxonomy.Caches()...)
	cacheManager.StartCleanup(5 * time.Minute)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		CleanupInterval:   5 * time.Minute,
	})

	srv := apphttp.NewServer(":"+cfg.Port, store, apphttp.Services{
		Users:    services.NewUserService(store),
		Taxonomy: taxonomy,
		Expenses: services.NewExpenseService(store),
		Budgets:  services.NewBudgetService(store, cfg.EvalConcurrency),
	}, limiter, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		limiter.Stop()
		cacheManager.Stop()
	})

	logger.Info("Starting costd server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
