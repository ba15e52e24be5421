/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load configuration (environment / .env)
  2. Initialize SQLite store
  3. Wire index providers, resolver and ledger manager
  4. Configure HTTP router and the monthly run scheduler
  5. Start server with graceful shutdown

CONFIGURATION (environment variables):
  PORT           HTTP server port (default: 8080)
  DB_PATH        SQLite database path (default: ./data/inmo.db)
                 Use ":memory:" for an in-memory database
  LOG_LEVEL      logrus level (default: info)
  INFLATION_URL  Override the inflation series endpoint
  LABOR_URL      Override the labor-cost series endpoint
  RUN_SCHEDULE   Cron expression for the automatic monthly run
                 (default: "0 6 1 * *", empty disables it)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Automatic monthly run
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darioabadie/inmo/api"
	"github.com/darioabadie/inmo/config"
	"github.com/darioabadie/inmo/indices"
	"github.com/darioabadie/inmo/ledger"
	"github.com/darioabadie/inmo/pricing"
	"github.com/darioabadie/inmo/store/sqlite"
)

func main() {
	cfg := config.New()
	log := cfg.Logger()

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer st.Close()

	resolver := pricing.NewResolver(
		indices.NewInflationClient(cfg.InflationURL, log),
		indices.NewLaborCostClient(cfg.LaborCostURL, log),
		log,
	)
	manager := ledger.NewManager(st, resolver, nil, log)

	handler := api.NewHandler(st, manager, log)
	router := api.NewRouter(handler)

	var scheduler *api.RunScheduler
	if cfg.RunSchedule != "" {
		scheduler, err = api.NewRunScheduler(cfg.RunSchedule, st, manager, log)
		if err != nil {
			log.WithError(err).Fatal("failed to configure run scheduler")
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server stopped")
}
