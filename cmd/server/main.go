package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"solar-strategy-service/internal/adapters/environment"
	"solar-strategy-service/internal/adapters/repositories"
	"solar-strategy-service/internal/api"
	"solar-strategy-service/internal/config"
	"solar-strategy-service/internal/platform/db"
	"solar-strategy-service/internal/platform/logging"
	"solar-strategy-service/internal/ports"
	"solar-strategy-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite or Postgres, solar geometry) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	vehiclePath := config.Get("VEHICLE_CONFIG", "config/vehicle.yaml")
	dbPath := config.Get("DB_PATH", "data/routes.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/routes.json")
	port := config.Get("PORT", "8080")
	workers := workerCount(logger)

	params, err := config.LoadVehicle(vehiclePath)
	if err != nil {
		logger.Fatal("load vehicle parameters", zap.Error(err))
	}

	ctx := context.Background()

	var source ports.RouteSource
	var store ports.TelemetryStore

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL != "" {
		pool, err := db.OpenPostgres(ctx, databaseURL)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		defer pool.Close()

		pg := repositories.NewPostgresStore(pool)
		if err := pg.InitSchema(ctx); err != nil {
			logger.Fatal("init postgres schema", zap.Error(err))
		}
		source, store = pg, pg
		logger.Info("using postgres storage")
	} else {
		sdb, err := db.OpenSqlite(ctx, dbPath)
		if err != nil {
			logger.Fatal("open sqlite", zap.Error(err))
		}
		defer sdb.Close()

		if err := initAndSeed(sdb, seedPath, logger); err != nil {
			logger.Fatal("prepare sqlite storage", zap.Error(err))
		}
		source = repositories.NewSqliteRouteRepository(sdb)
		store = repositories.NewSqliteTelemetryStore(sdb)
		logger.Info("using sqlite storage", zap.String("path", dbPath))
	}

	solar := environment.NewSolarEstimator(params)
	solver := services.NewKinematicsSolver(params, logger)
	energy, err := services.NewEnergyModel(params, solar)
	if err != nil {
		logger.Fatal("init energy model", zap.Error(err))
	}
	driver := services.NewSimulationDriver(params, solver, energy, store, logger)

	router := api.NewRouter(api.RouterDeps{
		Source:  source,
		Store:   store,
		Driver:  driver,
		Workers: workers,
		Log:     logger,
	})

	// Write timeout covers a full batch simulation over all stored routes.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", zap.String("addr", srv.Addr), zap.Int("workers", workers))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func workerCount(logger *zap.Logger) int {
	raw := config.Get("SIM_WORKERS", "4")
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		logger.Warn("invalid SIM_WORKERS, using default", zap.String("value", raw))
		return 4
	}
	return n
}

func initAndSeed(sdb *sql.DB, seedPath string, logger *zap.Logger) error {
	if err := repositories.InitSchema(sdb); err != nil {
		return err
	}
	if err := repositories.MigrateLegacy(sdb); err != nil {
		return err
	}

	// Seed demo routes on startup for local runs; skip quietly when the
	// seed file is absent.
	if _, err := os.Stat(seedPath); err != nil {
		logger.Info("no seed file, skipping seed", zap.String("path", seedPath))
		return nil
	}
	return repositories.SeedFromJSON(sdb, seedPath)
}
