// Package main is the entry point for the Travel Desk API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/travel-desk/internal/config"
	"github.com/pkordes/travel-desk/internal/events"
	"github.com/pkordes/travel-desk/internal/handler"
	"github.com/pkordes/travel-desk/internal/invoice"
	"github.com/pkordes/travel-desk/internal/jobs"
	"github.com/pkordes/travel-desk/internal/middleware"
	"github.com/pkordes/travel-desk/internal/repo"
	"github.com/pkordes/travel-desk/internal/schedule"
	"github.com/pkordes/travel-desk/internal/service"
	"github.com/pkordes/travel-desk/internal/storage"
	"github.com/pkordes/travel-desk/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotenv(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Cancelled on SIGINT/SIGTERM; background workers stop with it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	trips := repo.NewTripRepo(pool)
	vehicles := repo.NewVehicleRepo(pool)
	drivers := repo.NewDriverRepo(pool)
	customers := repo.NewCustomerRepo(pool)
	expenses := repo.NewExpenseRepo(pool)
	attendance := repo.NewAttendanceRepo(pool)
	invoices := repo.NewInvoiceRepo(pool)

	clock := schedule.NewClock(cfg.Location)

	// --- Change feed ------------------------------------------------------
	hub := events.NewHub()
	var announcer service.Announcer
	var relay *events.RedisRelay
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		relay = events.NewRedisRelay(rdb, events.DefaultChannel, logger)
		announcer = relay
		slog.Info("change relay enabled")
	}
	feed := service.NewChangeFeed(hub, service.FeedSources{
		Trips:     trips,
		Vehicles:  vehicles,
		Drivers:   drivers,
		Customers: customers,
		Expenses:  expenses,
	}, announcer, logger)
	if relay != nil {
		go func() {
			err := relay.Run(ctx, func(ctx context.Context, topic events.Topic) {
				if err := feed.Refresh(ctx, topic); err != nil {
					logger.Warn("relayed refresh failed", "topic", string(topic), "error", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("change relay stopped", "error", err)
			}
		}()
	}

	// --- Blob storage -----------------------------------------------------
	var store storage.BlobStore
	var files http.Handler
	switch cfg.StorageDriver {
	case config.StorageS3:
		s3Store, err := storage.NewS3Store(ctx, cfg.S3Region, cfg.S3Bucket, cfg.StorageBaseURL)
		if err != nil {
			slog.Error("failed to configure s3 storage", "error", err)
			os.Exit(1)
		}
		store = s3Store
	default:
		local, err := storage.NewLocalStore(cfg.StorageDir, cfg.StorageBaseURL)
		if err != nil {
			slog.Error("failed to configure local storage", "error", err)
			os.Exit(1)
		}
		store, files = local, local.Handler()
	}

	// --- Services ---------------------------------------------------------
	synchronizer := service.NewStatusSynchronizer(trips, vehicles, drivers, clock, logger)
	reconciler := service.NewReconciler(synchronizer, feed)

	srv := handler.NewServer(handler.Deps{
		Trips: service.NewTripService(service.TripDeps{
			Trips:     trips,
			Customers: customers,
			Vehicles:  vehicles,
			Drivers:   drivers,
			Syncer:    synchronizer,
			Notifier:  feed,
			Clock:     clock,
			Log:       logger,
		}),
		Availability: service.NewAvailabilityService(trips, vehicles, drivers),
		Sync:         reconciler,
		Vehicles:     service.NewVehicleService(vehicles, feed),
		Drivers:      service.NewDriverService(drivers, vehicles, feed),
		Attendance:   service.NewAttendanceService(attendance, drivers, clock),
		Customers:    service.NewCustomerService(customers),
		Accounts:     service.NewAccountsService(expenses, trips, feed),
		Invoices: service.NewInvoiceService(service.InvoiceDeps{
			Trips:    trips,
			Vehicles: vehicles,
			Drivers:  drivers,
			Invoices: invoices,
			Renderer: invoice.NewPDFRenderer(cfg.CompanyName),
			Store:    store,
			Clock:    clock,
			Log:      logger,
		}),
		Export: service.NewExportService(trips, vehicles, drivers),
		Live:   hub,
		Files:  files,
		Log:    logger,
	})

	// --- Background jobs --------------------------------------------------
	// The first pass runs synchronously so statuses are current before the
	// first request is served.
	scheduler := jobs.NewScheduler(reconciler, time.Minute, logger)
	if err := scheduler.Start(ctx, cfg.ReconcileSchedule); err != nil {
		slog.Error("failed to schedule reconciliation", "error", err)
		os.Exit(1)
	}
	if err := feed.Prime(ctx); err != nil {
		slog.Warn("initial snapshots not published", "error", err)
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → MaxBodySize. Authentication and rate limiting run per route
	// group inside the handler router.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	opts := handler.RouteOptions{Secret: []byte(cfg.JWTSecret)}
	if cfg.RateLimitRPS > 0 {
		opts.Limit = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler
	}
	r.Mount("/", srv.Routes(opts))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WebSocket connections manage their own deadlines after the upgrade.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give in-flight requests and a running reconciliation pass up to
	// 15 seconds to complete before forcefully closing.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations over a short-lived database/sql
// connection; goose does not speak pgxpool.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
	}
	return nil
}
