package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/editorial-lifecycle-api/internal/api"
	"github.com/editorial-lifecycle-api/internal/auth"
	"github.com/editorial-lifecycle-api/internal/backup"
	"github.com/editorial-lifecycle-api/internal/config"
	"github.com/editorial-lifecycle-api/internal/database"
	"github.com/editorial-lifecycle-api/internal/kv"
	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/notify"
	"github.com/editorial-lifecycle-api/internal/service"
	"github.com/editorial-lifecycle-api/pkg/logger"
)

const redisKeyPrefix = "editorial:"

func main() {
	rollback := flag.Bool("rollback", false, "revert the latest database migration and exit (postgres driver only)")
	flag.Parse()

	// A missing .env is normal outside local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := logger.New("info", "json")
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("storage", cfg.Storage.Driver).Msg("Starting Editorial Lifecycle API server...")

	backend, closeBackend := openBackend(cfg, *rollback, log)
	defer closeBackend()

	adapter := kv.NewAdapter(backend, log)

	// Initialize the lifecycle store
	opts := []lifecycle.Option{lifecycle.WithBus(notify.NewBus(log))}
	if !cfg.Lifecycle.SeedPublished {
		opts = append(opts, lifecycle.WithSeed(nil))
	}
	store := lifecycle.NewStore(adapter, log, opts...)
	backups := backup.NewTracker(adapter, cfg.Backup.ReminderDays, log)

	// Initialize services
	services, err := service.NewServices(store, backups, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	// Start scheduled publishing sweeper
	services.Sweeper.Start()
	log.Info().Str("schedule", cfg.Lifecycle.SweepSchedule).Msg("Sweeper started")

	gate := auth.NewJWTGate(cfg.Auth.JWTSecret, cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash, cfg.Auth.TokenTTL)
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn().Msg("auth.admin_password_hash is empty, admin login is disabled")
	}

	// Initialize router
	router := api.NewRouter(api.Deps{
		Store:    store,
		Services: services,
		Backups:  backups,
		Auth:     gate,
	}, cfg, log)

	// Create HTTP server
	srv := api.NewServer(router, &cfg.Server)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop sweeper before the store goes away
	services.Sweeper.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		srv.Close()
		return
	}

	log.Info().Msg("Server exited gracefully")
}

// openBackend builds the key-value backend selected by storage.driver. The
// returned func releases any connection it opened.
func openBackend(cfg *config.Config, rollback bool, log zerolog.Logger) (kv.Backend, func()) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.DriverNone:
		log.Warn().Msg("Storage disabled, changes will not survive a restart")
		return nil, noop

	case config.DriverMemory:
		return kv.NewMemory(), noop

	case config.DriverFile:
		f, err := kv.NewFile(cfg.Storage.FilePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.FilePath).Msg("Failed to open storage file")
		}
		return f, noop

	case config.DriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := kv.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		return kv.NewRedis(client, redisKeyPrefix), func() { client.Close() }

	case config.DriverPostgres:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}

		if rollback {
			if err := db.MigrateDown(cfg.Database.MigrationsPath); err != nil {
				log.Fatal().Err(err).Msg("Failed to roll back database migrations")
			}
			db.Close()
			os.Exit(0)
		}

		// Run migrations
		if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		return kv.NewPostgres(db), func() { db.Close() }
	}

	log.Fatal().Str("driver", cfg.Storage.Driver).Msg("Unknown storage driver")
	return nil, noop
}
