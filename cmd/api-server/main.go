package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/api"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/availability"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/config"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/db"
	redisclient "github.com/Lucila07/psi-mamolliti-challenge/internal/redis"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	if cfg.Env == "dev" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	logger.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("facility_timezone", cfg.FacilityTimezone).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	resolver := timezone.NewResolver()
	converter, err := timezone.NewConverter(resolver, cfg.FacilityTimezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("facility timezone not resolvable")
	}

	repo := booking.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	writer := booking.NewService(repo, repo, locker, cfg.FacilityTimezone, logger)
	projector := availability.NewProjector(availability.NewPgTemplateStore(pgPool), repo, converter)
	aggregator := booking.NewAggregator(repo, repo)

	router := api.NewRouter(api.RouterConfig{
		Bookings:     writer,
		Projector:    projector,
		Statistics:   aggregator,
		Catalog:      repo,
		Resolver:     resolver,
		FacilityZone: cfg.FacilityTimezone,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
