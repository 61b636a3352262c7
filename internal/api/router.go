package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Lucila07/psi-mamolliti-challenge/internal/availability"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/booking"
	"github.com/Lucila07/psi-mamolliti-challenge/internal/timezone"
)

type RouterConfig struct {
	Bookings     *booking.Service
	Projector    *availability.Projector
	Statistics   *booking.Aggregator
	Catalog      booking.Catalog
	Resolver     *timezone.Resolver
	FacilityZone string
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Env          string
	Version      string
	Logger       zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Booking submission surface
	r.Post("/bookings", createBookingHandler(cfg.Bookings))
	r.Post("/bookings/{id}/cancel", cancelBookingHandler(cfg.Bookings))
	r.Delete("/bookings/{id}", removeBookingHandler(cfg.Bookings))

	// Query surfaces
	r.Get("/availability", availabilityHandler(cfg.Projector, cfg.FacilityZone))
	r.Get("/statistics", statisticsHandler(cfg.Statistics))
	r.Get("/providers", listProvidersHandler(cfg.Catalog))
	r.Get("/providers/{id}", getProviderHandler(cfg.Catalog))
	r.Get("/timezone-info", timezoneInfoHandler(cfg.Resolver))

	return r
}
