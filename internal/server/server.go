package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"veganbite/internal/auth"
	"veganbite/internal/config"
	"veganbite/internal/database"
	"veganbite/internal/events"
	custommiddleware "veganbite/internal/middleware"
	"veganbite/internal/repository"
	"veganbite/internal/service"
	"veganbite/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        database.Service
	redis     *redis.Client
	publisher events.Publisher
}

// routeRegistrar is implemented by every transport handler.
type routeRegistrar interface {
	RegisterRoutes(r chi.Router, guards transport.Guards)
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	sqlDB := db.DB()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
		logger.Info("Publishing domain events to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	reviewRepo := repository.NewReviewRepository(sqlDB)
	favoriteRepo := repository.NewFavoriteRepository(sqlDB)
	customerRepo := repository.NewCustomerRepository(sqlDB)
	adminRepo := repository.NewAdminRepository(sqlDB)
	sessionRepo := repository.NewSessionRepository(redisClient)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := service.NewAuthService(tokens, auth.NewGoogleOAuth(cfg.OAuth), sessionRepo, customerRepo, adminRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, categoryRepo, publisher, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, customerRepo, publisher, logger)
	favoriteService := service.NewFavoriteService(favoriteRepo, logger)
	moderationService := service.NewModerationService(customerRepo, publisher, logger)

	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.OptionalAuthMiddleware(authService, logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.PrometheusMetrics())
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	router.Get("/health", healthHandler(db, redisClient))
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window(),
			KeyPrefix:         "ratelimit",
		}, logger))

		guards := transport.NewGuards(authService, logger)
		for _, h := range []routeRegistrar{
			transport.NewAuthHandler(authService, cfg.Server.FrontendURL, logger),
			transport.NewCategoryHandler(categoryService, logger),
			transport.NewProductHandler(productService, logger),
			transport.NewReviewHandler(reviewService, logger),
			transport.NewFavoriteHandler(favoriteService, logger),
			transport.NewAdminHandler(moderationService, logger),
		} {
			h.RegisterRoutes(r, guards)
		}
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		publisher: publisher,
	}
}

func healthHandler(db database.Service, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		dbHealth := db.Health()
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		redisStatus := "up"
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisStatus = "down"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   overall,
			"database": dbHealth,
			"redis":    redisStatus,
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.publisher.Close(); err != nil {
		s.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
