package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"adorn-jewellery/internal/config"
	"adorn-jewellery/internal/database"
	custommiddleware "adorn-jewellery/internal/middleware"
	"adorn-jewellery/internal/notification"
	"adorn-jewellery/internal/repository"
	"adorn-jewellery/internal/service"
	"adorn-jewellery/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers onto one router
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client, sender notification.Sender) (*Server, error) {
	renderer, err := notification.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load notification templates: %w", err)
	}
	notifier := notification.NewDispatcher(renderer, sender, cfg.Mail, logger)

	router := chi.NewRouter()
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))
	for _, mw := range custommiddleware.DefaultMiddlewareStack(logger) {
		router.Use(mw)
	}

	router.Get("/health", healthHandler(db, redisClient))

	// Repositories
	sqlDB := db.DB()
	userRepo := repository.NewUserRepository(sqlDB)
	refreshTokenRepo := repository.NewRefreshTokenRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	productRepo := repository.NewProductRepository(sqlDB)
	cartRepo := repository.NewCartRepository(sqlDB)
	wishlistRepo := repository.NewWishlistRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	contactRepo := repository.NewContactRepository(sqlDB)

	// Services
	userService := service.NewUserService(userRepo, refreshTokenRepo, service.TokenSettings{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	})
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, notifier, logger)
	contactService := service.NewContactService(contactRepo, notifier, logger)

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	rateLimit := func(prefix string) func(http.Handler) http.Handler {
		return custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            time.Duration(cfg.RateLimit.Window) * time.Second,
			KeyPrefix:         "adorn:ratelimit:" + prefix,
		}, logger)
	}

	// Routes
	transport.NewCatalogHandler(catalogService, logger).RegisterRoutes(router)
	transport.NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, rateLimit("auth"))
	transport.NewContactHandler(contactService, logger).RegisterRoutes(router, rateLimit("contact"))
	transport.NewCartHandler(cartService, wishlistService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewAdminHandler(orderService, contactService, logger).RegisterRoutes(router, authMiddleware, requireAdmin)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "resource not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}, nil
}

func healthHandler(db database.Service, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := db.Health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		redisStatus := "up"
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Rate limiting fails open, so Redis being down does not fail the check
			redisStatus = "down"
		}

		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"success":  status == http.StatusOK,
			"database": stats,
			"redis":    redisStatus,
		})
	}
}

// Close releases the database pool and the Redis client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
