package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/philiptitus/bridger/internal/config"
	"github.com/philiptitus/bridger/internal/handler"
	"github.com/philiptitus/bridger/internal/middleware"
	"github.com/philiptitus/bridger/internal/oracle"
	"github.com/philiptitus/bridger/internal/repository/postgres"
	"github.com/philiptitus/bridger/internal/repository/storage"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/philiptitus/bridger/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	incomeRepo := postgres.NewIncomeRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	savingsRepo := postgres.NewSavingsRepository(pool)
	reconcileStore := postgres.NewReconcileStore(pool)

	// Avatar storage is optional; the profile endpoints degrade gracefully
	// without it
	var imageService *service.ImageService
	if cfg.S3.AccessKeyID != "" {
		imageRepo, err := storage.NewS3ImageRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize avatar storage")
		}
		imageService = service.NewImageService(imageRepo)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Avatar storage enabled")
	} else {
		log.Warn().Msg("Avatar storage not configured; uploads disabled")
	}

	// Text oracle for category reconciliation
	geminiClient := oracle.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	profileService := service.NewProfileService(userRepo, imageService)
	incomeService := service.NewIncomeService(incomeRepo, budgetRepo, categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, incomeRepo, categoryRepo)
	reconcileService := service.NewReconcileService(budgetRepo, categoryRepo, savingsRepo, reconcileStore, geminiClient)
	categoryService := service.NewCategoryService(categoryRepo, budgetRepo, savingsRepo)
	savingsService := service.NewSavingsService(savingsRepo, categoryRepo, reconcileStore)

	// WebSocket hub doubles as the event publisher
	hub := websocket.NewHub()
	incomeService.SetEventPublisher(hub)
	budgetService.SetEventPublisher(hub)
	reconcileService.SetEventPublisher(hub)
	categoryService.SetEventPublisher(hub)
	savingsService.SetEventPublisher(hub)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, authService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	// Per-user rate limiter for oracle-backed routes
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validation resolves the token subject to a user ID
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, &userLookupAdapter{authService: authService})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	incomeHandler := handler.NewIncomeHandler(incomeService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	categoryHandler := handler.NewCategoryHandler(reconcileService, categoryService)
	savingsHandler := handler.NewSavingsHandler(savingsService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, profileHandler, incomeHandler, budgetHandler, categoryHandler, savingsHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// userLookupAdapter adapts AuthService to websocket.UserLookup
type userLookupAdapter struct {
	authService *service.AuthService
}

// GetUserIDByAuthID implements websocket.UserLookup
func (a *userLookupAdapter) GetUserIDByAuthID(authID string) (uuid.UUID, error) {
	user, err := a.authService.GetUserByAuthID(authID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
