package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/auth"
	"github.com/dafibh/ledger/ledger-backend/internal/config"
	"github.com/dafibh/ledger/ledger-backend/internal/domain"
	"github.com/dafibh/ledger/ledger-backend/internal/dto"
	"github.com/dafibh/ledger/ledger-backend/internal/handler"
	"github.com/dafibh/ledger/ledger-backend/internal/i18n"
	"github.com/dafibh/ledger/ledger-backend/internal/messaging"
	"github.com/dafibh/ledger/ledger-backend/internal/middleware"
	"github.com/dafibh/ledger/ledger-backend/internal/repository"
	"github.com/dafibh/ledger/ledger-backend/internal/repository/storage"
	"github.com/dafibh/ledger/ledger-backend/internal/service"
	"github.com/dafibh/ledger/ledger-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Ledger API
// @version 1.0
// @description Personal finance ledger: banks, transaction types and categories, budgets and transactions.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load configuration (.env may set ENV)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Logger = newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data stores")
	}
	defer b.Close()

	translator, err := i18n.New(cfg.DefaultLanguage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load translations")
	}

	hub := websocket.NewHub()
	var publisher websocket.EventPublisher = hub
	if cfg.Events.Enabled() {
		amqpPublisher, err := messaging.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to event broker")
		}
		defer amqpPublisher.Close()
		publisher = websocket.MultiPublisher{hub, amqpPublisher}
		log.Info().Str("exchange", cfg.Events.Exchange).Msg("Mirroring change events to AMQP")
	}

	// Initialize repositories
	repoOpts := []repository.Option{repository.WithCreatePolicy(domain.CreatePolicy(cfg.CreateExistingID))}
	bankRepo := newRepository(b, domain.NewBank, repoOpts...)
	typeRepo := newRepository(b, domain.NewTransactionType, repoOpts...)
	categoryRepo := newRepository(b, domain.NewTransactionCategory, repoOpts...)
	budgetTypeRepo := newRepository(b, domain.NewBudgetType, repoOpts...)
	budgetRepo := newRepository(b, domain.NewBudget, repoOpts...)
	transactionRepo := newRepository(b, domain.NewTransaction, repoOpts...)

	// Initialize services
	crudConfig := service.CRUDConfig{
		CacheTTL:        cfg.CacheTTL,
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	}
	bankService := service.NewCRUDService[*domain.Bank, dto.Bank](bankRepo, dto.FromBank, b.cache, translator, publisher, log.Logger, crudConfig)
	typeService := service.NewCRUDService[*domain.TransactionType, dto.TransactionType](typeRepo, dto.FromTransactionType, b.cache, translator, publisher, log.Logger, crudConfig)
	categoryService := service.NewCRUDService[*domain.TransactionCategory, dto.TransactionCategory](categoryRepo, dto.FromTransactionCategory, b.cache, translator, publisher, log.Logger, crudConfig)
	budgetTypeService := service.NewCRUDService[*domain.BudgetType, dto.BudgetType](budgetTypeRepo, dto.FromBudgetType, b.cache, translator, publisher, log.Logger, crudConfig)
	budgetService := service.NewCRUDService[*domain.Budget, dto.Budget](budgetRepo, dto.FromBudget, b.cache, translator, publisher, log.Logger, crudConfig)
	transactionService := service.NewCRUDService[*domain.Transaction, dto.Transaction](transactionRepo, dto.FromTransaction, b.cache, translator, publisher, log.Logger, crudConfig)

	// Bank logos are optional
	var logoService *service.LogoService
	if cfg.S3.Enabled() {
		logoStore, err := storage.NewS3LogoRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize logo storage")
		}
		logoService = service.NewLogoService(logoStore, bankRepo, log.Logger)
		bankService.OnDelete(logoService.RemoveForBank)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Bank logo storage enabled")
	} else {
		log.Info().Msg("S3_BUCKET not set, bank logos disabled")
	}

	// Background stats worker
	statsWorker := service.NewStatsWorker(
		[]service.Counter{bankService, typeService, categoryService, budgetTypeService, budgetService, transactionService},
		publisher,
		log.Logger,
		service.StatsWorkerConfig{Interval: cfg.WorkerInterval},
	)
	statsWorker.Start(ctx)
	defer statsWorker.Stop()

	// Authentication guards the writes only when a secret is configured
	var guard echo.MiddlewareFunc
	var tokenValidator websocket.TokenValidator
	if cfg.JWT.Enabled() {
		settings := auth.Settings{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Audience: cfg.JWT.Audience}
		authMiddleware, err := middleware.NewAuthMiddleware(settings, translator)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
		wsValidator, err := websocket.NewJWTValidator(settings)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create websocket validator")
		}
		guard = authMiddleware.Authenticate()
		tokenValidator = wsValidator
	} else {
		log.Warn().Msg("JWT_SECRET not set, write endpoints are unauthenticated")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	entities := []handler.EntityRoutes{
		handler.NewCRUDHandler[dto.Bank](bankService, translator),
		handler.NewCRUDHandler[dto.TransactionType](typeService, translator),
		handler.NewCRUDHandler[dto.TransactionCategory](categoryService, translator),
		handler.NewCRUDHandler[dto.BudgetType](budgetTypeService, translator),
		handler.NewCRUDHandler[dto.Budget](budgetService, translator),
		handler.NewCRUDHandler[dto.Transaction](transactionService, translator),
	}
	entityNames := make([]string, len(entities))
	for i, h := range entities {
		entityNames[i] = h.Entity()
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(translator, cfg.IsProduction())

	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderAPILanguage},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())

	handler.RegisterRoutes(e, handler.Routes{
		BasePath: cfg.APIBasePath,
		Entities: entities,
		Logos:    handler.NewLogoHandler(logoService, translator),
		Health:   handler.NewHealthHandler(b.pingers),
		Events:   handler.NewWebSocketHandler(hub, tokenValidator, cfg.CORSOrigins, entityNames),
		Guard:    guard,
		Middleware: []echo.MiddlewareFunc{
			middleware.Language(translator),
			middleware.RateLimitMiddleware(rateLimiter, translator),
		},
	})

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("data_backend", cfg.DataBackend).
			Str("cache_backend", cfg.CacheBackend).
			Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
