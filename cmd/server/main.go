package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nimoapp/nimo-backend/config"
	"github.com/nimoapp/nimo-backend/internal/app/controller"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/nimoapp/nimo-backend/internal/middleware"
	"github.com/nimoapp/nimo-backend/internal/router"
	"github.com/nimoapp/nimo-backend/internal/scheduler"
	"github.com/nimoapp/nimo-backend/internal/storage"
	"github.com/nimoapp/nimo-backend/internal/websocket"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/nimoapp/nimo-backend/pkg/oauth/google"
	"github.com/nimoapp/nimo-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: !cfg.Server.IsProduction(),
	})

	logger.Info("Starting NIMO Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist and stale-session marks; both degrade
	// to no-ops without it.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// WebSocket hub for session-refresh nudges and order updates
	hub := websocket.NewHub()
	go hub.Run()

	// Google sign-in is optional; without credentials those endpoints answer
	// with an error instead of keeping the server from starting.
	var googleClient service.GoogleExchanger
	if cfg.Google.ClientID != "" {
		client, err := google.NewClient(google.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		if err != nil {
			logger.Fatal("Failed to configure Google OAuth client", err)
		}
		googleClient = client
	} else {
		logger.Warn("Google OAuth not configured, Google sign-in disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	umkmRepo := repository.NewUmkmRepository(db.GetDB())
	sessionRepo := repository.NewSessionRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	cartRepo := repository.NewCartRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenExpiry, db.GetDB())
	providerService := service.NewProviderService(
		userRepo, sessionRepo, authService, googleClient,
		cfg.Session.Secret, cfg.Session.MaxAge,
	)
	verificationService := service.NewVerificationService(umkmRepo, userRepo, hub, db.GetDB())
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, orderRepo, productRepo)
	partnerService := service.NewPartnerService(orderRepo, productRepo, reviewRepo)
	reportService := service.NewReportService(db.GetDB())

	s3Storage := storage.NewS3Storage(
		cfg.S3.Region, cfg.S3.Bucket,
		cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	frontendURL := ""
	if len(cfg.CORS.AllowedOrigins) > 0 {
		frontendURL = cfg.CORS.AllowedOrigins[0]
	}

	// Controllers
	authController := controller.NewAuthController(authService, cfg.JWT.TokenExpiry, cfg.Server.IsProduction())
	sessionController := controller.NewSessionController(
		providerService, cfg.Session.CookieName, cfg.Session.MaxAge,
		cfg.Server.IsProduction(), frontendURL,
	)
	productController := controller.NewProductController(productService, reviewService, verificationService)
	categoryController := controller.NewCategoryController(categoryService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)
	partnerController := controller.NewPartnerController(
		verificationService, partnerService, productService, orderService, hub,
	)
	adminController := controller.NewAdminController(
		authService, verificationService, orderService, reportService,
	)
	uploadController := controller.NewUploadController(s3Storage)
	wsController := controller.NewWebSocketController(hub)

	authMiddleware := middleware.NewAuthMiddleware(
		cfg.JWT.Secret, cfg.Session.CookieName,
		providerService, userRepo, umkmRepo,
	)

	// Background sweeps: expired listings and stale provider sessions
	expiryScheduler := scheduler.NewExpiryScheduler(productRepo, sessionRepo)
	if err := expiryScheduler.Start(); err != nil {
		logger.Fatal("Failed to start expiry scheduler", err)
	}
	defer expiryScheduler.Stop()

	r := router.NewRouter(
		authController,
		sessionController,
		productController,
		categoryController,
		cartController,
		orderController,
		reviewController,
		partnerController,
		adminController,
		uploadController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
