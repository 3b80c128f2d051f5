package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside-dev/bracket-engine/config"
	"github.com/courtside-dev/bracket-engine/db"
	"github.com/courtside-dev/bracket-engine/handlers"
	"github.com/courtside-dev/bracket-engine/middleware"
	"github.com/courtside-dev/bracket-engine/repositories"
	api "github.com/courtside-dev/bracket-engine/routes"
	"github.com/courtside-dev/bracket-engine/services"
	"github.com/courtside-dev/bracket-engine/storage"
	"github.com/courtside-dev/bracket-engine/ws"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// Миграции схемы
	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	// Инициализация загрузчика архивов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	archiver := storage.NewBracketArchiver(cloudflareUploader)
	logger.Info("bracket archiver initialized")

	// Инициализация WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	// Инициализация репозиториев
	stopRepo := repositories.NewPostgresStopRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)

	// Инициализация сервисов
	stopService := services.NewStopService(stopRepo)
	teamService := services.NewTeamService(dbConn, teamRepo)
	matchService := services.NewMatchService(matchRepo, gameRepo)
	bracketService := services.NewBracketService(dbConn, teamRepo, roundRepo, matchRepo, gameRepo, archiver, wsHub, logger)
	scoreService := services.NewScoreService(dbConn, roundRepo, matchRepo, gameRepo, wsHub, logger)
	auditService := services.NewAuditService(dbConn, roundRepo, matchRepo, gameRepo, wsHub, logger)
	logger.Info("services initialized")

	// Инициализация обработчиков HTTP
	auth := middleware.NewAuth(cfg.JWTSecretKey)
	bracketHandler := handlers.NewBracketHandler(bracketService, matchService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	auditHandler := handlers.NewAuditHandler(auditService)
	stopHandler := handlers.NewStopHandler(stopService)
	teamHandler := handlers.NewTeamHandler(teamService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(router, auth, bracketHandler, scoreHandler, auditHandler, stopHandler, teamHandler, webSocketHandler)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		}
		logger.Info("server shut down")
	}
}
