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

	"github.com/AndrijanaDejkovic/SnookerProject/cache"
	"github.com/AndrijanaDejkovic/SnookerProject/config"
	"github.com/AndrijanaDejkovic/SnookerProject/db"
	"github.com/AndrijanaDejkovic/SnookerProject/handlers"
	"github.com/AndrijanaDejkovic/SnookerProject/realtime"
	"github.com/AndrijanaDejkovic/SnookerProject/repositories"
	api "github.com/AndrijanaDejkovic/SnookerProject/routes"
	"github.com/AndrijanaDejkovic/SnookerProject/services"
	"github.com/go-chi/chi/v5"
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

	// Подключение к Neo4j
	driver, err := db.ConnectNeo4j(cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to neo4j", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := driver.Close(context.Background()); err != nil {
			logger.Error("failed to close neo4j driver", slog.Any("error", err))
		} else {
			logger.Info("neo4j driver closed")
		}
	}()
	logger.Info("neo4j connection established")

	// Подключение к Redis
	redisClient, err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}()
	logger.Info("redis connection established")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	publisher := realtime.NewPublisher(wsHub)
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев и кешей
	playerRepo := repositories.NewNeo4jPlayerRepository(driver, cfg.Neo4jDatabase)
	matchRepo := repositories.NewNeo4jMatchRepository(driver, cfg.Neo4jDatabase)
	tournamentRepo := repositories.NewNeo4jTournamentRepository(driver, cfg.Neo4jDatabase)
	leaderboardRepo := repositories.NewNeo4jLeaderboardRepository(driver, cfg.Neo4jDatabase)
	liveStore := cache.NewRedisLiveStore(redisClient)
	leaderboardCache := cache.NewRedisLeaderboardCache(redisClient)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, leaderboardCache, logger)
	simulationService := services.NewSimulationService(
		services.SimulationConfig{
			StartDelay:    cfg.SimulationStartDelay,
			TickInterval:  cfg.SimulationTickEvery,
			FrameDelay:    cfg.SimulationFrameDelay,
			MaxFrameTicks: cfg.SimulationMaxFrameTicks,
		},
		playerRepo,
		matchRepo,
		tournamentRepo,
		liveStore,
		publisher,
		leaderboardService,
		logger,
	)
	logger.Info("services initialized")

	// Сверка durable-реестра активных матчей с локальными симуляциями:
	// после рестарта владельцев-горутин нет, записи останавливаются.
	if stopped, err := simulationService.ReconcileActive(context.Background()); err != nil {
		logger.Error("failed to reconcile active matches", slog.Any("error", err))
	} else if stopped > 0 {
		logger.Warn("orphaned live matches force-stopped", slog.Int("count", stopped))
	}

	// Инициализация обработчиков HTTP
	liveHandler := handlers.NewLiveMatchHandler(simulationService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, simulationService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.CORSAllowedOrigin, liveHandler, leaderboardHandler, webSocketHandler)
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Останавливаем все симуляции до выключения HTTP-сервера.
		simulationService.Shutdown()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
