package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"genrpg-server/internal/clients/ai"
	"genrpg-server/internal/clients/images"
	"genrpg-server/internal/config"
	"genrpg-server/internal/database"
	delivery "genrpg-server/internal/delivery/http"
	"genrpg-server/internal/delivery/http/middleware"
	ws "genrpg-server/internal/delivery/websocket"
	"genrpg-server/internal/engine"
	"genrpg-server/internal/generator"
	"genrpg-server/internal/repository"
	"genrpg-server/internal/session"
	"genrpg-server/pkg/tasks"
)

func main() {
	// Загрузка конфигурации (включая .env)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Инициализация логгера
	initLogger(cfg)

	ctx := context.Background()

	// Инициализация хранилища сохранений
	repo, cleanup, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer cleanup()

	// Инициализация клиента текстовой генерации
	aiClient, err := ai.New(ai.Config{
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		ModelName: cfg.AI.ModelName,
		Timeout:   cfg.AI.Timeout,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AI client")
	}

	// Инициализация клиента генерации изображений (опционально)
	var imageClient session.ImageGenerator
	if cfg.Images.Enabled && cfg.Images.APIKey != "" {
		client, err := images.New(images.Config{
			APIKey:    cfg.Images.APIKey,
			BaseURL:   cfg.Images.BaseURL,
			ModelName: cfg.Images.ModelName,
			Timeout:   cfg.Images.Timeout,
			OutputDir: cfg.Images.OutputDir,
		}, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize image client")
		}
		imageClient = client
	} else {
		log.Info().Msg("генерация изображений выключена")
	}

	// Менеджер фоновых задач
	taskManager := tasks.New(tasks.Config{MaxTasks: 10}, log.Logger)

	// WebSocket-менеджер
	wsManager := ws.NewManager(log.Logger)
	wsManager.Start()
	taskManager.SetNotifier(wsManager)

	// Сборка игровой сессии
	eventGenerator := generator.New(aiClient, log.Logger)
	consequenceEngine := engine.New(log.Logger)

	sessionService := session.New(
		session.Config{Slot: cfg.Session.Slot, MaxAttempts: cfg.Session.MaxAttempts},
		repo,
		eventGenerator,
		consequenceEngine,
		imageClient,
		taskManager,
		wsManager,
		log.Logger,
	)

	if err := sessionService.Start(ctx); err != nil {
		// Неудачная генерация стартового события не валит сервер: сессия
		// в статусе failed, игрок может запросить повтор.
		log.Error().Err(err).Msg("session start failed, retry is available")
	}

	// Настройка маршрутов
	router := mux.NewRouter()
	router.Handle("/ws", wsManager.Handler()).Methods("GET")
	router.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.Images.OutputDir))))

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(middleware.Logging(log.Logger))

	handlers := delivery.New(sessionService, taskManager)
	handlers.RegisterRoutes(apiRouter)

	// Настройка CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // генерация события может быть долгой
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	gracefulShutdown(server, taskManager)
}

// initLogger настраивает глобальный логгер
func initLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.AppEnv != "production" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	}

	logLevel := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logLevel = lvl
	}
	zerolog.SetGlobalLevel(logLevel)
}

// initStorage выбирает реализацию хранилища сохранений по конфигурации.
func initStorage(ctx context.Context, cfg config.StorageConfig) (repository.GameStateRepository, func(), error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := database.NewPool(ctx, cfg.PostgresDSN, log.Logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(pool, log.Logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo := repository.NewPostgresGameStateRepository(pool)
		return repo, func() { database.Close(pool, log.Logger) }, nil

	default:
		repo, err := repository.NewFileGameStateRepository(cfg.FileDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}

// gracefulShutdown обеспечивает плавное завершение работы сервера
func gracefulShutdown(server *http.Server, taskManager *tasks.Manager) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	if err := taskManager.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("task manager shutdown failed")
	}

	log.Info().Msg("server stopped gracefully")
}
