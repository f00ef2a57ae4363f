package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"leverage/internal/analyzer"
	"leverage/internal/api"
	"leverage/internal/config"
	"leverage/internal/exchange"
	"leverage/internal/repository"
	"leverage/internal/scheduler"
	"leverage/internal/service"
	"leverage/internal/websocket"
	"leverage/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer logger.Sync()

	logger.Info("starting leverage service",
		utils.Exchange(cfg.Exchange.Name),
		utils.String("db", cfg.Database.DSNWithoutPassword()),
	)

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", utils.Err(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	// Репозиторий и схема
	metricsRepo := repository.NewMetricsRepository(db)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := metricsRepo.InitSchema(initCtx); err != nil {
		initCancel()
		logger.Fatal("failed to initialize schema", utils.Err(err))
	}
	initCancel()

	// Источник рыночных данных
	ex, err := exchange.NewExchange(cfg.Exchange.Name, cfg.Exchange.RateLimit)
	if err != nil {
		logger.Fatal("failed to create exchange client", utils.Err(err))
	}
	defer ex.Close()

	// Анализатор и сервисы
	pairAnalyzer := analyzer.NewAnalyzer(
		ex,
		cfg.Exchange.Timeframe,
		cfg.Updater.LookbackDays,
		cfg.Exchange.FetchTimeout,
		logger,
	)

	// WebSocket hub для рассылки итогов обновлений
	hub := websocket.NewHub(logger)
	go hub.Run()

	metricsService := service.NewMetricsService(metricsRepo, logger)
	updaterService := service.NewUpdaterService(
		pairAnalyzer,
		metricsRepo,
		hub,
		cfg.Updater.BenchmarkPair,
		logger,
	)

	// Планировщик ежедневного обновления
	sched := scheduler.NewScheduler(updaterService, cfg.Updater.Pairs, logger)
	if err := sched.Start(cfg.Updater.UpdateHour, cfg.Updater.UpdateMinute); err != nil {
		logger.Fatal("failed to start scheduler", utils.Err(err))
	}

	// Первичное заполнение базы при старте (опционально)
	if cfg.Updater.UpdateOnStart {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			if _, err := updaterService.UpdateMetrics(ctx, cfg.Updater.Pairs); err != nil {
				logger.Warn("initial metrics update failed", utils.Err(err))
			}
		}()
	}

	// Настройка HTTP роутера
	deps := &api.Dependencies{
		Config:         cfg,
		Logger:         logger,
		MetricsService: metricsService,
		UpdaterService: updaterService,
		Exchange:       ex,
		Scheduler:      sched,
		Hub:            hub,
	}
	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // /update-metrics ждет полный цикл
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		logger.Info("server listening", utils.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", utils.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Планировщик останавливаем первым, чтобы не начался новый цикл
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", utils.Err(err))
	}

	exchange.CloseSharedClient()

	logger.Info("server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
