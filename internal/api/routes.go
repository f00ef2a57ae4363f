// Package api собирает HTTP маршруты и middleware сервиса.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leverage/internal/api/handlers"
	"leverage/internal/api/middleware"
	"leverage/internal/config"
	"leverage/internal/exchange"
	"leverage/internal/service"
	"leverage/internal/websocket"
	"leverage/pkg/utils"
)

// Dependencies содержит все зависимости для API handlers.
// Глобальных синглтонов нет - все передается явно.
type Dependencies struct {
	Config         *config.Config
	Logger         *utils.Logger
	MetricsService service.MetricsServiceInterface
	UpdaterService service.UpdaterServiceInterface
	Exchange       exchange.Exchange
	Scheduler      handlers.SchedulerStatus
	Hub            *websocket.Hub
}

// SetupRoutes настраивает все HTTP маршруты приложения.
//
// Структура маршрутов:
//
//	GET  /health              - состояние сервиса
//	POST /leverage-adjustment - метрики плеча для списка пар
//	GET  /pairs               - пары с рассчитанными метриками
//	POST /update-metrics      - внеплановый пересчет метрик
//	GET  /metrics             - Prometheus метрики
//	GET  /ws/stream           - WebSocket с итогами циклов обновления
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. MaxBodyBytes (для всех маршрутов)
// 5. APIKeyAuth (для всех маршрутов, включается конфигурацией)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logging(deps.Logger))
	router.Use(middleware.CORS(deps.Config.Security.AllowedOrigins))
	router.Use(middleware.MaxBodyBytes(deps.Config.Server.MaxBodyBytes))
	router.Use(middleware.APIKeyAuth(middleware.AuthConfig{
		Required: deps.Config.Security.APIKeyRequired,
		Key:      deps.Config.Security.APIKey,
		KeyHash:  deps.Config.Security.APIKeyHash,
	}))

	healthHandler := handlers.NewHealthHandler(
		deps.MetricsService,
		deps.Exchange,
		deps.Scheduler,
		deps.Config.Updater.BenchmarkPair,
	)
	metricsHandler := handlers.NewMetricsHandler(deps.MetricsService)
	updateHandler := handlers.NewUpdateHandler(deps.UpdaterService, deps.Config.Updater.Pairs)

	router.HandleFunc("/health", healthHandler.GetHealth).Methods("GET")
	router.HandleFunc("/leverage-adjustment", metricsHandler.GetLeverageAdjustment).Methods("POST")
	router.HandleFunc("/pairs", metricsHandler.GetPairs).Methods("GET")
	router.HandleFunc("/update-metrics", updateHandler.UpdateMetrics).Methods("POST")

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket с итогами циклов обновления
	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	// 404 в том же JSON формате, что и остальные ошибки
	router.NotFoundHandler = notFoundHandler()

	return router
}

// notFoundHandler возвращает JSON ответ для неизвестных маршрутов
func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})
}
