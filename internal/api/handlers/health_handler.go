package handlers

import (
	"context"
	"net/http"
	"time"

	"leverage/internal/exchange"
	"leverage/internal/service"
)

// SchedulerStatus - статус планировщика для health check
type SchedulerStatus interface {
	Running() bool
}

// HealthHandler обрабатывает health check запросы.
//
// Endpoints:
// - GET /health - состояние сервиса
//
// Ответ включает доступность базы (количество пар с метриками),
// доступность биржи (пробный запрос тикера) и статус планировщика.
type HealthHandler struct {
	metricsService service.MetricsServiceInterface
	exchange       exchange.Exchange
	scheduler      SchedulerStatus
	probePair      string
}

// NewHealthHandler создает новый HealthHandler.
// probePair - пара для пробного запроса тикера (обычно эталонная).
func NewHealthHandler(
	metricsService service.MetricsServiceInterface,
	ex exchange.Exchange,
	scheduler SchedulerStatus,
	probePair string,
) *HealthHandler {
	return &HealthHandler{
		metricsService: metricsService,
		exchange:       ex,
		scheduler:      scheduler,
		probePair:      probePair,
	}
}

// healthResponse - формат ответа health check
type healthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	DatabasePairs    int    `json:"database_pairs"`
	ExchangeStatus   string `json:"exchange_status"`
	SchedulerRunning bool   `json:"scheduler_running"`
}

// GetHealth возвращает состояние сервиса.
//
// GET /health
//
// Response 200 OK:
//
//	{
//	  "status": "healthy",
//	  "timestamp": "2026-08-30T12:00:00Z",
//	  "database_pairs": 8,
//	  "exchange_status": "connected",
//	  "scheduler_running": true
//	}
//
// Недоступность базы - внутренний сбой: 503 {"status": "unhealthy", "error": ...}.
// Недоступность биржи лишь отражается в exchange_status ("disconnected") -
// сервис продолжает отвечать из последнего сохраненного состояния.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	count, err := h.metricsService.DatabaseCount(r.Context())
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": timestamp,
		})
		return
	}

	respondJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		Timestamp:        timestamp,
		DatabasePairs:    count,
		ExchangeStatus:   h.probeExchange(r.Context()),
		SchedulerRunning: h.scheduler != nil && h.scheduler.Running(),
	})
}

// probeExchange проверяет доступность биржи пробным запросом тикера
func (h *HealthHandler) probeExchange(ctx context.Context) string {
	if h.exchange == nil {
		return "disconnected"
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := h.exchange.GetTicker(probeCtx, h.probePair); err != nil {
		return "disconnected"
	}
	return "connected"
}
