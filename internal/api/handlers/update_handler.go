package handlers

import (
	"errors"
	"net/http"

	"leverage/internal/service"
)

// UpdateHandler обрабатывает запросы на внеплановый пересчет метрик.
//
// Endpoints:
// - POST /update-metrics - запустить цикл обновления
type UpdateHandler struct {
	updater      service.UpdaterServiceInterface
	defaultPairs []string
}

// NewUpdateHandler создает новый UpdateHandler
func NewUpdateHandler(updater service.UpdaterServiceInterface, defaultPairs []string) *UpdateHandler {
	return &UpdateHandler{
		updater:      updater,
		defaultPairs: defaultPairs,
	}
}

// updateMetricsRequest - тело запроса обновления
type updateMetricsRequest struct {
	Pairs []string `json:"pairs"`
}

// UpdateMetrics запускает цикл пересчета метрик и ждет его завершения.
//
// POST /update-metrics
//
// Request (опционально):
//
//	{"pairs": ["BTC/USDT:USDT"]}
//
// Пустой список пар заменяется списком по умолчанию.
//
// Response 200 OK:
//
//	{
//	  "status": "completed",
//	  "pairs_updated": 7,
//	  "skipped": {"MATIC/USDT:USDT": "no market data available"},
//	  "benchmark_degraded": false,
//	  "duration_ms": 8412
//	}
//
// Response 409 Conflict - другой цикл обновления уже выполняется:
//
//	{"error": "metrics update already in progress"}
func (h *UpdateHandler) UpdateMetrics(w http.ResponseWriter, r *http.Request) {
	var req updateMetricsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	pairs := req.Pairs
	if len(pairs) == 0 {
		pairs = h.defaultPairs
	}

	report, err := h.updater.UpdateMetrics(r.Context(), pairs)
	if err != nil {
		if errors.Is(err, service.ErrUpdateInProgress) {
			respondError(w, http.StatusConflict, service.ErrUpdateInProgress.Error(), "")
			return
		}
		respondError(w, http.StatusInternalServerError, "metrics update failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "completed",
		"pairs_updated":      report.UpdatedCount(),
		"skipped":            report.Skipped,
		"benchmark_degraded": report.BenchmarkDegraded,
		"duration_ms":        report.Duration.Milliseconds(),
	})
}
