package handlers

import (
	"net/http"

	"leverage/internal/models"
	"leverage/internal/service"
)

// MetricsHandler обрабатывает запросы метрик плеча.
//
// Endpoints:
// - POST /leverage-adjustment - метрики для списка пар
// - GET /pairs - пары с рассчитанными метриками
type MetricsHandler struct {
	metricsService service.MetricsServiceInterface
}

// NewMetricsHandler создает новый MetricsHandler
func NewMetricsHandler(metricsService service.MetricsServiceInterface) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
	}
}

// leverageAdjustmentRequest - тело запроса метрик
type leverageAdjustmentRequest struct {
	Pairs []string `json:"pairs"`
}

// GetLeverageAdjustment возвращает метрики плеча для запрошенных пар.
//
// POST /leverage-adjustment
//
// Request:
//
//	{"pairs": ["BTC/USDT:USDT", "SOL/USDT:USDT"]}
//
// Response 200 OK - отображение пара -> запись:
//
//	{
//	  "BTC/USDT:USDT": {
//	    "pair": "BTC/USDT:USDT",
//	    "leverage_adjustment": 1.2345,
//	    "volatility_ratio": 0.8123,
//	    "correlation_with_eth": 0.9211,
//	    "avg_daily_movement": 0.0342,
//	    "recommended_leverage": 10,
//	    "last_updated": "2026-08-30T02:00:05Z"
//	  },
//	  "UNKNOWN/USDT:USDT": {
//	    "pair": "UNKNOWN/USDT:USDT",
//	    "leverage_adjustment": 1.0,
//	    "recommended_leverage": 5,
//	    "error": "pair not found in database"
//	  }
//	}
//
// Пара без записи в базе получает безопасный fallback с текстом ошибки,
// HTTP статус остается 200. Ошибкой считается только кривая форма запроса
// (отсутствующий или пустой список пар) и недоступность базы.
func (h *MetricsHandler) GetLeverageAdjustment(w http.ResponseWriter, r *http.Request) {
	var req leverageAdjustmentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	if len(req.Pairs) == 0 {
		respondError(w, http.StatusBadRequest, "pairs list is required", "")
		return
	}

	results, err := h.metricsService.Lookup(r.Context(), req.Pairs)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to look up metrics", err.Error())
		return
	}

	response := make(map[string]*models.PairResult, len(results))
	for _, result := range results {
		response[result.Pair] = result
	}

	respondJSON(w, http.StatusOK, response)
}

// GetPairs возвращает все пары с рассчитанными метриками.
//
// GET /pairs
//
// Response 200 OK:
//
//	{"pairs": ["ADA/USDT:USDT", "BTC/USDT:USDT"], "count": 2}
func (h *MetricsHandler) GetPairs(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.metricsService.AvailablePairs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list pairs", err.Error())
		return
	}

	if pairs == nil {
		pairs = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pairs": pairs,
		"count": len(pairs),
	})
}
