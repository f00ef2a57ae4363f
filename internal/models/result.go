package models

import "time"

// PairResult - результат запроса метрик одной пары.
//
// Для пары без записи в базе возвращается безопасный fallback
// (нейтральный множитель и консервативное плечо) с заполненным Error.
// Числовые поля округлены до 4 знаков.
type PairResult struct {
	Pair                string     `json:"pair"`
	LeverageAdjustment  float64    `json:"leverage_adjustment"`
	VolatilityRatio     *float64   `json:"volatility_ratio,omitempty"`
	CorrelationWithETH  *float64   `json:"correlation_with_eth,omitempty"`
	AvgDailyMovement    *float64   `json:"avg_daily_movement,omitempty"`
	RecommendedLeverage int        `json:"recommended_leverage"`
	LastUpdated         *time.Time `json:"last_updated,omitempty"`
	Error               string     `json:"error,omitempty"`
}
