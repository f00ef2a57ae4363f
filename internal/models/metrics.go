package models

import "time"

// PairMetrics представляет рассчитанные метрики плеча для торговой пары.
//
// Все метрики рассчитываются относительно эталонной пары (ETH):
// - LeverageAdjustment: множитель плеча в диапазоне [0.1, 2.0]
// - VolatilityRatio: волатильность пары / волатильность ETH
// - CorrelationWithETH: корреляция Пирсона дневных доходностей, [-1, 1]
// - AvgDailyMovement: средний дневной ход (high-low)/close
// - RecommendedLeverage: дискретное рекомендованное плечо из лестницы {1,2,3,5,10,20,25}
//
// Запись перезаписывается целиком при каждом успешном пересчете (upsert по Pair).
type PairMetrics struct {
	Pair                string    `json:"pair" db:"pair"`                                 // BTC/USDT:USDT
	LeverageAdjustment  float64   `json:"leverage_adjustment" db:"leverage_adjustment"`   // [0.1, 2.0]
	VolatilityRatio     float64   `json:"volatility_ratio" db:"volatility_ratio"`         // >= 0
	CorrelationWithETH  float64   `json:"correlation_with_eth" db:"correlation_with_eth"` // [-1, 1], 0 при недостатке данных
	AvgDailyMovement    float64   `json:"avg_daily_movement" db:"avg_daily_movement"`     // >= 0
	RecommendedLeverage int       `json:"recommended_leverage" db:"recommended_leverage"` // из лестницы плеч
	LastUpdated         time.Time `json:"last_updated" db:"last_updated"`
}

// Консервативные значения по умолчанию для пар, отсутствующих в базе.
// Возвращаются клиенту вместо ошибки (документированное поведение API).
const (
	DefaultLeverageAdjustment  = 1.0
	DefaultRecommendedLeverage = 5
)
