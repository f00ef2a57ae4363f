package analyzer

import (
	"context"
	"fmt"
	"time"

	"leverage/internal/exchange"
	"leverage/internal/models"
	"leverage/pkg/utils"
)

// Значения эталона по умолчанию на случай недоступности истории эталонной
// пары. Подобраны консервативно: типичная годовая волатильность ETH и
// типичный дневной ход около 5%.
const (
	DefaultBenchmarkVolatility  = 0.8
	DefaultBenchmarkAvgMovement = 0.05
)

// BenchmarkReference - эталонные метрики, относительно которых нормализуется
// риск всех остальных пар.
//
// Degraded = true означает, что историю эталона получить не удалось и
// волатильность с дневным ходом заменены дефолтами. Корреляция в деградированном
// режиме не считается (Returns == nil).
type BenchmarkReference struct {
	Pair        string
	Volatility  float64
	AvgMovement float64
	Returns     []Return
	Degraded    bool
}

// Analyzer рассчитывает метрики плеча торговых пар по истории свечей.
//
// Назначение:
// Связывает источник рыночных данных (Exchange) со статистическим ядром:
// получает свечи, считает волатильность, корреляцию и дневной ход,
// выводит итоговые leverage_adjustment и recommended_leverage.
type Analyzer struct {
	exchange     exchange.Exchange
	timeframe    string
	lookbackDays int
	fetchTimeout time.Duration
	logger       *utils.Logger
}

// NewAnalyzer создает новый анализатор.
// lookbackDays определяет глубину истории (минимум 2 свечи для доходностей).
func NewAnalyzer(ex exchange.Exchange, timeframe string, lookbackDays int, fetchTimeout time.Duration, logger *utils.Logger) *Analyzer {
	if timeframe == "" {
		timeframe = "1d"
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Analyzer{
		exchange:     ex,
		timeframe:    timeframe,
		lookbackDays: lookbackDays,
		fetchTimeout: fetchTimeout,
		logger:       logger.WithComponent("analyzer"),
	}
}

// fetchCandles получает свечи пары с таймаутом на один запрос
func (a *Analyzer) fetchCandles(ctx context.Context, pair string) ([]exchange.Candle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	return a.exchange.FetchOHLCV(fetchCtx, pair, a.timeframe, a.lookbackDays)
}

// BenchmarkReference рассчитывает эталонные метрики.
//
// При недоступности истории эталона НЕ возвращает ошибку: цикл обновления
// продолжается с дефолтными значениями (деградированный режим), о чем
// пишется предупреждение в лог.
func (a *Analyzer) BenchmarkReference(ctx context.Context, pair string) *BenchmarkReference {
	candles, err := a.fetchCandles(ctx, pair)
	if err != nil {
		a.logger.Warn("benchmark history unavailable, using defaults",
			utils.Symbol(pair),
			utils.Err(err),
		)
		return &BenchmarkReference{
			Pair:        pair,
			Volatility:  DefaultBenchmarkVolatility,
			AvgMovement: DefaultBenchmarkAvgMovement,
			Degraded:    true,
		}
	}

	returns := DailyReturns(candles)

	return &BenchmarkReference{
		Pair:        pair,
		Volatility:  Volatility(returns),
		AvgMovement: AvgDailyMovement(candles),
		Returns:     returns,
	}
}

// AnalyzePair рассчитывает метрики одной пары относительно эталона.
//
// Возвращает ошибку при недоступности истории пары (включая таймаут запроса) -
// вызывающий код решает, пропустить пару или прервать цикл.
func (a *Analyzer) AnalyzePair(ctx context.Context, pair string, ref *BenchmarkReference) (*models.PairMetrics, error) {
	candles, err := a.fetchCandles(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", pair, err)
	}

	returns := DailyReturns(candles)
	volatility := Volatility(returns)
	avgMovement := AvgDailyMovement(candles)

	correlation := 0.0
	if ref.Returns != nil {
		correlation = Correlation(returns, ref.Returns)
	}

	volatilityRatio := 1.0
	if ref.Volatility > 0 {
		volatilityRatio = volatility / ref.Volatility
	}

	adjustment := LeverageAdjustment(volatility, ref.Volatility, avgMovement, ref.AvgMovement)
	recommended := RecommendLeverage(adjustment, volatilityRatio)

	a.logger.Debug("pair analyzed",
		utils.Symbol(pair),
		utils.Float64("volatility", volatility),
		utils.Float64("volatility_ratio", volatilityRatio),
		utils.Float64("adjustment", adjustment),
		utils.Int("recommended_leverage", recommended),
	)

	return &models.PairMetrics{
		Pair:                pair,
		LeverageAdjustment:  adjustment,
		VolatilityRatio:     volatilityRatio,
		CorrelationWithETH:  correlation,
		AvgDailyMovement:    avgMovement,
		RecommendedLeverage: recommended,
		LastUpdated:         time.Now().UTC(),
	}, nil
}
