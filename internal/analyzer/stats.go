package analyzer

import (
	"math"
	"time"

	"leverage/internal/exchange"
)

// stats.go - статистические функции для расчета метрик плеча
//
// Назначение:
// Чистые функции над последовательностями дневных свечей (OHLCV).
// Никакого I/O и разделяемого состояния - результат детерминирован входом.
//
// Функции:
// - DailyReturns: дневные доходности close-to-close
// - Volatility: годовая волатильность доходностей
// - AvgDailyMovement: средний дневной ход (high-low)/close
// - Correlation: корреляция Пирсона двух рядов доходностей
// - LeverageAdjustment: множитель плеча относительно эталона
// - RecommendLeverage: дискретное рекомендованное плечо

// LeverageLadder - фиксированная лестница допустимых значений плеча.
// Рекомендация привязывается к ближайшему значению лестницы.
var LeverageLadder = []int{1, 2, 3, 5, 10, 20, 25, 50}

// Границы итоговых значений
const (
	MinLeverageAdjustment = 0.1
	MaxLeverageAdjustment = 2.0
	MinLeverage           = 1
	MaxLeverage           = 25 // жесткий потолок ради безопасности

	// Количество дней годовой шкалы для аннуализации волатильности
	annualizationDays = 365

	// Минимальное количество совпадающих по времени точек для расчета корреляции.
	// Ниже порога корреляция считается статистически незначимой и равна 0.
	minCorrelationSamples = 10
)

// Return - дневная доходность с меткой времени свечи.
// Метка времени нужна для выравнивания двух рядов при расчете корреляции.
type Return struct {
	Timestamp time.Time
	Value     float64
}

// DailyReturns рассчитывает дробные дневные доходности close-to-close.
//
// Для N свечей возвращает N-1 доходностей: первая свеча не имеет
// предыдущей цены закрытия и отбрасывается.
// Свечи с нулевым предыдущим close пропускаются (защита от деления на ноль).
func DailyReturns(candles []exchange.Candle) []Return {
	if len(candles) < 2 {
		return nil
	}

	returns := make([]Return, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, Return{
			Timestamp: candles[i].Timestamp,
			Value:     (candles[i].Close - prev) / prev,
		})
	}

	return returns
}

// Volatility рассчитывает годовую волатильность ряда доходностей.
//
// Выборочное стандартное отклонение (делитель N-1) масштабируется
// на sqrt(365) в предположении дневной дискретизации.
// Для ряда короче двух точек возвращает 0.
func Volatility(returns []Return) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r.Value
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, r := range returns {
		d := r.Value - mean
		sqDiff += d * d
	}
	std := math.Sqrt(sqDiff / float64(n-1))

	return std * math.Sqrt(annualizationDays)
}

// AvgDailyMovement рассчитывает средний дневной ход цены.
//
// Для каждой свечи ход = (high - low) / close; возвращается среднее по всем
// свечам. Свечи с нулевым close пропускаются.
func AvgDailyMovement(candles []exchange.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}

	var sum float64
	count := 0
	for _, c := range candles {
		if c.Close == 0 {
			continue
		}
		sum += (c.High - c.Low) / c.Close
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Correlation рассчитывает корреляцию Пирсона двух рядов доходностей.
//
// Ряды выравниваются по меткам времени: учитываются только точки,
// присутствующие в обоих рядах. Если совпадающих точек меньше
// minCorrelationSamples, возвращается 0.0 - это осознанная политика
// низкой достоверности, а не ошибка.
func Correlation(a, b []Return) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	bByTime := make(map[int64]float64, len(b))
	for _, r := range b {
		bByTime[r.Timestamp.Unix()] = r.Value
	}

	var xs, ys []float64
	for _, r := range a {
		if v, ok := bByTime[r.Timestamp.Unix()]; ok {
			xs = append(xs, r.Value)
			ys = append(ys, v)
		}
	}

	n := len(xs)
	if n < minCorrelationSamples {
		return 0
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return 0
	}

	return cov / math.Sqrt(varX*varY)
}

// LeverageAdjustment рассчитывает множитель плеча относительно эталона.
//
// Логика: чем выше относительный риск пары, тем ниже множитель.
//
//	volatilityRatio = pairVol / benchVol   (1.0 если benchVol <= 0)
//	movementRatio   = pairMove / benchMove (1.0 если benchMove <= 0)
//	riskRatio       = (volatilityRatio + movementRatio) / 2
//	adjustment      = 1 / riskRatio        (1.0 если riskRatio <= 0)
//
// Результат ограничивается диапазоном [0.1, 2.0]: нижняя граница защищает
// от вырождения плеча в ноль, верхняя - от чрезмерного плеча.
func LeverageAdjustment(pairVol, benchVol, pairMove, benchMove float64) float64 {
	volatilityRatio := 1.0
	if benchVol > 0 {
		volatilityRatio = pairVol / benchVol
	}

	movementRatio := 1.0
	if benchMove > 0 {
		movementRatio = pairMove / benchMove
	}

	riskRatio := (volatilityRatio + movementRatio) / 2

	adjustment := 1.0
	if riskRatio > 0 {
		adjustment = 1.0 / riskRatio
	}

	return clamp(adjustment, MinLeverageAdjustment, MaxLeverageAdjustment)
}

// RecommendLeverage рассчитывает дискретное рекомендованное плечо.
//
// Базовое плечо 10x умножается на adjustment, затем применяется штраф
// за волатильность:
//   - volatilityRatio > 1.5: множитель 0.6
//   - volatilityRatio > 1.2: множитель 0.8
//
// Результат привязывается к ближайшему значению LeverageLadder
// (при равном расстоянии выигрывает первое по порядку значение)
// и ограничивается диапазоном [1, 25].
func RecommendLeverage(adjustment, volatilityRatio float64) int {
	const baseLeverage = 10.0

	adjusted := baseLeverage * adjustment

	switch {
	case volatilityRatio > 1.5:
		adjusted *= 0.6
	case volatilityRatio > 1.2:
		adjusted *= 0.8
	}

	recommended := snapToLadder(adjusted)

	if recommended < MinLeverage {
		return MinLeverage
	}
	if recommended > MaxLeverage {
		return MaxLeverage
	}
	return recommended
}

// snapToLadder возвращает ближайшее значение лестницы плеч.
// При равном расстоянии выигрывает первое по порядку (строгое сравнение).
func snapToLadder(value float64) int {
	best := LeverageLadder[0]
	bestDist := math.Abs(float64(best) - value)

	for _, level := range LeverageLadder[1:] {
		dist := math.Abs(float64(level) - value)
		if dist < bestDist {
			best = level
			bestDist = dist
		}
	}

	return best
}

// clamp ограничивает значение диапазоном [min, max]
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
