package service

import (
	"context"

	"leverage/internal/models"
	"leverage/pkg/utils"
)

// MetricsService - чтение метрик плеча из базы.
//
// Назначение:
// Обслуживает запросы API на метрики пар. Чтение не зависит от цикла
// обновления: запросы отвечаются последним записанным состоянием даже
// во время работы обновления.
type MetricsService struct {
	repo   MetricsRepositoryInterface
	logger *utils.Logger
}

// NewMetricsService создает новый сервис метрик
func NewMetricsService(repo MetricsRepositoryInterface, logger *utils.Logger) *MetricsService {
	return &MetricsService{
		repo:   repo,
		logger: logger.WithComponent("metrics_service"),
	}
}

// Lookup возвращает метрики запрошенных пар в порядке запроса.
//
// Для пар без записи в базе возвращается fallback: нейтральный множитель 1.0,
// консервативное плечо 5 и текст ошибки. Ответ с fallback - не сбой,
// HTTP статус остается успешным.
func (s *MetricsService) Lookup(ctx context.Context, pairs []string) ([]*models.PairResult, error) {
	stored, err := s.repo.GetMany(ctx, pairs)
	if err != nil {
		return nil, err
	}

	results := make([]*models.PairResult, 0, len(pairs))
	for _, pair := range pairs {
		m, ok := stored[pair]
		if !ok {
			s.logger.Debug("pair not found, returning fallback", utils.Symbol(pair))
			results = append(results, &models.PairResult{
				Pair:                pair,
				LeverageAdjustment:  models.DefaultLeverageAdjustment,
				RecommendedLeverage: models.DefaultRecommendedLeverage,
				Error:               "pair not found in database",
			})
			continue
		}

		volatilityRatio := utils.Round4(m.VolatilityRatio)
		correlation := utils.Round4(m.CorrelationWithETH)
		avgMovement := utils.Round4(m.AvgDailyMovement)
		lastUpdated := m.LastUpdated

		results = append(results, &models.PairResult{
			Pair:                m.Pair,
			LeverageAdjustment:  utils.Round4(m.LeverageAdjustment),
			VolatilityRatio:     &volatilityRatio,
			CorrelationWithETH:  &correlation,
			AvgDailyMovement:    &avgMovement,
			RecommendedLeverage: m.RecommendedLeverage,
			LastUpdated:         &lastUpdated,
		})
	}

	return results, nil
}

// AvailablePairs возвращает все пары с рассчитанными метриками
func (s *MetricsService) AvailablePairs(ctx context.Context) ([]string, error) {
	return s.repo.GetAllPairs(ctx)
}

// DatabaseCount возвращает количество пар в базе
func (s *MetricsService) DatabaseCount(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// GetByPair возвращает метрики одной пары.
// Отсутствие записи - ошибка repository.ErrMetricsNotFound.
func (s *MetricsService) GetByPair(ctx context.Context, pair string) (*models.PairMetrics, error) {
	return s.repo.GetByPair(ctx, pair)
}
