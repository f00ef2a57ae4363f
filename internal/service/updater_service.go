package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"leverage/internal/exchange"
	"leverage/internal/models"
	"leverage/pkg/utils"
)

// ErrUpdateInProgress - цикл обновления уже выполняется.
// Конкурентные запросы на обновление отклоняются, а не ставятся в очередь:
// данные суточной гранулярности, второй прогон подряд бессмысленен.
var ErrUpdateInProgress = errors.New("metrics update already in progress")

// ReportBroadcaster рассылает итоги цикла подписчикам (WebSocket hub)
type ReportBroadcaster interface {
	BroadcastMetricsUpdate(report *models.RefreshReport)
}

// UpdaterService - цикл пересчета метрик плеча.
//
// Назначение:
// Оркестрирует полный цикл: эталон -> анализ каждой пары -> запись в базу.
// В один момент времени выполняется не больше одного цикла (single-flight).
//
// Цикл не транзакционен: успешно записанные пары остаются в базе даже при
// прерывании цикла ошибкой хранилища.
type UpdaterService struct {
	analyzer      AnalyzerInterface
	repo          MetricsRepositoryInterface
	broadcaster   ReportBroadcaster
	benchmarkPair string
	logger        *utils.Logger

	running atomic.Bool
}

// NewUpdaterService создает новый сервис обновления.
// broadcaster может быть nil - тогда итоги не рассылаются.
func NewUpdaterService(
	analyzer AnalyzerInterface,
	repo MetricsRepositoryInterface,
	broadcaster ReportBroadcaster,
	benchmarkPair string,
	logger *utils.Logger,
) *UpdaterService {
	return &UpdaterService{
		analyzer:      analyzer,
		repo:          repo,
		broadcaster:   broadcaster,
		benchmarkPair: benchmarkPair,
		logger:        logger.WithComponent("updater"),
	}
}

// InProgress возвращает true, если цикл обновления выполняется
func (s *UpdaterService) InProgress() bool {
	return s.running.Load()
}

// UpdateMetrics выполняет один цикл пересчета метрик для заданных пар.
//
// Возвращает ErrUpdateInProgress, если другой цикл уже идет.
// Ошибка анализа отдельной пары (нет истории, таймаут биржи) приводит к
// пропуску пары; ошибка записи в базу прерывает весь цикл - частичный
// прогресс при этом сохраняется.
func (s *UpdaterService) UpdateMetrics(ctx context.Context, pairs []string) (*models.RefreshReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		RecordCycle("rejected", 0)
		return nil, ErrUpdateInProgress
	}
	defer s.running.Store(false)

	started := time.Now()
	report := &models.RefreshReport{
		Updated:   make([]string, 0, len(pairs)),
		Skipped:   make(map[string]string),
		StartedAt: started.UTC(),
	}

	s.logger.Info("metrics update started",
		utils.PairCount(len(pairs)),
		utils.Symbol(s.benchmarkPair),
	)

	ref := s.analyzer.BenchmarkReference(ctx, s.benchmarkPair)
	if ref.Degraded {
		report.BenchmarkDegraded = true
		BenchmarkFallbacksTotal.Inc()
	}

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(started)
			RecordCycle("error", report.Duration.Seconds())
			return report, fmt.Errorf("update cancelled: %w", err)
		}

		pairStarted := time.Now()
		metrics, err := s.analyzer.AnalyzePair(ctx, pair, ref)
		PairAnalysisDuration.WithLabelValues(pair).Observe(time.Since(pairStarted).Seconds())

		if err != nil {
			reason := "fetch_error"
			if errors.Is(err, exchange.ErrNoMarketData) {
				reason = "no_data"
			}
			s.logger.Warn("pair skipped", utils.Symbol(pair), utils.Err(err))
			report.Skipped[pair] = err.Error()
			RecordPairSkipped(reason)
			continue
		}

		if err := s.repo.Upsert(ctx, metrics); err != nil {
			report.Duration = time.Since(started)
			RecordCycle("error", report.Duration.Seconds())
			s.logger.Error("store failed, update aborted", utils.Symbol(pair), utils.Err(err))
			return report, fmt.Errorf("store metrics for %s: %w", pair, err)
		}

		report.Updated = append(report.Updated, pair)
		PairsUpdatedTotal.Inc()
	}

	report.Duration = time.Since(started)
	RecordCycle("success", report.Duration.Seconds())

	if count, err := s.repo.Count(ctx); err == nil {
		StoredPairs.Set(float64(count))
	}

	s.logger.Info("metrics update finished",
		utils.Int("updated", report.UpdatedCount()),
		utils.Int("skipped", report.SkippedCount()),
		utils.Bool("benchmark_degraded", report.BenchmarkDegraded),
		utils.Duration("duration", report.Duration),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMetricsUpdate(report)
	}

	return report, nil
}
