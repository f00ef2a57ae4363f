// Package scheduler запускает ежедневный пересчет метрик по расписанию.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"leverage/internal/service"
	"leverage/pkg/utils"
)

// Scheduler - обертка над cron для ежедневного обновления метрик.
//
// Расписание фиксируется при старте (час и минута из конфигурации).
// Пропуск запуска из-за уже идущего обновления не считается ошибкой:
// следующий запуск по расписанию возьмет свежие данные.
type Scheduler struct {
	cron    *cron.Cron
	updater service.UpdaterServiceInterface
	pairs   []string
	logger  *utils.Logger

	running atomic.Bool
}

// NewScheduler создает новый планировщик
func NewScheduler(updater service.UpdaterServiceInterface, pairs []string, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		updater: updater,
		pairs:   pairs,
		logger:  logger.WithComponent("scheduler"),
	}
}

// Start регистрирует ежедневную задачу и запускает планировщик.
// hour - час запуска (0-23), minute - минута запуска (0-59).
func (s *Scheduler) Start(hour, minute int) error {
	spec := fmt.Sprintf("%d %d * * *", minute, hour)

	_, err := s.cron.AddFunc(spec, s.runUpdate)
	if err != nil {
		return fmt.Errorf("schedule update job: %w", err)
	}

	s.cron.Start()
	s.running.Store(true)

	s.logger.Info("scheduler started", utils.String("schedule", spec))
	return nil
}

// runUpdate выполняет один запуск по расписанию
func (s *Scheduler) runUpdate() {
	s.logger.Info("scheduled update triggered", utils.PairCount(len(s.pairs)))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := s.updater.UpdateMetrics(ctx, s.pairs)
	if err != nil {
		if errors.Is(err, service.ErrUpdateInProgress) {
			s.logger.Warn("scheduled update skipped, another update in progress")
			return
		}
		s.logger.Error("scheduled update failed", utils.Err(err))
		return
	}

	s.logger.Info("scheduled update completed",
		utils.Int("updated", report.UpdatedCount()),
		utils.Int("skipped", report.SkippedCount()),
	)
}

// Running возвращает true, если планировщик запущен
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Stop останавливает планировщик и дожидается завершения текущей задачи
func (s *Scheduler) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.logger.Info("scheduler stopped")
}
