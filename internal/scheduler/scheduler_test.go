package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"leverage/internal/models"
	"leverage/internal/service"
	"leverage/pkg/utils"
)

// mockUpdater считает вызовы и возвращает настроенный результат
type mockUpdater struct {
	mu     sync.Mutex
	report *models.RefreshReport
	err    error
	calls  [][]string
}

func (m *mockUpdater) UpdateMetrics(ctx context.Context, pairs []string) (*models.RefreshReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pairs)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockUpdater) InProgress() bool { return false }

func (m *mockUpdater) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var _ service.UpdaterServiceInterface = (*mockUpdater)(nil)

func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LogConfig{Level: "error"})
}

var testPairs = []string{"BTC/USDT:USDT", "ETH/USDT:USDT"}

// ============================================================
// Тесты Scheduler
// ============================================================

func TestSchedulerStartStop(t *testing.T) {
	updater := &mockUpdater{report: &models.RefreshReport{}}
	s := NewScheduler(updater, testPairs, testLogger())

	if s.Running() {
		t.Error("scheduler must not run before Start")
	}

	if err := s.Start(2, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Running() {
		t.Error("scheduler must report running after Start")
	}

	s.Stop()
	if s.Running() {
		t.Error("scheduler must report stopped after Stop")
	}

	// Повторный Stop безопасен
	s.Stop()
}

func TestSchedulerStartInvalidSpec(t *testing.T) {
	updater := &mockUpdater{report: &models.RefreshReport{}}
	s := NewScheduler(updater, testPairs, testLogger())

	if err := s.Start(2, 99); err == nil {
		t.Error("expected error for invalid minute")
		s.Stop()
	}
}

func TestSchedulerRunUpdate(t *testing.T) {
	updater := &mockUpdater{
		report: &models.RefreshReport{Updated: testPairs},
	}
	s := NewScheduler(updater, testPairs, testLogger())

	s.runUpdate()

	if updater.callCount() != 1 {
		t.Fatalf("expected 1 update call, got %d", updater.callCount())
	}
	if len(updater.calls[0]) != len(testPairs) {
		t.Errorf("expected configured pairs, got %v", updater.calls[0])
	}
}

func TestSchedulerRunUpdateSkipsWhenBusy(t *testing.T) {
	updater := &mockUpdater{err: service.ErrUpdateInProgress}
	s := NewScheduler(updater, testPairs, testLogger())

	// Занятый updater не должен ронять планировщик
	s.runUpdate()

	if updater.callCount() != 1 {
		t.Errorf("expected 1 attempted call, got %d", updater.callCount())
	}
}

func TestSchedulerRunUpdateToleratesFailure(t *testing.T) {
	updater := &mockUpdater{err: errors.New("exchange unavailable")}
	s := NewScheduler(updater, testPairs, testLogger())

	// Ошибка цикла логируется, паники нет
	s.runUpdate()

	if updater.callCount() != 1 {
		t.Errorf("expected 1 attempted call, got %d", updater.callCount())
	}
}
