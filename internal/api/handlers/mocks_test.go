package handlers

import (
	"context"
	"sync"
	"time"

	"leverage/internal/exchange"
	"leverage/internal/models"
	"leverage/internal/service"
)

// mockMetricsService - управляемый сервис метрик для тестов handlers
type mockMetricsService struct {
	mu          sync.Mutex
	results     []*models.PairResult
	pairs       []string
	count       int
	lookupErr   error
	pairsErr    error
	countErr    error
	lookupCalls [][]string
}

func (m *mockMetricsService) Lookup(ctx context.Context, pairs []string) ([]*models.PairResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookupCalls = append(m.lookupCalls, pairs)
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.results, nil
}

func (m *mockMetricsService) AvailablePairs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pairsErr != nil {
		return nil, m.pairsErr
	}
	return m.pairs, nil
}

func (m *mockMetricsService) DatabaseCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

// mockUpdaterService - управляемый сервис обновления для тестов handlers
type mockUpdaterService struct {
	mu         sync.Mutex
	report     *models.RefreshReport
	err        error
	inProgress bool
	calls      [][]string
}

func (m *mockUpdaterService) UpdateMetrics(ctx context.Context, pairs []string) (*models.RefreshReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, pairs)
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockUpdaterService) InProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inProgress
}

// mockExchange - биржа с настраиваемой ошибкой тикера
type mockExchange struct {
	tickerErr error
}

func (m *mockExchange) GetName() string { return "mock" }

func (m *mockExchange) FetchOHLCV(ctx context.Context, symbol, timeframe string, days int) ([]exchange.Candle, error) {
	return nil, exchange.ErrNoMarketData
}

func (m *mockExchange) GetTicker(ctx context.Context, symbol string) (*exchange.Ticker, error) {
	if m.tickerErr != nil {
		return nil, m.tickerErr
	}
	return &exchange.Ticker{Symbol: symbol, LastPrice: 100, Timestamp: time.Now()}, nil
}

func (m *mockExchange) Close() error { return nil }

// mockScheduler - планировщик с фиксированным статусом
type mockScheduler struct {
	running bool
}

func (m *mockScheduler) Running() bool { return m.running }

// Проверяем соответствие моков интерфейсам
var _ service.MetricsServiceInterface = (*mockMetricsService)(nil)
var _ service.UpdaterServiceInterface = (*mockUpdaterService)(nil)
var _ exchange.Exchange = (*mockExchange)(nil)
var _ SchedulerStatus = (*mockScheduler)(nil)
