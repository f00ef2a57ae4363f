package service

import (
	"context"
	"sync"

	"leverage/internal/analyzer"
	"leverage/internal/models"
	"leverage/internal/repository"
)

// mockMetricsRepository - потокобезопасная реализация репозитория в памяти
type mockMetricsRepository struct {
	mu      sync.Mutex
	stored  map[string]*models.PairMetrics
	errs    map[string]error // ключи: init, upsert, getMany, getByPair, getAllPairs, count
	upserts []string
}

func newMockMetricsRepository() *mockMetricsRepository {
	return &mockMetricsRepository{
		stored: make(map[string]*models.PairMetrics),
		errs:   make(map[string]error),
	}
}

func (m *mockMetricsRepository) setError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op] = err
}

func (m *mockMetricsRepository) InitSchema(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errs["init"]
}

func (m *mockMetricsRepository) Upsert(ctx context.Context, metrics *models.PairMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["upsert"]; err != nil {
		return err
	}
	m.stored[metrics.Pair] = metrics
	m.upserts = append(m.upserts, metrics.Pair)
	return nil
}

func (m *mockMetricsRepository) GetMany(ctx context.Context, pairs []string) (map[string]*models.PairMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["getMany"]; err != nil {
		return nil, err
	}
	result := make(map[string]*models.PairMetrics)
	for _, pair := range pairs {
		if metrics, ok := m.stored[pair]; ok {
			result[pair] = metrics
		}
	}
	return result, nil
}

func (m *mockMetricsRepository) GetByPair(ctx context.Context, pair string) (*models.PairMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["getByPair"]; err != nil {
		return nil, err
	}
	metrics, ok := m.stored[pair]
	if !ok {
		return nil, repository.ErrMetricsNotFound
	}
	return metrics, nil
}

func (m *mockMetricsRepository) GetAllPairs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["getAllPairs"]; err != nil {
		return nil, err
	}
	pairs := make([]string, 0, len(m.stored))
	for pair := range m.stored {
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (m *mockMetricsRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errs["count"]; err != nil {
		return 0, err
	}
	return len(m.stored), nil
}

// mockAnalyzer - управляемый анализатор для тестов цикла обновления.
// blockCh позволяет удерживать анализ открытым для проверки single-flight.
type mockAnalyzer struct {
	mu       sync.Mutex
	ref      *analyzer.BenchmarkReference
	metrics  map[string]*models.PairMetrics
	pairErrs map[string]error
	blockCh  chan struct{}
}

func newMockAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{
		ref: &analyzer.BenchmarkReference{
			Pair:        "ETH/USDT:USDT",
			Volatility:  0.8,
			AvgMovement: 0.05,
		},
		metrics:  make(map[string]*models.PairMetrics),
		pairErrs: make(map[string]error),
	}
}

func (m *mockAnalyzer) BenchmarkReference(ctx context.Context, pair string) *analyzer.BenchmarkReference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ref
}

func (m *mockAnalyzer) AnalyzePair(ctx context.Context, pair string, ref *analyzer.BenchmarkReference) (*models.PairMetrics, error) {
	if m.blockCh != nil {
		select {
		case <-m.blockCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.pairErrs[pair]; err != nil {
		return nil, err
	}
	if metrics, ok := m.metrics[pair]; ok {
		return metrics, nil
	}
	return &models.PairMetrics{
		Pair:                pair,
		LeverageAdjustment:  1.0,
		VolatilityRatio:     1.0,
		RecommendedLeverage: 10,
	}, nil
}

// mockBroadcaster записывает разосланные отчеты
type mockBroadcaster struct {
	mu      sync.Mutex
	reports []*models.RefreshReport
}

func (m *mockBroadcaster) BroadcastMetricsUpdate(report *models.RefreshReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
}

func (m *mockBroadcaster) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// Проверяем соответствие моков интерфейсам
var _ MetricsRepositoryInterface = (*mockMetricsRepository)(nil)
var _ AnalyzerInterface = (*mockAnalyzer)(nil)
var _ ReportBroadcaster = (*mockBroadcaster)(nil)
