package service

import (
	"context"

	"leverage/internal/analyzer"
	"leverage/internal/models"
	"leverage/internal/repository"
)

// MetricsRepositoryInterface определяет интерфейс репозитория метрик
type MetricsRepositoryInterface interface {
	InitSchema(ctx context.Context) error
	Upsert(ctx context.Context, metrics *models.PairMetrics) error
	GetMany(ctx context.Context, pairs []string) (map[string]*models.PairMetrics, error)
	GetByPair(ctx context.Context, pair string) (*models.PairMetrics, error)
	GetAllPairs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// AnalyzerInterface определяет интерфейс анализатора пар
type AnalyzerInterface interface {
	BenchmarkReference(ctx context.Context, pair string) *analyzer.BenchmarkReference
	AnalyzePair(ctx context.Context, pair string, ref *analyzer.BenchmarkReference) (*models.PairMetrics, error)
}

// Проверяем, что реальные реализации соответствуют интерфейсам
var _ MetricsRepositoryInterface = (*repository.MetricsRepository)(nil)
var _ AnalyzerInterface = (*analyzer.Analyzer)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// MetricsServiceInterface определяет интерфейс сервиса чтения метрик
type MetricsServiceInterface interface {
	Lookup(ctx context.Context, pairs []string) ([]*models.PairResult, error)
	AvailablePairs(ctx context.Context) ([]string, error)
	DatabaseCount(ctx context.Context) (int, error)
}

// UpdaterServiceInterface определяет интерфейс сервиса обновления метрик
type UpdaterServiceInterface interface {
	UpdateMetrics(ctx context.Context, pairs []string) (*models.RefreshReport, error)
	InProgress() bool
}

// Проверяем, что реальные сервисы реализуют интерфейсы
var _ MetricsServiceInterface = (*MetricsService)(nil)
var _ UpdaterServiceInterface = (*UpdaterService)(nil)
