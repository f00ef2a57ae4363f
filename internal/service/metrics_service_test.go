package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"leverage/internal/models"
	"leverage/internal/repository"
	"leverage/pkg/utils"
)

func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LogConfig{Level: "error"})
}

func storedMetrics(pair string) *models.PairMetrics {
	return &models.PairMetrics{
		Pair:                pair,
		LeverageAdjustment:  0.66666666,
		VolatilityRatio:     1.23456789,
		CorrelationWithETH:  0.98765432,
		AvgDailyMovement:    0.03211111,
		RecommendedLeverage: 5,
		LastUpdated:         time.Date(2026, 8, 30, 2, 0, 5, 0, time.UTC),
	}
}

// ============================================================
// Тесты Lookup
// ============================================================

func TestMetricsServiceLookup(t *testing.T) {
	repo := newMockMetricsRepository()
	repo.stored["BTC/USDT:USDT"] = storedMetrics("BTC/USDT:USDT")

	svc := NewMetricsService(repo, testLogger())

	results, err := svc.Lookup(context.Background(), []string{"BTC/USDT:USDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.Pair != "BTC/USDT:USDT" {
		t.Errorf("unexpected pair %q", got.Pair)
	}
	if got.LeverageAdjustment != 0.6667 {
		t.Errorf("expected adjustment rounded to 0.6667, got %v", got.LeverageAdjustment)
	}
	if got.VolatilityRatio == nil || *got.VolatilityRatio != 1.2346 {
		t.Errorf("expected volatility ratio rounded to 1.2346, got %v", got.VolatilityRatio)
	}
	if got.CorrelationWithETH == nil || *got.CorrelationWithETH != 0.9877 {
		t.Errorf("expected correlation rounded to 0.9877, got %v", got.CorrelationWithETH)
	}
	if got.AvgDailyMovement == nil || *got.AvgDailyMovement != 0.0321 {
		t.Errorf("expected movement rounded to 0.0321, got %v", got.AvgDailyMovement)
	}
	if got.RecommendedLeverage != 5 {
		t.Errorf("expected leverage 5, got %d", got.RecommendedLeverage)
	}
	if got.Error != "" {
		t.Errorf("expected no error text, got %q", got.Error)
	}
	if got.LastUpdated == nil {
		t.Error("expected LastUpdated to be set")
	}
}

func TestMetricsServiceLookupFallback(t *testing.T) {
	repo := newMockMetricsRepository()
	svc := NewMetricsService(repo, testLogger())

	results, err := svc.Lookup(context.Background(), []string{"UNKNOWN/USDT:USDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.LeverageAdjustment != models.DefaultLeverageAdjustment {
		t.Errorf("expected neutral adjustment, got %v", got.LeverageAdjustment)
	}
	if got.RecommendedLeverage != models.DefaultRecommendedLeverage {
		t.Errorf("expected conservative leverage, got %d", got.RecommendedLeverage)
	}
	if got.Error != "pair not found in database" {
		t.Errorf("unexpected error text %q", got.Error)
	}
	// У fallback не должно быть рыночных метрик
	if got.VolatilityRatio != nil || got.CorrelationWithETH != nil || got.LastUpdated != nil {
		t.Error("fallback result must not carry market metrics")
	}
}

func TestMetricsServiceLookupPreservesOrder(t *testing.T) {
	repo := newMockMetricsRepository()
	repo.stored["BTC/USDT:USDT"] = storedMetrics("BTC/USDT:USDT")
	repo.stored["SOL/USDT:USDT"] = storedMetrics("SOL/USDT:USDT")

	svc := NewMetricsService(repo, testLogger())

	requested := []string{"SOL/USDT:USDT", "MISSING/USDT:USDT", "BTC/USDT:USDT"}
	results, err := svc.Lookup(context.Background(), requested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, pair := range requested {
		if results[i].Pair != pair {
			t.Errorf("result %d: expected %q, got %q", i, pair, results[i].Pair)
		}
	}
}

func TestMetricsServiceLookupRepositoryError(t *testing.T) {
	repo := newMockMetricsRepository()
	repo.setError("getMany", errors.New("connection lost"))

	svc := NewMetricsService(repo, testLogger())

	if _, err := svc.Lookup(context.Background(), []string{"BTC/USDT:USDT"}); err == nil {
		t.Error("expected error from repository to propagate")
	}
}

// ============================================================
// Тесты AvailablePairs / DatabaseCount / GetByPair
// ============================================================

func TestMetricsServiceAvailablePairs(t *testing.T) {
	repo := newMockMetricsRepository()
	repo.stored["BTC/USDT:USDT"] = storedMetrics("BTC/USDT:USDT")

	svc := NewMetricsService(repo, testLogger())

	pairs, err := svc.AvailablePairs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 1 || pairs[0] != "BTC/USDT:USDT" {
		t.Errorf("unexpected pairs: %v", pairs)
	}
}

func TestMetricsServiceDatabaseCount(t *testing.T) {
	repo := newMockMetricsRepository()
	repo.stored["BTC/USDT:USDT"] = storedMetrics("BTC/USDT:USDT")
	repo.stored["SOL/USDT:USDT"] = storedMetrics("SOL/USDT:USDT")

	svc := NewMetricsService(repo, testLogger())

	count, err := svc.DatabaseCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}
}

func TestMetricsServiceGetByPairNotFound(t *testing.T) {
	repo := newMockMetricsRepository()
	svc := NewMetricsService(repo, testLogger())

	_, err := svc.GetByPair(context.Background(), "UNKNOWN/USDT:USDT")
	if !errors.Is(err, repository.ErrMetricsNotFound) {
		t.Errorf("expected ErrMetricsNotFound, got %v", err)
	}
}
