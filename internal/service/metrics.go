package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики цикла обновления
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений о проблемах

// UpdateCyclesTotal - количество циклов обновления по результату
var UpdateCyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "leverage",
		Subsystem: "updater",
		Name:      "cycles_total",
		Help:      "Total number of metric update cycles",
	},
	[]string{"result"}, // success, error, rejected
)

// PairsUpdatedTotal - количество обновленных пар
var PairsUpdatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "leverage",
		Subsystem: "updater",
		Name:      "pairs_updated_total",
		Help:      "Total number of pairs written to the database",
	},
)

// PairsSkippedTotal - количество пропущенных пар по причинам
var PairsSkippedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "leverage",
		Subsystem: "updater",
		Name:      "pairs_skipped_total",
		Help:      "Total number of pairs skipped during update cycles",
	},
	[]string{"reason"}, // no_data, fetch_error
)

// BenchmarkFallbacksTotal - циклы с деградированным эталоном
var BenchmarkFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "leverage",
		Subsystem: "updater",
		Name:      "benchmark_fallbacks_total",
		Help:      "Number of cycles that ran with default benchmark metrics",
	},
)

// CycleDuration - длительность цикла обновления
var CycleDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "leverage",
		Subsystem: "updater",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of a full metric update cycle in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	},
)

// PairAnalysisDuration - длительность анализа одной пары (fetch + расчет)
var PairAnalysisDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "leverage",
		Subsystem: "updater",
		Name:      "pair_analysis_duration_seconds",
		Help:      "Duration of fetching and analyzing a single pair in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	},
	[]string{"symbol"},
)

// StoredPairs - текущее количество пар с метриками в базе
var StoredPairs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "leverage",
		Subsystem: "storage",
		Name:      "stored_pairs",
		Help:      "Current number of pairs with stored metrics",
	},
)

// ============ Вспомогательные функции ============

// RecordCycle записывает итог цикла обновления
func RecordCycle(result string, durationSeconds float64) {
	UpdateCyclesTotal.WithLabelValues(result).Inc()
	if result != "rejected" {
		CycleDuration.Observe(durationSeconds)
	}
}

// RecordPairSkipped записывает пропуск пары
func RecordPairSkipped(reason string) {
	PairsSkippedTotal.WithLabelValues(reason).Inc()
}
