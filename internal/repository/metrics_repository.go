package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"leverage/internal/models"
)

// Ошибки репозитория метрик
var (
	ErrMetricsNotFound = errors.New("pair metrics not found")
)

// MetricsRepository - работа с таблицей pair_metrics
type MetricsRepository struct {
	db *sql.DB
}

// NewMetricsRepository создает новый экземпляр репозитория
func NewMetricsRepository(db *sql.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// InitSchema создает таблицу метрик, если она еще не существует.
// Вызывается при старте сервиса - отдельная система миграций не нужна
// для одной таблицы.
func (r *MetricsRepository) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS pair_metrics (
			pair                 TEXT PRIMARY KEY,
			leverage_adjustment  DOUBLE PRECISION NOT NULL,
			volatility_ratio     DOUBLE PRECISION NOT NULL,
			correlation_with_eth DOUBLE PRECISION NOT NULL,
			avg_daily_movement   DOUBLE PRECISION NOT NULL,
			recommended_leverage INTEGER NOT NULL,
			last_updated         TIMESTAMPTZ NOT NULL
		)`

	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Upsert записывает метрики пары.
// Повторная запись той же пары перезаписывает строку (идемпотентно).
func (r *MetricsRepository) Upsert(ctx context.Context, metrics *models.PairMetrics) error {
	query := `
		INSERT INTO pair_metrics (pair, leverage_adjustment, volatility_ratio, correlation_with_eth, avg_daily_movement, recommended_leverage, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pair) DO UPDATE SET
			leverage_adjustment  = EXCLUDED.leverage_adjustment,
			volatility_ratio     = EXCLUDED.volatility_ratio,
			correlation_with_eth = EXCLUDED.correlation_with_eth,
			avg_daily_movement   = EXCLUDED.avg_daily_movement,
			recommended_leverage = EXCLUDED.recommended_leverage,
			last_updated         = EXCLUDED.last_updated`

	_, err := r.db.ExecContext(
		ctx,
		query,
		metrics.Pair,
		metrics.LeverageAdjustment,
		metrics.VolatilityRatio,
		metrics.CorrelationWithETH,
		metrics.AvgDailyMovement,
		metrics.RecommendedLeverage,
		metrics.LastUpdated,
	)

	return err
}

// GetMany возвращает метрики запрошенных пар.
//
// Результат - map по имени пары: вызывающий код сам решает, чем заполнить
// отсутствующие пары. Пары без записей в map не попадают.
func (r *MetricsRepository) GetMany(ctx context.Context, pairs []string) (map[string]*models.PairMetrics, error) {
	result := make(map[string]*models.PairMetrics, len(pairs))
	if len(pairs) == 0 {
		return result, nil
	}

	query := `
		SELECT pair, leverage_adjustment, volatility_ratio, correlation_with_eth, avg_daily_movement, recommended_leverage, last_updated
		FROM pair_metrics
		WHERE pair = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(pairs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m := &models.PairMetrics{}
		err := rows.Scan(
			&m.Pair,
			&m.LeverageAdjustment,
			&m.VolatilityRatio,
			&m.CorrelationWithETH,
			&m.AvgDailyMovement,
			&m.RecommendedLeverage,
			&m.LastUpdated,
		)
		if err != nil {
			return nil, err
		}
		result[m.Pair] = m
	}

	return result, rows.Err()
}

// GetByPair возвращает метрики одной пары
func (r *MetricsRepository) GetByPair(ctx context.Context, pair string) (*models.PairMetrics, error) {
	query := `
		SELECT pair, leverage_adjustment, volatility_ratio, correlation_with_eth, avg_daily_movement, recommended_leverage, last_updated
		FROM pair_metrics
		WHERE pair = $1`

	m := &models.PairMetrics{}
	err := r.db.QueryRowContext(ctx, query, pair).Scan(
		&m.Pair,
		&m.LeverageAdjustment,
		&m.VolatilityRatio,
		&m.CorrelationWithETH,
		&m.AvgDailyMovement,
		&m.RecommendedLeverage,
		&m.LastUpdated,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMetricsNotFound
		}
		return nil, err
	}

	return m, nil
}

// GetAllPairs возвращает имена всех пар с метриками в алфавитном порядке
func (r *MetricsRepository) GetAllPairs(ctx context.Context) ([]string, error) {
	query := `SELECT pair FROM pair_metrics ORDER BY pair`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make([]string, 0)
	for rows.Next() {
		var pair string
		if err := rows.Scan(&pair); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	return pairs, rows.Err()
}

// Count возвращает количество пар с метриками
func (r *MetricsRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pair_metrics`).Scan(&count)
	return count, err
}
