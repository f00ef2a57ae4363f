package models

import "time"

// RefreshReport - итог одного цикла обновления метрик.
//
// Цикл не является транзакцией: успешно записанные пары остаются в базе,
// даже если последующие пары были пропущены или цикл прерван ошибкой хранилища.
type RefreshReport struct {
	Updated           []string          `json:"updated"`            // пары, записанные в базу
	Skipped           map[string]string `json:"skipped"`            // пара -> причина пропуска
	BenchmarkDegraded bool              `json:"benchmark_degraded"` // эталонные метрики заменены дефолтами
	StartedAt         time.Time         `json:"started_at"`
	Duration          time.Duration     `json:"duration"`
}

// UpdatedCount возвращает количество обновленных пар.
func (r *RefreshReport) UpdatedCount() int {
	return len(r.Updated)
}

// SkippedCount возвращает количество пропущенных пар.
func (r *RefreshReport) SkippedCount() int {
	return len(r.Skipped)
}
