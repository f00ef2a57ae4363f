package utils

import "math"

// Round4 округляет значение до 4 знаков после запятой.
// Используется при отдаче метрик наружу, чтобы не тащить в API
// шум двоичного представления float64.
func Round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}

// RoundTo округляет значение до заданного количества знаков после запятой
func RoundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
