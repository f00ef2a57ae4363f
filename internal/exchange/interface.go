package exchange

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Exchange определяет унифицированный интерфейс источника рыночных данных.
//
// Сервису нужны только публичные данные (история свечей и текущая цена),
// поэтому подключение без API ключей.
type Exchange interface {
	// GetName возвращает имя биржи
	GetName() string

	// FetchOHLCV получает дневные свечи за lookback дней.
	// Свечи возвращаются в хронологическом порядке (от старых к новым).
	// Пустая история или недоступность биржи - ошибка ErrNoMarketData.
	FetchOHLCV(ctx context.Context, symbol, timeframe string, days int) ([]Candle, error)

	// GetTicker получает текущую цену (используется health check'ом)
	GetTicker(ctx context.Context, symbol string) (*Ticker, error)

	// Close закрывает соединения с биржей
	Close() error
}

// Candle представляет одну свечу OHLCV
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Ticker содержит информацию о текущей цене
type Ticker struct {
	Symbol    string    `json:"symbol"`
	LastPrice float64   `json:"last_price"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrNoMarketData - история по символу недоступна (пустой ответ или сбой биржи).
// Вызывающий код трактует таймаут запроса так же, как эту ошибку.
var ErrNoMarketData = errors.New("no market data available")

// ExchangeError представляет ошибку от API биржи
type ExchangeError struct {
	Exchange string
	Code     string
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	return e.Exchange + ": " + e.Message
}

// Unwrap возвращает оригинальную ошибку для поддержки errors.Is() и errors.As()
func (e *ExchangeError) Unwrap() error {
	return e.Original
}

// NormalizeSymbol приводит символ формата ccxt к формату биржи.
//
// Примеры:
//   - "BTC/USDT:USDT" -> "BTCUSDT" (линейный своп)
//   - "ETH/USDT"      -> "ETHUSDT" (спот)
//   - "BTCUSDT"       -> "BTCUSDT" (уже нормализован)
func NormalizeSymbol(symbol string) string {
	// Отрезаем валюту расчета (":USDT" у линейных свопов)
	if idx := strings.Index(symbol, ":"); idx >= 0 {
		symbol = symbol[:idx]
	}
	return strings.ReplaceAll(symbol, "/", "")
}
