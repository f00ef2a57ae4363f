package exchange

import (
	"fmt"
	"strings"
)

// SupportedExchanges - список поддерживаемых бирж
var SupportedExchanges = []string{
	"binance",
	"bybit",
}

// NewExchange создает новый экземпляр биржи по имени.
// rateLimit - бюджет запросов в секунду (0 = значение по умолчанию).
func NewExchange(name string, rateLimit float64) (Exchange, error) {
	name = strings.ToLower(name)

	switch name {
	case "binance":
		return NewBinance(rateLimit), nil
	case "bybit":
		return NewBybit(rateLimit), nil
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", name)
	}
}

// IsSupported проверяет, поддерживается ли биржа
func IsSupported(name string) bool {
	name = strings.ToLower(name)
	for _, supported := range SupportedExchanges {
		if name == supported {
			return true
		}
	}
	return false
}

// Проверки соответствия интерфейсу на этапе компиляции
var (
	_ Exchange = (*Binance)(nil)
	_ Exchange = (*Bybit)(nil)
)
