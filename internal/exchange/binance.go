package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"leverage/pkg/ratelimit"
)

const (
	// USDT-маржинальные фьючерсы: символы вида "BTC/USDT:USDT"
	binanceBaseURL = "https://fapi.binance.com"

	// Публичный лимит Binance Futures существенно выше, но батч раз в сутки
	// не требует агрессивного бюджета
	defaultRateLimit = 10 // запросов в секунду
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Binance реализует интерфейс Exchange для Binance USDT-M Futures.
// Использует только публичные endpoints - подпись запросов не нужна.
type Binance struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
}

// NewBinance создает новый клиент Binance.
// rateLimit - бюджет запросов в секунду (0 = значение по умолчанию).
// Использует общий HTTP клиент с connection pooling.
func NewBinance(rateLimit float64) *Binance {
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	return &Binance{
		baseURL:    binanceBaseURL,
		httpClient: SharedHTTPClient(),
		limiter:    ratelimit.NewRateLimiter(rateLimit, rateLimit*2),
	}
}

func (b *Binance) GetName() string {
	return "binance"
}

// doRequest выполняет GET запрос к публичному API Binance
func (b *Binance) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := b.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Exchange: "binance", Message: err.Error(), Original: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		// Binance возвращает {"code": -1121, "msg": "Invalid symbol."}
		var apiErr struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
			return nil, &ExchangeError{
				Exchange: "binance",
				Code:     strconv.Itoa(apiErr.Code),
				Message:  apiErr.Msg,
			}
		}
		return nil, &ExchangeError{
			Exchange: "binance",
			Code:     strconv.Itoa(resp.StatusCode),
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	return body, nil
}

// FetchOHLCV получает дневные свечи за lookback дней.
//
// GET /fapi/v1/klines возвращает массив массивов:
// [openTime, open, high, low, close, volume, closeTime, ...]
// в хронологическом порядке.
func (b *Binance) FetchOHLCV(ctx context.Context, symbol, timeframe string, days int) ([]Candle, error) {
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	params := url.Values{}
	params.Set("symbol", NormalizeSymbol(symbol))
	params.Set("interval", binanceInterval(timeframe))
	params.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	params.Set("limit", strconv.Itoa(days+1))

	body, err := b.doRequest(ctx, "/fapi/v1/klines", params)
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}

	// Числовые поля приходят строками
	var raw [][]jsoniter.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse klines for %s: %w", symbol, err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoMarketData)
	}

	candles := make([]Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}

		var openTime int64
		if err := json.Unmarshal(k[0], &openTime); err != nil {
			continue
		}

		c := Candle{Timestamp: time.UnixMilli(openTime).UTC()}
		fields := []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
		ok := true
		for i, dst := range fields {
			var s string
			if err := json.Unmarshal(k[i+1], &s); err != nil {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			*dst = v
		}
		if ok {
			candles = append(candles, c)
		}
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoMarketData)
	}

	return candles, nil
}

// GetTicker получает текущую цену символа
func (b *Binance) GetTicker(ctx context.Context, symbol string) (*Ticker, error) {
	params := url.Values{}
	params.Set("symbol", NormalizeSymbol(symbol))

	body, err := b.doRequest(ctx, "/fapi/v1/ticker/price", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("parse ticker price for %s: %w", symbol, err)
	}

	return &Ticker{
		Symbol:    resp.Symbol,
		LastPrice: price,
		Timestamp: time.Now(),
	}, nil
}

func (b *Binance) Close() error {
	// Общий HTTP клиент закрывается при shutdown приложения
	return nil
}

// binanceInterval переводит timeframe в формат Binance ("1d" -> "1d")
func binanceInterval(timeframe string) string {
	if timeframe == "" {
		return "1d"
	}
	return timeframe
}
