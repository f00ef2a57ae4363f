package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"leverage/pkg/ratelimit"
)

const bybitBaseURL = "https://api.bybit.com"

// Bybit реализует интерфейс Exchange для Bybit (линейные контракты, v5 API).
// Используются только публичные endpoints без подписи.
type Bybit struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
}

// NewBybit создает новый клиент Bybit.
// rateLimit - бюджет запросов в секунду (0 = значение по умолчанию).
// Использует общий HTTP клиент с connection pooling.
func NewBybit(rateLimit float64) *Bybit {
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	return &Bybit{
		baseURL:    bybitBaseURL,
		httpClient: SharedHTTPClient(),
		limiter:    ratelimit.NewRateLimiter(rateLimit, rateLimit*2),
	}
}

func (b *Bybit) GetName() string {
	return "bybit"
}

// doRequest выполняет GET запрос к публичному API Bybit
func (b *Bybit) doRequest(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	reqURL := b.baseURL + endpoint
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, &ExchangeError{Exchange: "bybit", Message: err.Error(), Original: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Проверяем базовый ответ
	var baseResp struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
	}
	if err := json.Unmarshal(body, &baseResp); err != nil {
		return nil, err
	}

	if baseResp.RetCode != 0 {
		return nil, &ExchangeError{
			Exchange: "bybit",
			Code:     strconv.Itoa(baseResp.RetCode),
			Message:  baseResp.RetMsg,
		}
	}

	return body, nil
}

// FetchOHLCV получает дневные свечи за lookback дней.
//
// GET /v5/market/kline возвращает result.list в ОБРАТНОМ хронологическом
// порядке (новые первыми), поэтому список разворачивается.
// Элемент: [startTime, open, high, low, close, volume, turnover].
func (b *Bybit) FetchOHLCV(ctx context.Context, symbol, timeframe string, days int) ([]Candle, error) {
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	params := map[string]string{
		"category": "linear",
		"symbol":   NormalizeSymbol(symbol),
		"interval": bybitInterval(timeframe),
		"start":    strconv.FormatInt(since.UnixMilli(), 10),
		"limit":    strconv.Itoa(days + 1),
	}

	body, err := b.doRequest(ctx, "/v5/market/kline", params)
	if err != nil {
		return nil, fmt.Errorf("fetch klines for %s: %w", symbol, err)
	}

	var resp struct {
		Result struct {
			List [][]string `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse klines for %s: %w", symbol, err)
	}

	if len(resp.Result.List) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoMarketData)
	}

	candles := make([]Candle, 0, len(resp.Result.List))
	// Идем с конца, чтобы получить хронологический порядок
	for i := len(resp.Result.List) - 1; i >= 0; i-- {
		k := resp.Result.List[i]
		if len(k) < 6 {
			continue
		}

		ts, err := strconv.ParseInt(k[0], 10, 64)
		if err != nil {
			continue
		}

		c := Candle{Timestamp: time.UnixMilli(ts).UTC()}
		fields := []*float64{&c.Open, &c.High, &c.Low, &c.Close, &c.Volume}
		ok := true
		for j, dst := range fields {
			v, err := strconv.ParseFloat(k[j+1], 64)
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
func (b *Bybit) GetTicker(ctx context.Context, symbol string) (*Ticker, error) {
	params := map[string]string{
		"category": "linear",
		"symbol":   NormalizeSymbol(symbol),
	}

	body, err := b.doRequest(ctx, "/v5/market/tickers", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			List []struct {
				Symbol    string `json:"symbol"`
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Result.List) == 0 {
		return nil, fmt.Errorf("ticker not found for %s", symbol)
	}

	t := resp.Result.List[0]
	lastPrice, err := strconv.ParseFloat(t.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("parse ticker price for %s: %w", symbol, err)
	}

	return &Ticker{
		Symbol:    t.Symbol,
		LastPrice: lastPrice,
		Timestamp: time.Now(),
	}, nil
}

func (b *Bybit) Close() error {
	return nil
}

// bybitInterval переводит timeframe в формат Bybit ("1d" -> "D")
func bybitInterval(timeframe string) string {
	switch timeframe {
	case "", "1d":
		return "D"
	case "1w":
		return "W"
	case "1h":
		return "60"
	case "4h":
		return "240"
	default:
		return "D"
	}
}
