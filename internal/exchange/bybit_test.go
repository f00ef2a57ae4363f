package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"leverage/pkg/ratelimit"
)

func newTestBybit(serverURL string) *Bybit {
	return &Bybit{
		baseURL:    serverURL,
		httpClient: http.DefaultClient,
		limiter:    ratelimit.NewRateLimiter(1000, 1000),
	}
}

// ============================================================
// Тесты Bybit FetchOHLCV
// ============================================================

func TestBybitFetchOHLCV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/kline" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("category"); got != "linear" {
			t.Errorf("unexpected category %q", got)
		}
		if got := r.URL.Query().Get("interval"); got != "D" {
			t.Errorf("unexpected interval %q", got)
		}

		// Bybit отдает свечи новыми первыми
		w.Write([]byte(`{
			"retCode": 0,
			"retMsg": "OK",
			"result": {
				"list": [
					["1725235200000", "60000.0", "61000.0", "59800.0", "60500.0", "9876.5", "1"],
					["1725148800000", "59000.1", "60100.5", "58500.0", "60000.0", "12345.6", "1"]
				]
			}
		}`))
	}))
	defer server.Close()

	b := newTestBybit(server.URL)

	candles, err := b.FetchOHLCV(context.Background(), "BTC/USDT:USDT", "1d", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	// После разворота первая свеча - самая старая
	if candles[0].Close != 60000.0 || candles[1].Close != 60500.0 {
		t.Errorf("unexpected candle order: %+v", candles)
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Error("candles must be in chronological order")
	}
}

func TestBybitFetchOHLCVEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode": 0, "retMsg": "OK", "result": {"list": []}}`))
	}))
	defer server.Close()

	b := newTestBybit(server.URL)

	_, err := b.FetchOHLCV(context.Background(), "DEAD/USDT:USDT", "1d", 28)
	if !errors.Is(err, ErrNoMarketData) {
		t.Errorf("expected ErrNoMarketData, got %v", err)
	}
}

func TestBybitFetchOHLCVAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode": 10001, "retMsg": "params error"}`))
	}))
	defer server.Close()

	b := newTestBybit(server.URL)

	_, err := b.FetchOHLCV(context.Background(), "BAD", "1d", 28)
	if err == nil {
		t.Fatal("expected error")
	}

	var exErr *ExchangeError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExchangeError, got %T", err)
	}
	if exErr.Code != "10001" {
		t.Errorf("unexpected code %q", exErr.Code)
	}
}

// ============================================================
// Тесты Bybit GetTicker
// ============================================================

func TestBybitGetTicker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/tickers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"retCode": 0,
			"retMsg": "OK",
			"result": {"list": [{"symbol": "ETHUSDT", "lastPrice": "3456.78"}]}
		}`))
	}))
	defer server.Close()

	b := newTestBybit(server.URL)

	ticker, err := b.GetTicker(context.Background(), "ETH/USDT:USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker.Symbol != "ETHUSDT" || ticker.LastPrice != 3456.78 {
		t.Errorf("unexpected ticker: %+v", ticker)
	}
}

func TestBybitGetTickerNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode": 0, "retMsg": "OK", "result": {"list": []}}`))
	}))
	defer server.Close()

	b := newTestBybit(server.URL)

	if _, err := b.GetTicker(context.Background(), "UNKNOWN/USDT:USDT"); err == nil {
		t.Error("expected error for missing ticker")
	}
}
