package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klineo/models"
)

const btcExchangeInfo = `{
  "timezone": "UTC",
  "serverTime": 1700000000000,
  "symbols": [{
    "symbol": "BTCUSDT",
    "status": "TRADING",
    "baseAsset": "BTC",
    "baseAssetPrecision": 8,
    "quoteAsset": "USDT",
    "quotePrecision": 8,
    "orderTypes": ["LIMIT", "MARKET"],
    "filters": [
      {"filterType": "PRICE_FILTER", "minPrice": "0.01000000", "maxPrice": "1000000.00000000", "tickSize": "0.01000000"},
      {"filterType": "LOT_SIZE", "minQty": "0.00001000", "maxQty": "9000.00000000", "stepSize": "0.00001000"},
      {"filterType": "NOTIONAL", "minNotional": "5.00000000", "applyMinToMarket": true, "maxNotional": "9000000.00000000"}
    ]
  }]
}`

type fakeExchange struct {
	infoCalls  atomic.Int32
	orderQuery atomic.Value
}

func (f *fakeExchange) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		f.infoCalls.Add(1)
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
			return
		}
		fmt.Fprint(w, btcExchangeInfo)
	})
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"symbol":%q,"price":"65000.12000000"}]`, r.URL.Query().Get("symbol"))
	})
	mux.HandleFunc("/api/v3/order", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.orderQuery.Store(r.Form)
		fmt.Fprint(w, `{"symbol":"BTCUSDT","orderId":4242,"clientOrderId":"abc","transactTime":1700000000000,"status":"NEW"}`)
	})
	mux.HandleFunc("/api/v3/account", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":-2015,"msg":"Invalid API-key, IP, or permissions for action."}`)
	})
	return mux
}

func newTestClient(t *testing.T, baseURL string) *BinanceClient {
	t.Helper()
	c, err := NewBinanceClient(Config{APIKey: "key", APISecret: "secret", BaseURL: baseURL}, nil)
	require.NoError(t, err)
	c.retryDelay = time.Millisecond
	return c
}

type memFilterStore struct {
	mu    sync.Mutex
	saved map[string]models.SymbolFilters
}

func (m *memFilterStore) SaveSymbolFilters(f models.SymbolFilters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]models.SymbolFilters)
	}
	m.saved[f.Symbol] = f
	return nil
}

func (m *memFilterStore) GetSymbolFilters(symbol string) (*models.SymbolFilters, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.saved[symbol]
	if !ok {
		return nil, fmt.Errorf("no filters for %s", symbol)
	}
	return &f, nil
}

func TestGetSymbolFilters(t *testing.T) {
	fx := &fakeExchange{}
	srv := httptest.NewServer(fx.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	f, err := c.GetSymbolFilters(context.Background(), "btc/usdt")
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", f.Symbol)
	assert.Equal(t, 0.00001, f.MinQty)
	assert.Equal(t, 9000.0, f.MaxQty)
	assert.Equal(t, 0.00001, f.StepSize)
	assert.Equal(t, 0.01, f.TickSize)
	assert.Equal(t, 5.0, f.MinNotional)

	// served from cache
	_, err = c.GetSymbolFilters(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fx.infoCalls.Load())
}

func TestGetSymbolFiltersUnknownSymbol(t *testing.T) {
	fx := &fakeExchange{}
	srv := httptest.NewServer(fx.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GetSymbolFilters(context.Background(), "NOPEUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOPEUSDT")
	// rejections are not retried
	assert.Equal(t, int32(1), fx.infoCalls.Load())

	_, err = c.GetSymbolFilters(context.Background(), "  ")
	assert.Error(t, err)
}

func TestGetSymbolFiltersFallsBackToStore(t *testing.T) {
	fx := &fakeExchange{}
	srv := httptest.NewServer(fx.handler())

	store := &memFilterStore{}
	c := newTestClient(t, srv.URL).WithFilterStore(store)
	_, err := c.GetSymbolFilters(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Contains(t, store.saved, "BTCUSDT")

	srv.Close()
	offline := newTestClient(t, srv.URL).WithFilterStore(store)
	f, err := offline.GetSymbolFilters(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 0.00001, f.StepSize)

	_, err = offline.GetSymbolFilters(context.Background(), "ETHUSDT")
	assert.Error(t, err)
}

func TestGetTickerPrice(t *testing.T) {
	srv := httptest.NewServer((&fakeExchange{}).handler())
	defer srv.Close()

	price, err := newTestClient(t, srv.URL).GetTickerPrice(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.Equal(t, 65000.12, price)
}

func TestPlaceLimitOrder(t *testing.T) {
	fx := &fakeExchange{}
	srv := httptest.NewServer(fx.handler())
	defer srv.Close()

	id, err := newTestClient(t, srv.URL).PlaceOrder(context.Background(), models.NormalizedOrder{
		Symbol:   "BTCUSDT",
		Side:     models.SideBuy,
		Type:     models.OrderTypeLimit,
		Quantity: "0.00150",
		Price:    "64000.00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)

	form, ok := fx.orderQuery.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, []string{"0.00150"}, form["quantity"])
	assert.Equal(t, []string{"64000.00"}, form["price"])
	assert.Equal(t, []string{"GTC"}, form["timeInForce"])
	assert.Equal(t, []string{"LIMIT"}, form["type"])
}

func TestPlaceOrderRequiresCredentials(t *testing.T) {
	c, err := NewBinanceClient(Config{BaseURL: "http://127.0.0.1:1"}, nil)
	require.NoError(t, err)
	_, err = c.PlaceOrder(context.Background(), models.NormalizedOrder{Symbol: "BTCUSDT", Quantity: "1"})
	assert.Error(t, err)
}

func TestPlaceLimitOrderRequiresPrice(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.PlaceOrder(context.Background(), models.NormalizedOrder{
		Symbol: "BTCUSDT", Side: models.SideSell, Type: models.OrderTypeLimit, Quantity: "1",
	})
	assert.Error(t, err)
}

func TestConnectionFailureIsSanitized(t *testing.T) {
	srv := httptest.NewServer((&fakeExchange{}).handler())
	defer srv.Close()

	status := newTestClient(t, srv.URL).TestConnection(context.Background())
	assert.False(t, status.OK)
	assert.Equal(t, "Connection failed", status.Message)
	assert.NotContains(t, status.Error, "API-key")
	assert.Contains(t, status.Error, "[REDACTED]")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "bad [REDACTED] and [REDACTED]", sanitize("bad api_key and Secret"))
	assert.Equal(t, "[REDACTED] [REDACTED]", sanitize("APIKEY api-key"))
}

func TestRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := retry(ctx, func() error {
		calls++
		return fmt.Errorf("network down")
	}, 3, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
