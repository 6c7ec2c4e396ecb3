package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"klineo/cache"
	"klineo/interfaces"
	"klineo/logger"
	"klineo/models"
	"klineo/symbols"
)

// BinanceClient implements the ExchangeClient interface for Binance spot
type BinanceClient struct {
	client  *binance.Client
	cfg     Config
	filters *cache.Cache
	store   interfaces.FilterStore

	retryDelay time.Duration
}

// NewBinanceClient creates a new Binance client instance on top of an
// HTTP client owned by the caller (see NewHTTPClient).
func NewBinanceClient(cfg Config, httpClient *http.Client) (*BinanceClient, error) {
	final := cfg.withDefaults()
	if httpClient == nil {
		var err error
		httpClient, err = NewHTTPClient(final)
		if err != nil {
			return nil, err
		}
	}
	filterCache, err := cache.New(1<<12, final.FilterTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter cache: %w", err)
	}

	client := binance.NewClient(final.APIKey, final.APISecret)
	client.BaseURL = final.BaseURL
	client.HTTPClient = httpClient
	logger.Infof("Using Binance spot API at %s", final.BaseURL)

	return &BinanceClient{
		client:     client,
		cfg:        final,
		filters:    filterCache,
		retryDelay: time.Second,
	}, nil
}

// WithFilterStore persists fetched filters and serves them when the exchange is unreachable
func (b *BinanceClient) WithFilterStore(store interfaces.FilterStore) *BinanceClient {
	b.store = store
	return b
}

// GetSymbolFilters returns LOT_SIZE, PRICE_FILTER and notional rules for a symbol
func (b *BinanceClient) GetSymbolFilters(ctx context.Context, symbol string) (models.SymbolFilters, error) {
	symbol = symbols.ToExchangeSymbol(symbol)
	if symbol == "" {
		return models.SymbolFilters{}, errors.New("symbol is required")
	}
	if v, ok := b.filters.Get(symbol); ok {
		return v.(models.SymbolFilters), nil
	}

	var info *binance.ExchangeInfo
	err := retry(ctx, func() error {
		var err error
		info, err = b.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
		return err
	}, 3, b.retryDelay)
	if err != nil {
		if fallback, ok := b.storedFilters(symbol, err); ok {
			return fallback, nil
		}
		return models.SymbolFilters{}, fmt.Errorf("failed to get exchange info for %s: %w", symbol, err)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		filters, err := parseSymbolFilters(s)
		if err != nil {
			return models.SymbolFilters{}, err
		}
		b.filters.Set(symbol, filters)
		if b.store != nil {
			if err := b.store.SaveSymbolFilters(filters); err != nil {
				logger.Warnf("Failed to persist filters for %s: %v", symbol, err)
			}
		}
		logger.Debugf("Loaded filters for %s: %+v", symbol, filters)
		return filters, nil
	}
	return models.SymbolFilters{}, fmt.Errorf("symbol %s not found in exchange info", symbol)
}

func (b *BinanceClient) storedFilters(symbol string, cause error) (models.SymbolFilters, bool) {
	// the exchange answered, the symbol is really unknown
	if b.store == nil || common.IsAPIError(cause) {
		return models.SymbolFilters{}, false
	}
	stored, err := b.store.GetSymbolFilters(symbol)
	if err != nil || stored == nil {
		return models.SymbolFilters{}, false
	}
	logger.Warnf("Exchange info unavailable for %s (%v), using stored filters", symbol, cause)
	return *stored, true
}

// GetTickerPrice fetches the latest price for a given symbol
func (b *BinanceClient) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = symbols.ToExchangeSymbol(symbol)

	var prices []*binance.SymbolPrice
	err := retry(ctx, func() error {
		var err error
		prices, err = b.client.NewListPricesService().Symbol(symbol).Do(ctx)
		return err
	}, 3, b.retryDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch current price for %s: %w", symbol, err)
	}

	for _, p := range prices {
		if p == nil || p.Symbol != symbol {
			continue
		}
		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse price for %s: %w", symbol, err)
		}
		logger.Debugf("Current price for %s: %.8f", symbol, price)
		return price, nil
	}
	return 0, fmt.Errorf("no price data returned for symbol %s", symbol)
}

// PlaceOrder submits an already normalized spot order and returns its order ID
func (b *BinanceClient) PlaceOrder(ctx context.Context, order models.NormalizedOrder) (int64, error) {
	if b.cfg.APIKey == "" || b.cfg.APISecret == "" {
		return 0, errors.New("binance credentials are not configured")
	}
	if order.Quantity == "" {
		return 0, fmt.Errorf("quantity is required for %s order on %s", order.Side, order.Symbol)
	}

	svc := b.client.NewCreateOrderService().
		Symbol(order.Symbol).
		Side(binance.SideType(order.Side)).
		Type(binance.OrderType(order.Type)).
		Quantity(order.Quantity)

	if order.Type == models.OrderTypeLimit {
		if order.Price == "" {
			return 0, fmt.Errorf("price is required for LIMIT order on %s", order.Symbol)
		}
		svc = svc.TimeInForce(binance.TimeInForceTypeGTC).Price(order.Price)
	}

	res, err := svc.Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to place %s %s order for %s: %w", order.Type, order.Side, order.Symbol, err)
	}

	logger.WithFields(logger.Fields{
		"symbol":  order.Symbol,
		"side":    order.Side,
		"type":    order.Type,
		"qty":     order.Quantity,
		"orderId": res.OrderID,
	}).Info("order placed")
	return res.OrderID, nil
}

// TestConnection calls the account endpoint and reports latency
func (b *BinanceClient) TestConnection(ctx context.Context) models.ConnectionStatus {
	start := time.Now()
	_, err := b.client.NewGetAccountService().Do(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return models.ConnectionStatus{
			OK:        false,
			LatencyMs: latency,
			Message:   "Connection failed",
			Error:     sanitize(err.Error()),
		}
	}
	return models.ConnectionStatus{OK: true, LatencyMs: latency, Message: "Connection successful"}
}

var (
	apiKeyPattern = regexp.MustCompile(`(?i)api[_-]?key`)
	secretPattern = regexp.MustCompile(`(?i)secret`)
)

func sanitize(msg string) string {
	msg = apiKeyPattern.ReplaceAllString(msg, "[REDACTED]")
	return secretPattern.ReplaceAllString(msg, "[REDACTED]")
}

// Retry helper for API calls. Exchange rejections are returned immediately.
func retry(ctx context.Context, fn func() error, retries int, delay time.Duration) error {
	var err error
	for i := 0; i < retries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if common.IsAPIError(err) {
			return err
		}
		if i == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", retries, err)
}
