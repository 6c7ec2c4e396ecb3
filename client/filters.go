package client

import (
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"

	"klineo/interfaces"
	"klineo/models"
)

var _ interfaces.ExchangeClient = (*BinanceClient)(nil)

const (
	filterLotSize     = "LOT_SIZE"
	filterPrice       = "PRICE_FILTER"
	filterMinNotional = "MIN_NOTIONAL"
	filterNotional    = "NOTIONAL"
)

// parseSymbolFilters extracts the trading rules of a symbol from exchangeInfo
func parseSymbolFilters(s binance.Symbol) (models.SymbolFilters, error) {
	out := models.SymbolFilters{Symbol: s.Symbol}
	var lotSizeFound bool
	var err error

	for _, filter := range s.Filters {
		switch filter["filterType"] {
		case filterLotSize:
			lotSizeFound = true
			if out.MinQty, err = filterFloat(filter, "minQty"); err != nil {
				return out, fmt.Errorf("failed to parse minQty for %s: %w", s.Symbol, err)
			}
			if out.MaxQty, err = filterFloat(filter, "maxQty"); err != nil {
				return out, fmt.Errorf("failed to parse maxQty for %s: %w", s.Symbol, err)
			}
			if out.StepSize, err = filterFloat(filter, "stepSize"); err != nil {
				return out, fmt.Errorf("failed to parse stepSize for %s: %w", s.Symbol, err)
			}
		case filterPrice:
			if out.TickSize, err = filterFloat(filter, "tickSize"); err != nil {
				return out, fmt.Errorf("failed to parse tickSize for %s: %w", s.Symbol, err)
			}
		case filterMinNotional, filterNotional:
			// NOTIONAL replaced MIN_NOTIONAL on spot; either carries minNotional
			if _, ok := filter["minNotional"]; !ok {
				continue
			}
			if out.MinNotional, err = filterFloat(filter, "minNotional"); err != nil {
				return out, fmt.Errorf("failed to parse minNotional for %s: %w", s.Symbol, err)
			}
		}
	}

	if !lotSizeFound {
		return out, fmt.Errorf("no LOT_SIZE filter for %s", s.Symbol)
	}
	return out, nil
}

func filterFloat(filter map[string]interface{}, key string) (float64, error) {
	raw, ok := filter[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	switch v := raw.(type) {
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("invalid %s format %T", key, raw)
	}
}
