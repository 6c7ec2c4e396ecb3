package order

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"klineo/interfaces"
	"klineo/logger"
	"klineo/models"
	"klineo/symbols"
)

// defaultTickSize is used for limit prices when the exchange reports no PRICE_FILTER
const defaultTickSize = 0.01

// Validator turns an OrderRequest into exchange-compliant order parameters
// without placing anything.
type Validator struct {
	market interfaces.MarketData
}

func NewValidator(market interfaces.MarketData) *Validator {
	return &Validator{market: market}
}

func invalid(format string, args ...interface{}) models.ValidationResult {
	return models.ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// Validate checks the request against the symbol's filters. Rule violations
// come back as an invalid result; the error is reserved for a cancelled context.
func (v *Validator) Validate(ctx context.Context, req models.OrderRequest) (models.ValidationResult, error) {
	if venue := strings.ToLower(strings.TrimSpace(req.Exchange)); venue != "" && venue != models.ExchangeBinance {
		return invalid("unsupported exchange %q", req.Exchange), nil
	}
	symbol := symbols.ToExchangeSymbol(req.Symbol)
	if symbol == "" {
		return invalid("symbol or pair required"), nil
	}
	side := models.Side(strings.ToUpper(strings.TrimSpace(string(req.Side))))
	if side != models.SideBuy && side != models.SideSell {
		return invalid("side must be BUY or SELL"), nil
	}
	orderType := models.OrderType(strings.ToUpper(strings.TrimSpace(string(req.Type))))
	if orderType == "" {
		orderType = models.OrderTypeMarket
	}
	if orderType != models.OrderTypeMarket && orderType != models.OrderTypeLimit {
		return invalid("type must be MARKET or LIMIT"), nil
	}
	amounts := []struct {
		name string
		val  float64
	}{
		{"quantity", req.Quantity},
		{"quoteOrderQty", req.QuoteOrderQty},
		{"price", req.Price},
	}
	for _, a := range amounts {
		if math.IsNaN(a.val) || math.IsInf(a.val, 0) || a.val < 0 {
			return invalid("%s must be a non-negative number", a.name), nil
		}
	}
	if req.Quantity <= 0 && req.QuoteOrderQty <= 0 {
		return invalid("Provide quantity or quoteOrderQty (for market buy in quote)"), nil
	}

	filters, err := v.market.GetSymbolFilters(ctx, symbol)
	if err != nil {
		if ctx.Err() != nil {
			return models.ValidationResult{}, ctx.Err()
		}
		return invalid("%s", err.Error()), nil
	}

	price := req.Price
	if price <= 0 {
		current, err := v.market.GetTickerPrice(ctx, symbol)
		if err != nil {
			logger.Debugf("No ticker price for %s: %v", symbol, err)
		} else {
			price = current
		}
	}

	var qty string
	switch {
	case req.Quantity > 0:
		qty = symbols.ClampAndRoundQty(req.Quantity, filters.MinQty, filters.MaxQty, filters.StepSize)
	case price > 0:
		qty = symbols.ClampAndRoundQty(req.QuoteOrderQty/price, filters.MinQty, filters.MaxQty, filters.StepSize)
	default:
		res := invalid("no price available to convert quoteOrderQty for %s", symbol)
		res.Filters = &filters
		return res, nil
	}

	qtyDec, err := decimal.NewFromString(qty)
	if err != nil {
		res := invalid("invalid normalized quantity %q for %s", qty, symbol)
		res.Filters = &filters
		return res, nil
	}
	notional := qtyDec.Mul(decFromFloat(price))
	if notional.LessThan(decFromFloat(filters.MinNotional)) {
		res := invalid("Notional %s below min notional %v", notional.StringFixed(2), filters.MinNotional)
		res.Filters = &filters
		return res, nil
	}

	normalized := &models.NormalizedOrder{
		Symbol:   symbol,
		Side:     side,
		Type:     orderType,
		Quantity: qty,
		Notional: notional.Round(2).InexactFloat64(),
	}
	if orderType == models.OrderTypeLimit {
		if price <= 0 {
			res := invalid("price required for LIMIT order on %s", symbol)
			res.Filters = &filters
			return res, nil
		}
		tick := filters.TickSize
		if tick <= 0 {
			tick = defaultTickSize
		}
		normalized.Price = symbols.RoundToStep(price, tick)
	}

	res := models.ValidationResult{Valid: true, Normalized: normalized, Filters: &filters}
	if qtyDec.LessThan(decFromFloat(filters.MinQty)) {
		// minQty off the step grid; left to the exchange to accept or reject
		res.Warnings = append(res.Warnings, fmt.Sprintf("quantity %s is below minQty %v after step rounding", qty, filters.MinQty))
	}
	return res, nil
}

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}
