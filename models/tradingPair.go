package models

import "klineo/symbols"

// TradingPair represents a single spot symbol and the exchange rules fetched for it
type TradingPair struct {
	Symbol     string        `json:"symbol"`
	BaseAsset  string        `json:"baseAsset,omitempty"`
	QuoteAsset string        `json:"quoteAsset,omitempty"`
	Filters    SymbolFilters `json:"filters"`
}

func NewTradingPair(pair string) TradingPair {
	// Filters are filled in once fetched from the exchange
	p := symbols.ParsePair(pair)
	return TradingPair{
		Symbol:     symbols.ToExchangeSymbol(pair),
		BaseAsset:  p.Base,
		QuoteAsset: p.Quote,
	}
}

func (p TradingPair) Display() string {
	return symbols.ToDisplaySymbol(p.Symbol)
}

// SymbolFilters holds the LOT_SIZE, PRICE_FILTER and notional rules of a symbol
type SymbolFilters struct {
	Symbol      string  `json:"symbol" db:"symbol"`
	MinQty      float64 `json:"minQty" db:"min_qty"`
	MaxQty      float64 `json:"maxQty" db:"max_qty"`
	StepSize    float64 `json:"stepSize" db:"step_size"`
	TickSize    float64 `json:"tickSize" db:"tick_size"`
	MinNotional float64 `json:"minNotional" db:"min_notional"`
}

func (f SymbolFilters) Constraint() symbols.StepSizeConstraint {
	return symbols.StepSizeConstraint{MinQty: f.MinQty, MaxQty: f.MaxQty, StepSize: f.StepSize}
}
