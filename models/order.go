package models

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ExchangeBinance is the only venue orders can be validated against.
const ExchangeBinance = "binance"

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// OrderRequest is a trading intent as entered by the user.
// Either Quantity (base asset) or QuoteOrderQty must be set.
type OrderRequest struct {
	Exchange      string    `json:"exchange"`
	Symbol        string    `json:"symbol"`
	Side          Side      `json:"side"`
	Type          OrderType `json:"type"`
	Quantity      float64   `json:"quantity,omitempty"`
	QuoteOrderQty float64   `json:"quoteOrderQty,omitempty"`
	Price         float64   `json:"price,omitempty"`
}

// NormalizedOrder carries the exchange-ready order parameters
type NormalizedOrder struct {
	Symbol   string    `json:"symbol"`
	Side     Side      `json:"side"`
	Type     OrderType `json:"type"`
	Quantity string    `json:"quantity,omitempty"`
	Price    string    `json:"price,omitempty"`
	Notional float64   `json:"notional,omitempty"`
}

type ValidationResult struct {
	Valid      bool             `json:"valid"`
	Error      string           `json:"error,omitempty"`
	Normalized *NormalizedOrder `json:"normalized,omitempty"`
	Filters    *SymbolFilters   `json:"filters,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// OrderCheck is a row of the order log
type OrderCheck struct {
	ID           int       `json:"id" db:"id"`
	Symbol       string    `json:"symbol" db:"symbol"`
	Side         string    `json:"side" db:"side"`
	Type         string    `json:"type" db:"type"`
	RequestedQty float64   `json:"requested_qty" db:"requested_qty"`
	QuoteQty     float64   `json:"quote_qty" db:"quote_qty"`
	Quantity     string    `json:"quantity" db:"quantity"`
	Price        string    `json:"price" db:"price"`
	Notional     float64   `json:"notional" db:"notional"`
	Valid        bool      `json:"valid" db:"valid"`
	Error        string    `json:"error" db:"error"`
	OrderID      int64     `json:"order_id" db:"order_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
}

// ConnectionStatus is the outcome of an authenticated round trip to the exchange
type ConnectionStatus struct {
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latencyMs"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}
