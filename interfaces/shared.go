package interfaces

import (
	"context"

	"klineo/models"
)

// MarketData is the read side of an exchange the order validator needs
type MarketData interface {
	GetSymbolFilters(ctx context.Context, symbol string) (models.SymbolFilters, error)
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)
}

// OrderPlacer submits normalized orders to an exchange
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order models.NormalizedOrder) (int64, error)
}

type ExchangeClient interface {
	MarketData
	OrderPlacer
	TestConnection(ctx context.Context) models.ConnectionStatus
}

// FilterStore persists symbol filters between runs
type FilterStore interface {
	SaveSymbolFilters(filters models.SymbolFilters) error
	GetSymbolFilters(symbol string) (*models.SymbolFilters, error)
}

// OrderLog records every order check and placement
type OrderLog interface {
	LogOrderCheck(check models.OrderCheck) (int64, error)
}
