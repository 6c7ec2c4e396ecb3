package models

import "time"

type SymbolSummary struct {
	Symbol        string
	Checks        int
	Valid         int
	Rejected      int
	Placed        int
	TotalNotional float64
}

type OrderLogSummary struct {
	Timestamp time.Time
	Symbols   []SymbolSummary
}
