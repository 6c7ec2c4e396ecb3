package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klineo/models"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := InitDB(filepath.Join(t.TempDir(), "data", "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogAndListOrderChecks(t *testing.T) {
	s := openTestDB(t)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.LogOrderCheck(models.OrderCheck{
		Symbol: "BTCUSDT", Side: "BUY", Type: "MARKET", RequestedQty: 0.0015678,
		Quantity: "0.00156", Notional: 101.4, Valid: true, Timestamp: ts,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = s.LogOrderCheck(models.OrderCheck{Symbol: "ETHUSDT", Side: "SELL", Valid: false, Error: "Notional 3.25 below min notional 5"})
	require.NoError(t, err)
	_, err = s.LogOrderCheck(models.OrderCheck{Symbol: "BTCUSDT", Side: "SELL", Quantity: "0.10000", Valid: true, OrderID: 99})
	require.NoError(t, err)

	all, err := s.ListOrderChecks("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(99), all[0].OrderID)

	btc, err := s.ListOrderChecks("BTCUSDT", 10)
	require.NoError(t, err)
	require.Len(t, btc, 2)
	first := btc[1]
	assert.Equal(t, "0.00156", first.Quantity)
	assert.Equal(t, 101.4, first.Notional)
	assert.True(t, first.Valid)
	assert.True(t, ts.Equal(first.Timestamp))

	limited, err := s.ListOrderChecks("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSymbolFiltersUpsert(t *testing.T) {
	s := openTestDB(t)

	_, err := s.GetSymbolFilters("BTCUSDT")
	assert.Error(t, err)

	f := models.SymbolFilters{Symbol: "BTCUSDT", MinQty: 0.00001, MaxQty: 9000, StepSize: 0.00001, TickSize: 0.01, MinNotional: 5}
	require.NoError(t, s.SaveSymbolFilters(f))

	f.MinNotional = 10
	require.NoError(t, s.SaveSymbolFilters(f))

	got, err := s.GetSymbolFilters("BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, f, *got)
}
