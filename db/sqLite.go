package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"klineo/logger"
	"klineo/models"
)

type SQLite struct {
	DB *sql.DB
}

// InitDB opens (or creates) the order log database at dbPath
func InitDB(dbPath string) (*SQLite, error) {
	logger.Infof("Initializing database at %s", dbPath)

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	query := `
    CREATE TABLE IF NOT EXISTS order_checks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        symbol TEXT NOT NULL,
        side TEXT,
        type TEXT,
        requested_qty REAL,
        quote_qty REAL,
        quantity TEXT,
        price TEXT,
        notional REAL,
        valid INTEGER NOT NULL,
        error TEXT,
        order_id INTEGER,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );`
	if _, err = db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating order_checks table: %w", err)
	}

	query = `
    CREATE TABLE IF NOT EXISTS symbol_filters (
    symbol TEXT PRIMARY KEY,
    min_qty REAL NOT NULL,
    max_qty REAL NOT NULL,
    step_size REAL NOT NULL,
    tick_size REAL NOT NULL,
    min_notional REAL NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating symbol_filters table: %w", err)
	}

	logger.Debug("Database initialized successfully.")
	return &SQLite{DB: db}, nil
}

func (s *SQLite) Close() error {
	return s.DB.Close()
}

// LogOrderCheck records a validation or placement and returns the row ID
func (s *SQLite) LogOrderCheck(c models.OrderCheck) (int64, error) {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	res, err := s.DB.Exec(`
        INSERT INTO order_checks (symbol, side, type, requested_qty, quote_qty, quantity, price, notional, valid, error, order_id, timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, c.Symbol, c.Side, c.Type, c.RequestedQty, c.QuoteQty, c.Quantity, c.Price, c.Notional, c.Valid, c.Error, c.OrderID, c.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("error logging order check for %s: %w", c.Symbol, err)
	}
	return res.LastInsertId()
}

// ListOrderChecks returns the latest checks, newest first. An empty symbol lists all.
func (s *SQLite) ListOrderChecks(symbol string, limit int) ([]models.OrderCheck, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, symbol, side, type, requested_qty, quote_qty, quantity, price, notional, valid, error, order_id, timestamp
        FROM order_checks WHERE (? = '' OR symbol = ?) ORDER BY id DESC LIMIT ?`
	rows, err := s.DB.Query(query, symbol, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []models.OrderCheck
	for rows.Next() {
		var c models.OrderCheck
		err := rows.Scan(&c.ID, &c.Symbol, &c.Side, &c.Type, &c.RequestedQty, &c.QuoteQty, &c.Quantity,
			&c.Price, &c.Notional, &c.Valid, &c.Error, &c.OrderID, &c.Timestamp)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// SaveSymbolFilters upserts the filters of a symbol
func (s *SQLite) SaveSymbolFilters(f models.SymbolFilters) error {
	_, err := s.DB.Exec(`
        INSERT INTO symbol_filters (symbol, min_qty, max_qty, step_size, tick_size, min_notional, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(symbol) DO UPDATE SET
            min_qty = excluded.min_qty,
            max_qty = excluded.max_qty,
            step_size = excluded.step_size,
            tick_size = excluded.tick_size,
            min_notional = excluded.min_notional,
            updated_at = CURRENT_TIMESTAMP
    `, f.Symbol, f.MinQty, f.MaxQty, f.StepSize, f.TickSize, f.MinNotional)
	return err
}

// GetSymbolFilters fetches the stored filters for a given symbol
func (s *SQLite) GetSymbolFilters(symbol string) (*models.SymbolFilters, error) {
	query := `SELECT symbol, min_qty, max_qty, step_size, tick_size, min_notional FROM symbol_filters WHERE symbol = ?`
	row := s.DB.QueryRow(query, symbol)

	var f models.SymbolFilters
	err := row.Scan(&f.Symbol, &f.MinQty, &f.MaxQty, &f.StepSize, &f.TickSize, &f.MinNotional)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no stored filters for symbol: %s", symbol)
		}
		return nil, fmt.Errorf("error fetching filters for symbol %s: %w", symbol, err)
	}
	return &f, nil
}
