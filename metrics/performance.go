package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"klineo/logger"
	"klineo/models"
	"klineo/utils"
)

// Summarize aggregates the order log per symbol
func Summarize(db *sql.DB) (models.OrderLogSummary, error) {
	query := `
		SELECT
			symbol,
			COUNT(*),
			COALESCE(SUM(CASE WHEN valid = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN order_id > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN valid = 1 THEN notional ELSE 0 END), 0)
		FROM order_checks
		GROUP BY symbol
		ORDER BY symbol`
	rows, err := db.Query(query)
	if err != nil {
		return models.OrderLogSummary{}, fmt.Errorf("error querying order checks: %w", err)
	}
	defer rows.Close()

	summary := models.OrderLogSummary{Timestamp: time.Now().UTC()}
	for rows.Next() {
		var s models.SymbolSummary
		if err := rows.Scan(&s.Symbol, &s.Checks, &s.Valid, &s.Placed, &s.TotalNotional); err != nil {
			return models.OrderLogSummary{}, fmt.Errorf("error scanning order checks: %w", err)
		}
		s.Rejected = s.Checks - s.Valid
		summary.Symbols = append(summary.Symbols, s)
	}
	return summary, rows.Err()
}

var ErrInvalidInterval = errors.New("monitor interval must be positive")

// MonitorOrderLog logs a summary every interval and appends it to csvPath when set.
// It blocks until ctx is done.
func MonitorOrderLog(ctx context.Context, db *sql.DB, interval time.Duration, csvPath string) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summary, err := Summarize(db)
			if err != nil {
				logger.Errorf("Failed to summarize order log: %v", err)
				continue
			}

			if csvPath != "" {
				if err := utils.AppendSummaryToCSV(csvPath, summary); err != nil {
					logger.Errorf("Failed to append summary to CSV: %v", err)
				}
			}

			logger.Infof("Order log summary:")
			for _, s := range summary.Symbols {
				logger.Infof("%s: checks=%d valid=%d rejected=%d placed=%d notional=%.2f",
					s.Symbol, s.Checks, s.Valid, s.Rejected, s.Placed, s.TotalNotional)
			}

		case <-ctx.Done():
			return nil
		}
	}
}
