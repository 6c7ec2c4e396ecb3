package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"klineo/models"
)

// appendCSV appends records to filename, writing header first when the file is empty
func appendCSV(filename string, header []string, records [][]string) error {
	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}
	return nil
}

// AppendSummaryToCSV appends one row per symbol of an order log summary.
func AppendSummaryToCSV(filename string, summary models.OrderLogSummary) error {
	header := []string{"Timestamp", "Symbol", "Checks", "Valid", "Rejected", "Placed", "TotalNotional"}
	records := make([][]string, 0, len(summary.Symbols))
	for _, s := range summary.Symbols {
		records = append(records, []string{
			summary.Timestamp.Format(time.RFC3339),
			s.Symbol,
			strconv.Itoa(s.Checks),
			strconv.Itoa(s.Valid),
			strconv.Itoa(s.Rejected),
			strconv.Itoa(s.Placed),
			fmt.Sprintf("%.2f", s.TotalNotional),
		})
	}
	return appendCSV(filename, header, records)
}

// AppendOrderChecksToCSV exports order log rows.
func AppendOrderChecksToCSV(filename string, checks []models.OrderCheck) error {
	header := []string{"ID", "Timestamp", "Symbol", "Side", "Type", "RequestedQty", "QuoteQty", "Quantity", "Price", "Notional", "Valid", "Error", "OrderID"}
	records := make([][]string, 0, len(checks))
	for _, c := range checks {
		records = append(records, []string{
			strconv.Itoa(c.ID),
			c.Timestamp.Format(time.RFC3339),
			c.Symbol,
			c.Side,
			c.Type,
			strconv.FormatFloat(c.RequestedQty, 'f', -1, 64),
			strconv.FormatFloat(c.QuoteQty, 'f', -1, 64),
			c.Quantity,
			c.Price,
			fmt.Sprintf("%.2f", c.Notional),
			strconv.FormatBool(c.Valid),
			c.Error,
			strconv.FormatInt(c.OrderID, 10),
		})
	}
	return appendCSV(filename, header, records)
}
