package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketplace-analyzer/models"
)

var csvHeader = []string{
	"session_id", "keyword", "key", "title", "price", "secondary_text", "detected_at",
	"category", "tier", "score", "savings_percent", "rationale", "suspicious", "scam_reasons",
}

// CSVWriter exports scored listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing. Unscored listings leave the analysis
// columns empty.
func (c *CSVWriter) Write(rows []models.ScoredListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range rows {
		if err := c.writer.Write(csvRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func csvRow(r models.ScoredListing) []string {
	row := []string{
		r.SessionID,
		r.Keyword,
		r.Key,
		r.Record.Title,
		strconv.FormatFloat(r.Record.Price, 'f', 2, 64),
		r.Record.SecondaryText,
		r.Record.DetectedAt.Format(time.RFC3339),
		"", "", "", "", "",
		strconv.FormatBool(r.Scam.Suspicious),
		strings.Join(r.Scam.Reasons, "; "),
	}
	if res := r.Result; res != nil {
		row[7] = string(res.Category)
		row[8] = string(res.Tier)
		row[9] = strconv.FormatFloat(res.Score, 'f', 2, 64)
		row[10] = strconv.FormatFloat(res.SavingsPercent, 'f', 2, 64)
		row[11] = res.Rationale
	}
	return row
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
