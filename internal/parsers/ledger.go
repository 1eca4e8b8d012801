// Package parsers reads contract ledger CSV files into raw records.
//
// The parser is deliberately dumb: it resolves header aliases, checks
// encoding, and emits one string-keyed RawRecord per row. All semantic
// interpretation — dates, amounts, movement types, sentinels — belongs to
// the normalizer, the sole translation boundary into the canonical model.
//
// Parsing is fail-soft at the row level: a malformed row is recorded in
// the parse statistics and skipped, it does not abort the file.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"revenue-analytics-service/internal/models"
	apperrors "revenue-analytics-service/pkg/errors"
	"revenue-analytics-service/pkg/logger"
)

// ParseStats summarizes one parse run.
type ParseStats struct {
	RowsRead    int `json:"rows_read"`
	RowsParsed  int `json:"rows_parsed"`
	RowsSkipped int `json:"rows_skipped"`
}

// LedgerParser reads contract ledger CSV files.
type LedgerParser struct {
	config *LedgerConfig
	log    logger.Logger
}

// NewLedgerParser creates a ledger parser. A nil config uses defaults.
func NewLedgerParser(config *LedgerConfig) (*LedgerParser, error) {
	if config == nil {
		config = DefaultLedgerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "ledger parser", err)
	}

	return &LedgerParser{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("parsers"),
	}, nil
}

// ParseFile reads and parses a ledger CSV file from disk.
func (p *LedgerParser) ParseFile(path string) ([]models.RawRecord, *ParseStats, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.FileError(apperrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, apperrors.FileError(apperrors.CodeFilePermission, path, err)
		}
		return nil, nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, err)
	}
	defer file.Close()

	records, stats, err := p.Parse(file, path)
	if err != nil {
		return nil, nil, err
	}
	return records, stats, nil
}

// Parse reads ledger rows from a reader. The name is used in error
// messages and logging only.
func (p *LedgerParser) Parse(r io.Reader, name string) ([]models.RawRecord, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.TrimLeadingSpace = true
	// Spreadsheet exports routinely carry ragged trailing columns.
	reader.FieldsPerRecord = -1

	stats := &ParseStats{}

	header, err := p.readHeader(reader, name)
	if err != nil {
		return nil, nil, err
	}

	var records []models.RawRecord
	var tracker *logger.ProgressTracker
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.RowsRead++
			stats.RowsSkipped++
			p.log.WithError(err).WithFields(logger.Fields{
				"file": name,
				"line": line,
			}).Warn("skipping malformed ledger row")
			continue
		}

		stats.RowsRead++
		if isEmptyRow(row) {
			stats.RowsSkipped++
			continue
		}

		if !validUTF8Row(row) {
			stats.RowsSkipped++
			p.log.WithFields(logger.Fields{
				"file": name,
				"line": line,
			}).Warn("skipping ledger row with invalid UTF-8")
			continue
		}

		records = append(records, rowToRecord(header, row))
		stats.RowsParsed++

		if stats.RowsRead == 1000 {
			// Only large files are worth progress noise.
			tracker = logger.NewProgressTracker(logger.ProgressConfig{
				Operation: fmt.Sprintf("parse %s", name),
				Logger:    p.log,
			})
		}
		if tracker != nil {
			tracker.Update(int64(stats.RowsRead))
		}
	}

	if tracker != nil {
		tracker.Complete()
	}

	p.log.WithFields(logger.Fields{
		"file":    name,
		"parsed":  stats.RowsParsed,
		"skipped": stats.RowsSkipped,
	}).Info("ledger parsed")

	return records, stats, nil
}

// readHeader consumes and resolves the header row, verifying required
// columns. Without a header, the configured required columns double as
// positional column names.
func (p *LedgerParser) readHeader(reader *csv.Reader, name string) ([]string, error) {
	if !p.config.HasHeader {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "ledger parser",
			fmt.Errorf("headerless ledgers are not supported"))
	}

	raw, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, name, 1, "", "",
			fmt.Errorf("ledger file is empty"))
	}
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, name, 1, "", "", err)
	}

	header := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		header[i] = p.config.ResolveColumn(h)
		seen[header[i]] = true
	}

	for _, required := range p.config.RequiredColumns {
		if !seen[required] {
			return nil, apperrors.ParseError(apperrors.CodeMissingColumn, name, 1, required, "", nil)
		}
	}

	return header, nil
}

func rowToRecord(header []string, row []string) models.RawRecord {
	rec := make(models.RawRecord, len(header))
	for i, col := range header {
		if i < len(row) {
			rec[col] = row[i]
		}
	}
	return rec
}

func isEmptyRow(row []string) bool {
	for _, field := range row {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func validUTF8Row(row []string) bool {
	for _, field := range row {
		if !utf8.ValidString(field) {
			return false
		}
	}
	return true
}
