// Package ingest parses external ledger exports into domain transactions.
// Schema validation lives here at the boundary: records that reach the
// analytical layer are already well formed.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"finpulse/internal/core"
)

// Columns of a ledger CSV export, in order.
var expectedHeader = []string{
	"date", "type", "amount", "category", "subcategory",
	"note", "from_account", "to_account", "account",
}

var ErrEmptyInput = errors.New("empty input")

// ReadCSV parses a full ledger export. The first row must be the header; any
// malformed row aborts the import with its line number so the caller can fix
// the export instead of silently analyzing partial data.
func ReadCSV(r io.Reader) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var txs []core.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		tx, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return nil, ErrEmptyInput
	}
	return txs, nil
}

func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return fmt.Errorf("header has %d columns, want %d", len(header), len(expectedHeader))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), expectedHeader[i]) {
			return fmt.Errorf("header column %d is %q, want %q", i+1, col, expectedHeader[i])
		}
	}
	return nil
}

func parseRecord(record []string) (core.Transaction, error) {
	if len(record) != len(expectedHeader) {
		return core.Transaction{}, fmt.Errorf("row has %d columns, want %d", len(record), len(expectedHeader))
	}

	date, err := core.ParseDate(record[0])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", record[0], err)
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", record[2], core.ErrInvalidAmount)
	}

	tx := core.Transaction{
		Date:        date,
		Type:        core.TxType(strings.TrimSpace(record[1])),
		Amount:      amount,
		Category:    strings.TrimSpace(record[3]),
		Subcategory: strings.TrimSpace(record[4]),
		Note:        strings.TrimSpace(record[5]),
		FromAccount: strings.TrimSpace(record[6]),
		ToAccount:   strings.TrimSpace(record[7]),
		Account:     strings.TrimSpace(record[8]),
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}
