package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income   TxType = "Income"
	Expense  TxType = "Expense"
	Transfer TxType = "Transfer"
)

type (
	// TxType is the ledger-level type of a transaction as recorded at ingestion.
	TxType string

	// Transaction is a single immutable ledger record. Amount carries the native
	// currency unit; its sign is not semantically trusted beyond marking refunds,
	// so consumers work with Magnitude().
	Transaction struct {
		Date        time.Time
		Type        TxType
		Amount      float64
		Category    string
		Subcategory string
		Note        string
		FromAccount string
		ToAccount   string
		Account     string
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

// ParseDate parses an ISO-8601 date string. A trailing time component
// ("2024-01-15T10:30:00") is accepted and ignored.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// MonthKey returns the calendar-month bucket key ("2024-01") for a date.
// Lexicographic order of month keys equals chronological order.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DayKey returns the calendar-day key ("2024-01-15") for a date.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (t TxType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// Magnitude returns the absolute transaction amount. All analytical buckets are
// additive sums of magnitudes.
func (tx Transaction) Magnitude() float64 {
	return math.Abs(tx.Amount)
}

// Validate rejects records that the analytical layer cannot place. Schema
// validation happens here at the ingestion boundary, not inside the statistics.
func (tx Transaction) Validate() error {
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
		return ErrInvalidAmount
	}
	if tx.Type != Transfer && strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
