package analytics

import (
	"math"
	"testing"

	"finpulse/internal/core"
)

func noted(t *testing.T, date, note string, amount float64) core.Transaction {
	t.Helper()
	tx := expense(t, date, "Entertainment", amount)
	tx.Note = note
	return tx
}

func TestDetectMonthlySubscription(t *testing.T) {
	txs := []core.Transaction{
		noted(t, "2024-01-15", "Netflix Subscription", 999),
		noted(t, "2024-02-14", "Netflix Subscription", 999),
		noted(t, "2024-03-16", "Netflix Subscription", 999),
	}
	patterns := Detect(txs, day(t, "2024-04-01"))

	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	p := patterns[0]
	if p.Frequency != FreqMonthly {
		t.Errorf("frequency = %v, want monthly", p.Frequency)
	}
	if p.AvgAmount != 999 {
		t.Errorf("avgAmount = %v, want 999", p.AvgAmount)
	}
	if p.Occurrences != 3 {
		t.Errorf("occurrences = %v, want 3", p.Occurrences)
	}
	if !p.IsActive {
		t.Error("pattern should be active 16 days after last charge")
	}
	if !p.ExpectedNextDate.After(p.LastDate) {
		t.Error("expectedNextDate must be after lastDate")
	}
	if got := core.DayKey(p.ExpectedNextDate); got != "2024-04-16" {
		t.Errorf("expectedNextDate = %s, want 2024-04-16", got)
	}
}

func TestDetectGroupsByCategoryAndAmountBucket(t *testing.T) {
	// Short notes fall through to category|subcategory|amount-bucket grouping;
	// the two distinct amounts must not merge into one pattern.
	var txs []core.Transaction
	for _, d := range []string{"2024-01-10", "2024-02-09", "2024-03-11"} {
		tx := expense(t, d, "Utilities", 1480)
		tx.Subcategory = "Power"
		txs = append(txs, tx)
	}
	for _, d := range []string{"2024-01-20", "2024-02-19", "2024-03-21"} {
		tx := expense(t, d, "Utilities", 4020)
		tx.Subcategory = "Power"
		txs = append(txs, tx)
	}

	patterns := Detect(txs, day(t, "2024-04-01"))
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d: %+v", len(patterns), patterns)
	}
	// Sorted by average amount descending.
	if patterns[0].AvgAmount < patterns[1].AvgAmount {
		t.Error("patterns not sorted by avgAmount descending")
	}
}

func TestDetectRejectsIrregularTiming(t *testing.T) {
	txs := []core.Transaction{
		noted(t, "2024-01-01", "Gym Membership", 500),
		noted(t, "2024-01-11", "Gym Membership", 500),
		noted(t, "2024-01-21", "Gym Membership", 500),
	}
	// Ten-day cadence falls outside every frequency window.
	if patterns := Detect(txs, day(t, "2024-02-01")); len(patterns) != 0 {
		t.Errorf("expected no patterns, got %+v", patterns)
	}
}

func TestDetectRejectsInconsistentAmounts(t *testing.T) {
	txs := []core.Transaction{
		noted(t, "2024-01-15", "Grocery Run", 500),
		noted(t, "2024-02-15", "Grocery Run", 5000),
		noted(t, "2024-03-15", "Grocery Run", 90),
		noted(t, "2024-04-15", "Grocery Run", 12000),
	}
	if patterns := Detect(txs, day(t, "2024-05-01")); len(patterns) != 0 {
		t.Errorf("expected no patterns for wildly varying amounts, got %+v", patterns)
	}
}

func TestDetectQuarterlyAndStale(t *testing.T) {
	txs := []core.Transaction{
		noted(t, "2023-01-10", "Car Insurance Premium", 6000),
		noted(t, "2023-04-12", "Car Insurance Premium", 6000),
		noted(t, "2023-07-09", "Car Insurance Premium", 6000),
	}

	patterns := Detect(txs, day(t, "2023-08-01"))
	if len(patterns) != 1 || patterns[0].Frequency != FreqQuarterly {
		t.Fatalf("expected one quarterly pattern, got %+v", patterns)
	}
	if !patterns[0].IsActive {
		t.Error("quarterly pattern should still be active after 23 days")
	}

	// Quiet for longer than the 120-day staleness threshold.
	patterns = Detect(txs, day(t, "2023-12-20"))
	if patterns[0].IsActive {
		t.Error("quarterly pattern should be stale after 164 days")
	}
}

func TestDetectYearly(t *testing.T) {
	txs := []core.Transaction{
		noted(t, "2022-06-01", "Domain Renewal", 1200),
		noted(t, "2023-06-03", "Domain Renewal", 1200),
		noted(t, "2024-05-30", "Domain Renewal", 1300),
	}
	patterns := Detect(txs, day(t, "2024-07-01"))
	if len(patterns) != 1 || patterns[0].Frequency != FreqYearly {
		t.Fatalf("expected one yearly pattern, got %+v", patterns)
	}
}

func TestDetectIgnoresNonExpenses(t *testing.T) {
	txs := []core.Transaction{
		income(t, "2024-01-05", 50000),
		income(t, "2024-02-05", 50000),
		income(t, "2024-03-05", 50000),
	}
	if patterns := Detect(txs, day(t, "2024-04-01")); len(patterns) != 0 {
		t.Errorf("income must not form recurring expense patterns, got %+v", patterns)
	}
}

func TestMonthlyFixedCosts(t *testing.T) {
	patterns := []RecurringPattern{
		{Frequency: FreqMonthly, AvgAmount: 999, IsActive: true},
		{Frequency: FreqQuarterly, AvgAmount: 6000, IsActive: true},
		{Frequency: FreqYearly, AvgAmount: 1200, IsActive: true},
		{Frequency: FreqMonthly, AvgAmount: 5000, IsActive: false}, // stale, excluded
	}
	got := MonthlyFixedCosts(patterns)
	want := 999.0 + 2000.0 + 100.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("MonthlyFixedCosts = %v, want %v", got, want)
	}
}
