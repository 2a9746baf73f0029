package analytics

import (
	"testing"
	"time"

	"finpulse/internal/core"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func expense(t *testing.T, date, category string, amount float64) core.Transaction {
	t.Helper()
	return core.Transaction{
		Date:     day(t, date),
		Type:     core.Expense,
		Amount:   amount,
		Category: category,
		Account:  "Checking",
	}
}

func income(t *testing.T, date string, amount float64) core.Transaction {
	t.Helper()
	return core.Transaction{
		Date:     day(t, date),
		Type:     core.Income,
		Amount:   amount,
		Category: "Salary",
		Account:  "Checking",
	}
}

func transfer(t *testing.T, date, from, to string, amount float64) core.Transaction {
	t.Helper()
	return core.Transaction{
		Date:        day(t, date),
		Type:        core.Transfer,
		Amount:      amount,
		FromAccount: from,
		ToAccount:   to,
		Account:     from,
	}
}

func noInvestmentAccounts(string) bool { return false }
