package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finpulse/internal/core"
	"finpulse/internal/log"
)

// fakeStore is a mutex-guarded in-memory LedgerStore; the dashboard path
// hits it from several goroutines at once.
type fakeStore struct {
	mu        sync.Mutex
	txs       []core.Transaction
	tagged    []string
	version   int64
	listCalls int
	appendErr error
}

func (f *fakeStore) AppendTransactions(_ context.Context, txs []core.Transaction) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.txs = append(f.txs, txs...)
	f.version++
	return f.version, nil
}

func (f *fakeStore) ListTransactions(context.Context) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.txs, nil
}

func (f *fakeStore) DatasetVersion(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, nil
}

func (f *fakeStore) TagInvestmentAccount(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagged = append(f.tagged, name)
	f.version++
	return nil
}

func (f *fakeStore) UntagInvestmentAccount(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.tagged[:0]
	for _, t := range f.tagged {
		if t != name {
			kept = append(kept, t)
		}
	}
	f.tagged = kept
	f.version++
	return nil
}

func (f *fakeStore) ListInvestmentAccounts(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tagged, nil
}

func (f *fakeStore) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakePublisher struct {
	versions []int64
	imported []int
	err      error
}

func (f *fakePublisher) PublishLedgerRefresh(_ context.Context, version int64, imported int) error {
	if f.err != nil {
		return f.err
	}
	f.versions = append(f.versions, version)
	f.imported = append(f.imported, imported)
	return nil
}

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

// steadyLedger covers January through June 2024 with one salary and several
// expenses per month, comfortably over the data thresholds.
func steadyLedger() []core.Transaction {
	var txs []core.Transaction
	for m := 1; m <= 6; m++ {
		day := func(d int) time.Time {
			return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC)
		}
		txs = append(txs,
			core.Transaction{Date: day(1), Type: core.Income, Amount: 100000, Category: "Salary", Account: "HDFC"},
			core.Transaction{Date: day(3), Type: core.Expense, Amount: -30000, Category: "Rent", Account: "HDFC"},
			core.Transaction{Date: day(10), Type: core.Expense, Amount: -15000, Category: "Groceries", Account: "HDFC"},
			core.Transaction{Date: day(16), Type: core.Expense, Amount: -999, Category: "Entertainment", Subcategory: "Streaming", Note: "Netflix", Account: "HDFC"},
			core.Transaction{Date: day(20), Type: core.Transfer, Amount: 10000, FromAccount: "HDFC", ToAccount: "Vault", Note: "monthly set-aside"},
		)
	}
	return txs
}

func fixedNow() time.Time {
	return time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)
}

func sampleCSV(rows int) string {
	out := "date,type,amount,category,subcategory,note,from_account,to_account,account\n"
	for i := 0; i < rows; i++ {
		out += fmt.Sprintf("2024-01-%02d,Expense,-100,Food,,,,,HDFC\n", i+1)
	}
	return out
}
