package services

import (
	"context"

	"finpulse/internal/core"
)

// LedgerStore is the storage port the services depend on. Satisfied by
// storage.SQLiteRepository; tests use in-memory fakes.
type LedgerStore interface {
	AppendTransactions(ctx context.Context, txs []core.Transaction) (int64, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	DatasetVersion(ctx context.Context) (int64, error)
	TagInvestmentAccount(ctx context.Context, name string) error
	UntagInvestmentAccount(ctx context.Context, name string) error
	ListInvestmentAccounts(ctx context.Context) ([]string, error)
}

// RefreshPublisher notifies downstream workers that the dataset changed.
// Satisfied by amqp.Client; nil disables publishing.
type RefreshPublisher interface {
	PublishLedgerRefresh(ctx context.Context, version int64, imported int) error
}
