package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"finpulse/internal/ingest"
	"finpulse/internal/log"
)

// ErrBadBatch marks import failures caused by the submitted data rather than
// by the system; handlers map it to a client error.
var ErrBadBatch = errors.New("invalid transaction batch")

// ImportResult reports one accepted batch.
type ImportResult struct {
	Imported       int   `json:"imported"`
	DatasetVersion int64 `json:"dataset_version"`
}

// ImportService handles all ledger mutations: CSV batches and investment
// account tags. Writes go to local storage first; the refresh message is
// best-effort and never fails the request.
type ImportService struct {
	store     LedgerStore
	publisher RefreshPublisher
	logger    *log.Logger
}

func NewImportService(store LedgerStore, publisher RefreshPublisher, logger *log.Logger) *ImportService {
	return &ImportService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentImport),
	}
}

// ImportCSV validates and stores a full CSV batch. The batch is atomic: one
// malformed row rejects the whole import.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	txs, err := ingest.ReadCSV(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrBadBatch, err)
	}

	version, err := s.store.AppendTransactions(ctx, txs)
	if err != nil {
		return ImportResult{}, fmt.Errorf("store batch: %w", err)
	}

	s.publishRefresh(ctx, version, len(txs))

	s.logger.InfoContext(ctx, "Imported transaction batch",
		log.FieldTransactions, len(txs),
		log.FieldDatasetVersion, version)
	return ImportResult{Imported: len(txs), DatasetVersion: version}, nil
}

// TagInvestmentAccount marks an account as investment and notifies workers,
// since tagging changes how transfers are classified.
func (s *ImportService) TagInvestmentAccount(ctx context.Context, name string) error {
	if err := s.store.TagInvestmentAccount(ctx, name); err != nil {
		return err
	}
	version, err := s.store.DatasetVersion(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read dataset version after tag", log.FieldError, err)
		return nil
	}
	s.publishRefresh(ctx, version, 0)
	return nil
}

// UntagInvestmentAccount removes an account tag.
func (s *ImportService) UntagInvestmentAccount(ctx context.Context, name string) error {
	if err := s.store.UntagInvestmentAccount(ctx, name); err != nil {
		return err
	}
	version, err := s.store.DatasetVersion(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read dataset version after untag", log.FieldError, err)
		return nil
	}
	s.publishRefresh(ctx, version, 0)
	return nil
}

// ListInvestmentAccounts returns the currently tagged account names.
func (s *ImportService) ListInvestmentAccounts(ctx context.Context) ([]string, error) {
	return s.store.ListInvestmentAccounts(ctx)
}

func (s *ImportService) publishRefresh(ctx context.Context, version int64, imported int) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, skipping refresh message")
		return
	}
	if err := s.publisher.PublishLedgerRefresh(ctx, version, imported); err != nil {
		// Local write already succeeded; workers catch up on their next tick.
		s.logger.ErrorContext(ctx, "Failed to publish refresh message",
			log.FieldError, err,
			log.FieldDatasetVersion, version)
	}
}
