package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finpulse/internal/analytics"
	"finpulse/internal/log"
)

// UpcomingPayment is one recurring payment expected inside the digest window.
type UpcomingPayment struct {
	Signature    string              `json:"signature"`
	Category     string              `json:"category"`
	Subcategory  string              `json:"subcategory,omitempty"`
	AvgAmount    float64             `json:"avg_amount"`
	Frequency    analytics.Frequency `json:"frequency"`
	ExpectedDate time.Time           `json:"expected_date"`
	DaysUntil    int                 `json:"days_until"`
}

// DigestService produces the upcoming-bills digest consumed by the worker.
type DigestService struct {
	store      LedgerStore
	windowDays int
	logger     *log.Logger
	now        func() time.Time
}

func NewDigestService(store LedgerStore, windowDays int, logger *log.Logger) *DigestService {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &DigestService{
		store:      store,
		windowDays: windowDays,
		logger:     logger.WithComponent(log.ComponentWorker),
		now:        time.Now,
	}
}

// Run detects recurring payments over the current ledger and returns the ones
// expected within the window, soonest first.
func (s *DigestService) Run(ctx context.Context) ([]UpcomingPayment, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	now := s.now()
	patterns := analytics.Detect(txs, now)
	upcoming := UpcomingPayments(patterns, now, s.windowDays)

	s.logger.InfoContext(ctx, "Computed upcoming payments digest",
		log.FieldTransactions, len(txs),
		log.FieldPatterns, len(patterns),
		"upcoming", len(upcoming),
		"window_days", s.windowDays)

	for _, p := range upcoming {
		s.logger.InfoContext(ctx, "Upcoming payment",
			"signature", p.Signature,
			"amount", p.AvgAmount,
			"frequency", string(p.Frequency),
			"expected_date", p.ExpectedDate.Format("2006-01-02"),
			"days_until", p.DaysUntil)
	}
	return upcoming, nil
}

// UpcomingPayments filters active patterns down to those due within
// windowDays of now. Patterns already past their expected date are skipped;
// they surface again after the next detection run.
func UpcomingPayments(patterns []analytics.RecurringPattern, now time.Time, windowDays int) []UpcomingPayment {
	day := 24 * time.Hour
	today := now.Truncate(day)

	var upcoming []UpcomingPayment
	for _, p := range patterns {
		if !p.IsActive {
			continue
		}
		days := int(p.ExpectedNextDate.Truncate(day).Sub(today) / day)
		if days < 0 || days > windowDays {
			continue
		}
		upcoming = append(upcoming, UpcomingPayment{
			Signature:    p.Signature,
			Category:     p.Category,
			Subcategory:  p.Subcategory,
			AvgAmount:    p.AvgAmount,
			Frequency:    p.Frequency,
			ExpectedDate: p.ExpectedNextDate,
			DaysUntil:    days,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntil < upcoming[j].DaysUntil
	})
	return upcoming
}
