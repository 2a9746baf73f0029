package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finpulse/internal/analytics"
	"finpulse/internal/cache"
	"finpulse/internal/core"
	"finpulse/internal/log"
)

// RecurringReport bundles detected patterns with the fixed-cost estimate.
type RecurringReport struct {
	Patterns          []analytics.RecurringPattern
	MonthlyFixedCosts float64
}

// DashboardData is the combined payload for the dashboard endpoint. The OK
// flags distinguish "not enough history yet" from real results.
type DashboardData struct {
	Overview    analytics.MonthlySeries
	Health      analytics.HealthReport
	HealthOK    bool
	Recurring   RecurringReport
	Forecast    analytics.ForecastResult
	ForecastOK  bool
	Correlation analytics.CorrelationMatrix
}

type healthEntry struct {
	Report analytics.HealthReport
	OK     bool
}

type forecastEntry struct {
	Result analytics.ForecastResult
	OK     bool
}

// AnalyticsService runs the derivation pipeline over the stored ledger. Every
// result is recomputed from the full transaction list; memoization happens
// here, keyed on the dataset version, never inside the engine.
type AnalyticsService struct {
	store      LedgerStore
	classifier *analytics.Classifier
	preset     analytics.Preset
	horizon    int
	topN       int
	logger     *log.Logger
	now        func() time.Time

	overviewCache    cache.Cache[analytics.MonthlySeries]
	healthCache      cache.Cache[healthEntry]
	recurringCache   cache.Cache[RecurringReport]
	forecastCache    cache.Cache[forecastEntry]
	correlationCache cache.Cache[analytics.CorrelationMatrix]
}

// AnalyticsOptions carries the engine tuning from configuration.
type AnalyticsOptions struct {
	Preset          string
	ForecastHorizon int
	CorrelationTopN int
	CacheSize       int
	CacheTTL        time.Duration
}

func NewAnalyticsService(store LedgerStore, opts AnalyticsOptions, logger *log.Logger) *AnalyticsService {
	if opts.ForecastHorizon <= 0 {
		opts.ForecastHorizon = analytics.DefaultForecastHorizon
	}
	if opts.CorrelationTopN <= 0 {
		opts.CorrelationTopN = analytics.DefaultCorrelationTopN
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	return &AnalyticsService{
		store:      store,
		classifier: analytics.NewClassifier(analytics.DefaultVocabulary()),
		preset:     analytics.Preset(opts.Preset),
		horizon:    opts.ForecastHorizon,
		topN:       opts.CorrelationTopN,
		logger:     logger.WithComponent(log.ComponentAnalytics),
		now:        time.Now,

		overviewCache:    cache.NewLRUCache[analytics.MonthlySeries](opts.CacheSize, opts.CacheTTL),
		healthCache:      cache.NewLRUCache[healthEntry](opts.CacheSize, opts.CacheTTL),
		recurringCache:   cache.NewLRUCache[RecurringReport](opts.CacheSize, opts.CacheTTL),
		forecastCache:    cache.NewLRUCache[forecastEntry](opts.CacheSize, opts.CacheTTL),
		correlationCache: cache.NewLRUCache[analytics.CorrelationMatrix](opts.CacheSize, opts.CacheTTL),
	}
}

// RegisterCaches adds the service's memoization caches to a cleanup manager.
func (s *AnalyticsService) RegisterCaches(m *cache.Manager) {
	for _, c := range []any{
		s.overviewCache,
		s.healthCache,
		s.recurringCache,
		s.forecastCache,
		s.correlationCache,
	} {
		if cleaner, ok := c.(cache.Cleaner); ok {
			m.Register(cleaner)
		}
	}
}

// Overview returns the aggregated month series, empty when the ledger does
// not yet meet the data thresholds.
func (s *AnalyticsService) Overview(ctx context.Context) (analytics.MonthlySeries, error) {
	key, err := s.versionKey(ctx)
	if err != nil {
		return analytics.MonthlySeries{}, err
	}
	if series, ok := s.overviewCache.Get(key); ok {
		return series, nil
	}

	txs, isInvestment, err := s.loadLedger(ctx)
	if err != nil {
		return analytics.MonthlySeries{}, err
	}

	series := s.classifier.Aggregate(txs, isInvestment, s.now())
	s.overviewCache.Set(key, series)
	s.logger.DebugContext(ctx, "Computed monthly overview",
		log.FieldTransactions, len(txs),
		log.FieldMonths, len(series.Months))
	return series, nil
}

// Health scores the aggregated series. An empty preset falls back to the
// configured one; an unknown preset falls back to four_pillar inside the
// scorer. The bool is false when there is not enough history to score.
func (s *AnalyticsService) Health(ctx context.Context, preset string) (analytics.HealthReport, bool, error) {
	p := analytics.Preset(strings.TrimSpace(preset))
	if p == "" {
		p = s.preset
	}

	key, err := s.versionKey(ctx)
	if err != nil {
		return analytics.HealthReport{}, false, err
	}
	key = fmt.Sprintf("%s|%s", key, p)
	if entry, ok := s.healthCache.Get(key); ok {
		return entry.Report, entry.OK, nil
	}

	series, err := s.Overview(ctx)
	if err != nil {
		return analytics.HealthReport{}, false, err
	}

	report, ok := analytics.NewScorer(p).Score(series)
	s.healthCache.Set(key, healthEntry{Report: report, OK: ok})
	s.logger.DebugContext(ctx, "Computed health report",
		log.FieldPreset, string(p),
		"scored", ok)
	return report, ok, nil
}

// Recurring detects repeating payments over the full ledger.
func (s *AnalyticsService) Recurring(ctx context.Context) (RecurringReport, error) {
	key, err := s.versionKey(ctx)
	if err != nil {
		return RecurringReport{}, err
	}
	if report, ok := s.recurringCache.Get(key); ok {
		return report, nil
	}

	txs, _, err := s.loadLedger(ctx)
	if err != nil {
		return RecurringReport{}, err
	}

	patterns := analytics.Detect(txs, s.now())
	report := RecurringReport{
		Patterns:          patterns,
		MonthlyFixedCosts: analytics.MonthlyFixedCosts(patterns),
	}
	s.recurringCache.Set(key, report)
	s.logger.DebugContext(ctx, "Detected recurring patterns",
		log.FieldTransactions, len(txs),
		log.FieldPatterns, len(patterns))
	return report, nil
}

// Forecast projects the cash-flow trend. The bool is false when fewer than
// three full months of history are available.
func (s *AnalyticsService) Forecast(ctx context.Context) (analytics.ForecastResult, bool, error) {
	key, err := s.versionKey(ctx)
	if err != nil {
		return analytics.ForecastResult{}, false, err
	}
	if entry, ok := s.forecastCache.Get(key); ok {
		return entry.Result, entry.OK, nil
	}

	txs, isInvestment, err := s.loadLedger(ctx)
	if err != nil {
		return analytics.ForecastResult{}, false, err
	}

	// The forecaster consumes the raw month series and applies its own
	// current-month cutoff, independent of the aggregator's.
	series := s.classifier.GroupByMonth(txs, isInvestment)
	result, ok := analytics.Forecast(series, s.horizon, s.now())
	s.forecastCache.Set(key, forecastEntry{Result: result, OK: ok})
	return result, ok, nil
}

// Correlation computes the pairwise category spending correlation matrix.
func (s *AnalyticsService) Correlation(ctx context.Context) (analytics.CorrelationMatrix, error) {
	key, err := s.versionKey(ctx)
	if err != nil {
		return analytics.CorrelationMatrix{}, err
	}
	if matrix, ok := s.correlationCache.Get(key); ok {
		return matrix, nil
	}

	txs, _, err := s.loadLedger(ctx)
	if err != nil {
		return analytics.CorrelationMatrix{}, err
	}

	matrix := analytics.Correlate(txs, s.topN)
	s.correlationCache.Set(key, matrix)
	return matrix, nil
}

// Dashboard assembles all five analytics sections concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context) (DashboardData, error) {
	var data DashboardData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.Overview, err = s.Overview(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Health, data.HealthOK, err = s.Health(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		data.Recurring, err = s.Recurring(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Forecast, data.ForecastOK, err = s.Forecast(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data.Correlation, err = s.Correlation(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardData{}, err
	}
	return data, nil
}

func (s *AnalyticsService) versionKey(ctx context.Context) (string, error) {
	version, err := s.store.DatasetVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("read dataset version: %w", err)
	}
	return fmt.Sprintf("v%d", version), nil
}

// loadLedger fetches the full transaction list and builds the user-tag
// predicate handed to the classifier.
func (s *AnalyticsService) loadLedger(ctx context.Context) ([]core.Transaction, analytics.AccountPredicate, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}

	tagged, err := s.store.ListInvestmentAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list investment accounts: %w", err)
	}

	set := make(map[string]struct{}, len(tagged))
	for _, name := range tagged {
		set[strings.ToLower(name)] = struct{}{}
	}
	isInvestment := func(account string) bool {
		_, ok := set[strings.ToLower(account)]
		return ok
	}
	return txs, isInvestment, nil
}
