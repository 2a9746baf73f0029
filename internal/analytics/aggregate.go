package analytics

import (
	"sort"
	"time"

	"finpulse/internal/core"
)

const (
	// minTransactions and minQualifyingMonths gate the statistics: below either
	// threshold the aggregate (and everything downstream of it) reports
	// insufficient data instead of producing noisy rates.
	minTransactions    = 10
	minQualifyingMonths = 3

	// aggregateCutoffDay drops the current calendar month from long-window
	// statistics while it is still young. The forecaster applies its own,
	// looser forecastCutoffDay; the two are tuned independently and must not
	// be collapsed into one constant.
	aggregateCutoffDay = 15
)

type (
	// MonthlyBucket accumulates classified totals for one calendar month. All
	// sums are magnitudes and only grow during the aggregation pass; the
	// bucket is never mutated once the pass completes.
	MonthlyBucket struct {
		Income        float64
		Expense       float64
		Debt          float64
		InvestmentIn  float64
		InvestmentOut float64
		Discretionary float64
		Essential     float64
		Categories    map[string]float64
	}

	// MonthlySeries is an ordered sequence of month keys ("2024-01") with
	// their buckets. Months are sorted lexicographically, which for this key
	// format is chronological.
	MonthlySeries struct {
		Months  []string
		Buckets map[string]*MonthlyBucket
	}
)

// OK reports whether the series carries any data. An empty series is the
// explicit insufficient-data result, not an error.
func (s MonthlySeries) OK() bool {
	return len(s.Months) > 0
}

func (s MonthlySeries) Bucket(month string) *MonthlyBucket {
	return s.Buckets[month]
}

// NetSavings returns income minus expense for one month bucket.
func (b *MonthlyBucket) NetSavings() float64 {
	return b.Income - b.Expense
}

// NetInvestment returns inflow minus outflow for one month bucket.
func (b *MonthlyBucket) NetInvestment() float64 {
	return b.InvestmentIn - b.InvestmentOut
}

// GroupByMonth folds every transaction into its calendar-month bucket without
// any exclusion policy. The forecaster consumes this raw series and applies
// its own current-month rule.
func (c *Classifier) GroupByMonth(txs []core.Transaction, isInvestment AccountPredicate) MonthlySeries {
	buckets := make(map[string]*MonthlyBucket)
	for _, tx := range txs {
		key := core.MonthKey(tx.Date)
		b, ok := buckets[key]
		if !ok {
			b = &MonthlyBucket{Categories: make(map[string]float64)}
			buckets[key] = b
		}
		c.apply(b, tx, isInvestment)
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	return MonthlySeries{Months: months, Buckets: buckets}
}

// Aggregate produces the month series used by the health scorer. It drops the
// current calendar month when fewer than aggregateCutoffDay days have elapsed
// in it (a partial month would bias every monthly-rate statistic), then
// enforces the minimum-data preconditions.
func (c *Classifier) Aggregate(txs []core.Transaction, isInvestment AccountPredicate, now time.Time) MonthlySeries {
	if len(txs) < minTransactions {
		return MonthlySeries{}
	}

	series := c.GroupByMonth(txs, isInvestment)

	if now.Day() < aggregateCutoffDay {
		current := core.MonthKey(now)
		if _, ok := series.Buckets[current]; ok {
			delete(series.Buckets, current)
			months := series.Months[:0]
			for _, m := range series.Months {
				if m != current {
					months = append(months, m)
				}
			}
			series.Months = months
		}
	}

	if len(series.Months) < minQualifyingMonths {
		return MonthlySeries{}
	}
	return series
}

func (c *Classifier) apply(b *MonthlyBucket, tx core.Transaction, isInvestment AccountPredicate) {
	amount := tx.Magnitude()
	bucket, tags := c.Classify(tx, isInvestment)

	switch bucket {
	case BucketIncome:
		b.Income += amount
	case BucketInvestmentIn:
		b.InvestmentIn += amount
	case BucketInvestmentOut:
		b.InvestmentOut += amount
	case BucketExpense:
		b.Expense += amount
		b.Categories[tx.Category] += amount
		if tags.Has(TagDebt) {
			b.Debt += amount
		}
		if tags.Has(TagDiscretionary) {
			b.Discretionary += amount
		}
		if tags.Has(TagEssential) {
			b.Essential += amount
		}
	}
}
