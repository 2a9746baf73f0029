package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"finpulse/internal/core"
)

const (
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqYearly    Frequency = "yearly"
)

const (
	// minNoteLength gates the merchant-note grouping pass; shorter notes fall
	// through to category+amount grouping.
	minNoteLength = 3

	// amountBucketSize separates distinct recurring amounts that share a
	// category ("category|sub|1500" vs "category|sub|4000").
	amountBucketSize = 100

	// Interval-CV tolerances: fewer samples get the looser bound since their
	// variance estimate is noisier.
	intervalCVSmall = 0.6 // occurrence count <= 3
	intervalCVLarge = 0.4

	// amountTolerance and amountQuorum: at least half of the occurrences must
	// lie within 30% of the group mean.
	amountTolerance = 0.3
	amountQuorum    = 0.5
)

type (
	// Frequency is the detected cadence of a recurring payment.
	Frequency string

	// RecurringPattern is one detected repeating payment. Patterns are derived
	// per analysis run from the full transaction list and never updated
	// incrementally.
	RecurringPattern struct {
		Signature        string
		Category         string
		Subcategory      string
		AvgAmount        float64
		Frequency        Frequency
		LastDate         time.Time
		Occurrences      int
		TotalSpent       float64
		IsActive         bool
		ExpectedNextDate time.Time
	}

	// frequencyClass bundles the tuning for one cadence: the accepted
	// mean-interval window, the step to the next expected date and the
	// staleness threshold (roughly 1.5x the period) for the active flag.
	frequencyClass struct {
		freq          Frequency
		minInterval   float64
		maxInterval   float64
		nextDate      func(t time.Time) time.Time
		stalenessDays float64
	}
)

var frequencyClasses = []frequencyClass{
	{FreqMonthly, 25, 38, func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }, 45},
	{FreqQuarterly, 80, 105, func(t time.Time) time.Time { return t.AddDate(0, 3, 0) }, 120},
	{FreqYearly, 345, 385, func(t time.Time) time.Time { return t.AddDate(1, 0, 0) }, 400},
}

// Detect finds recurring payments among the expense transactions, sorted by
// average amount descending. Candidates that fail frequency classification or
// consistency checks are silently dropped, not reported as errors.
func Detect(txs []core.Transaction, now time.Time) []RecurringPattern {
	groups := make(map[string][]core.Transaction)
	noteKeys := make(map[string]struct{})

	// Pass 1: group by merchant note.
	var unnoted []core.Transaction
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		note := strings.TrimSpace(tx.Note)
		if len(note) > minNoteLength {
			key := strings.ToLower(note)
			groups[key] = append(groups[key], tx)
			noteKeys[key] = struct{}{}
		} else {
			unnoted = append(unnoted, tx)
		}
	}

	// Pass 2: group the rest by category+subcategory+amount bucket, skipping
	// any key already claimed by the note pass.
	for _, tx := range unnoted {
		bucket := math.Round(tx.Magnitude()/amountBucketSize) * amountBucketSize
		key := fmt.Sprintf("%s|%s|%.0f", strings.ToLower(tx.Category), strings.ToLower(tx.Subcategory), bucket)
		if _, claimed := noteKeys[key]; claimed {
			continue
		}
		groups[key] = append(groups[key], tx)
	}

	var patterns []RecurringPattern
	for key, group := range groups {
		if p, ok := evaluateGroup(key, group, now); ok {
			patterns = append(patterns, p)
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].AvgAmount != patterns[j].AvgAmount {
			return patterns[i].AvgAmount > patterns[j].AvgAmount
		}
		return patterns[i].Signature < patterns[j].Signature
	})
	return patterns
}

func evaluateGroup(key string, group []core.Transaction, now time.Time) (RecurringPattern, bool) {
	if len(group) < 2 {
		return RecurringPattern{}, false
	}

	sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

	intervals := make([]float64, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		days := group[i].Date.Sub(group[i-1].Date).Hours() / 24
		intervals = append(intervals, days)
	}

	class, ok := classifyFrequency(mean(intervals))
	if !ok {
		return RecurringPattern{}, false
	}

	if !intervalsConsistent(intervals, len(group)) {
		return RecurringPattern{}, false
	}

	amounts := make([]float64, len(group))
	total := 0.0
	for i, tx := range group {
		amounts[i] = tx.Magnitude()
		total += amounts[i]
	}
	avg := total / float64(len(group))
	if !amountsConsistent(amounts, avg) {
		return RecurringPattern{}, false
	}

	last := group[len(group)-1].Date
	daysSinceLast := now.Sub(last).Hours() / 24

	return RecurringPattern{
		Signature:        key,
		Category:         group[0].Category,
		Subcategory:      group[0].Subcategory,
		AvgAmount:        avg,
		Frequency:        class.freq,
		LastDate:         last,
		Occurrences:      len(group),
		TotalSpent:       total,
		IsActive:         daysSinceLast < class.stalenessDays,
		ExpectedNextDate: class.nextDate(last),
	}, true
}

// classifyFrequency maps a mean interval onto one of the three disjoint
// cadence windows. An interval outside all windows is not recurring.
func classifyFrequency(meanInterval float64) (frequencyClass, bool) {
	for _, class := range frequencyClasses {
		if meanInterval >= class.minInterval && meanInterval <= class.maxInterval {
			return class, true
		}
	}
	return frequencyClass{}, false
}

func intervalsConsistent(intervals []float64, occurrences int) bool {
	m := mean(intervals)
	if m == 0 {
		return false
	}
	cv := stddev(intervals) / m
	if occurrences <= 3 {
		return cv <= intervalCVSmall
	}
	return cv <= intervalCVLarge
}

func amountsConsistent(amounts []float64, avg float64) bool {
	if avg == 0 {
		return false
	}
	within := 0
	for _, a := range amounts {
		if math.Abs(a-avg) <= amountTolerance*avg {
			within++
		}
	}
	return float64(within) >= amountQuorum*float64(len(amounts))
}

// MonthlyFixedCosts sums the monthly-equivalent cost of all active patterns.
func MonthlyFixedCosts(patterns []RecurringPattern) float64 {
	total := 0.0
	for _, p := range patterns {
		if !p.IsActive {
			continue
		}
		switch p.Frequency {
		case FreqMonthly:
			total += p.AvgAmount
		case FreqQuarterly:
			total += p.AvgAmount / 3
		case FreqYearly:
			total += p.AvgAmount / 12
		}
	}
	return total
}
