package analytics

import (
	"sort"

	"finpulse/internal/core"
)

const (
	// DefaultCorrelationTopN bounds the matrix to the biggest spend categories.
	DefaultCorrelationTopN = 8

	// strongPairThreshold is the minimum r for a pair to be surfaced.
	strongPairThreshold = 0.3

	// maxStrongPairs caps how many strong pairs are retained for display.
	maxStrongPairs = 3
)

type (
	// CorrelationPair is one category pair with its Pearson coefficient.
	CorrelationPair struct {
		A string
		B string
		R float64
	}

	// CorrelationMatrix is the symmetric pairwise correlation of daily
	// category spending. Matrix[i][j] corresponds to Categories[i] and
	// Categories[j]; the diagonal is 1 by definition. Category order (total
	// spend descending) is part of the contract: downstream consumers emit
	// columns in this order.
	CorrelationMatrix struct {
		Categories  []string
		Matrix      [][]float64
		StrongPairs []CorrelationPair
	}
)

// Correlate builds the correlation matrix over the top-N expense categories.
// The date axis is the union of days on which at least one selected category
// has nonzero spend; missing days are zero-filled.
func Correlate(txs []core.Transaction, topN int) CorrelationMatrix {
	if topN <= 0 {
		topN = DefaultCorrelationTopN
	}

	totals := make(map[string]float64)
	daily := make(map[string]map[string]float64) // day -> category -> amount
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Category == "" {
			continue
		}
		amount := tx.Magnitude()
		totals[tx.Category] += amount
		day := core.DayKey(tx.Date)
		if daily[day] == nil {
			daily[day] = make(map[string]float64)
		}
		daily[day][tx.Category] += amount
	}

	categories := topCategories(totals, topN)
	if len(categories) == 0 {
		return CorrelationMatrix{}
	}

	selected := make(map[string]int, len(categories))
	for i, c := range categories {
		selected[c] = i
	}

	var days []string
	for day, byCat := range daily {
		for cat, amount := range byCat {
			if _, ok := selected[cat]; ok && amount != 0 {
				days = append(days, day)
				break
			}
		}
	}
	sort.Strings(days)

	series := make([][]float64, len(categories))
	for i := range series {
		series[i] = make([]float64, len(days))
	}
	for d, day := range days {
		for cat, amount := range daily[day] {
			if i, ok := selected[cat]; ok {
				series[i][d] = amount
			}
		}
	}

	matrix := make([][]float64, len(categories))
	for i := range matrix {
		matrix[i] = make([]float64, len(categories))
		matrix[i][i] = 1
	}

	var strong []CorrelationPair
	for i := 0; i < len(categories); i++ {
		for j := i + 1; j < len(categories); j++ {
			r := pearson(series[i], series[j])
			matrix[i][j] = r
			matrix[j][i] = r
			if r > strongPairThreshold {
				strong = append(strong, CorrelationPair{A: categories[i], B: categories[j], R: r})
			}
		}
	}

	sort.Slice(strong, func(i, j int) bool { return strong[i].R > strong[j].R })
	if len(strong) > maxStrongPairs {
		strong = strong[:maxStrongPairs]
	}

	return CorrelationMatrix{Categories: categories, Matrix: matrix, StrongPairs: strong}
}

// topCategories returns the N categories with the highest total spend,
// tie-broken by name so repeated runs stay deterministic.
func topCategories(totals map[string]float64, topN int) []string {
	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if totals[categories[i]] != totals[categories[j]] {
			return totals[categories[i]] > totals[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if len(categories) > topN {
		categories = categories[:topN]
	}
	return categories
}
