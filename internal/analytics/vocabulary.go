package analytics

// Vocabulary holds the keyword tables that drive transaction classification.
// It is bound at classifier construction and never mutated afterwards, so tests
// can run with an overridden vocabulary without touching package state.
//
// All entries are lowercase; matching is case-insensitive substring containment.
// A category like "EMI - Home Loan" intentionally matches both "emi" and
// "home loan": tags are additive buckets, not a partition.
type Vocabulary struct {
	// InvestmentAccounts are substrings that mark an account name as an
	// investment destination absent explicit user tagging.
	InvestmentAccounts []string

	// InvestmentKeywords are substrings matched against a transfer's note and
	// category.
	InvestmentKeywords []string

	// Expense tag keyword lists. A category may satisfy more than one list.
	Debt          []string
	Discretionary []string
	Essential     []string
}

// DefaultVocabulary returns the stock keyword tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		InvestmentAccounts: []string{
			"mutual fund", "mf", "grow", "zerodha", "kuvera", "coin",
			"smallcase", "stocks", "demat", "ppf", "nps", "elss", "epf",
		},
		InvestmentKeywords: []string{
			"sip", "mutual fund", "investment", "ppf", "nps", "elss", "epf",
		},
		Debt: []string{
			"emi", "loan", "debt", "credit card", "interest", "repayment",
		},
		Discretionary: []string{
			"dining", "restaurant", "entertainment", "shopping", "travel",
			"vacation", "movies", "subscription", "hobby", "gifts",
		},
		Essential: []string{
			"rent", "grocer", "utilities", "electricity", "water", "gas",
			"fuel", "transport", "insurance", "medical", "health",
			"education", "internet", "phone",
		},
	}
}
