package analytics

import (
	"strings"

	"finpulse/internal/core"
)

const (
	BucketIncome        Bucket = "income"
	BucketExpense       Bucket = "expense"
	BucketInvestmentIn  Bucket = "investment_in"
	BucketInvestmentOut Bucket = "investment_out"
	BucketIgnored       Bucket = "ignored"
)

const (
	TagDebt          Tag = "debt"
	TagDiscretionary Tag = "discretionary"
	TagEssential     Tag = "essential"
)

type (
	// Bucket is the semantic destination of a classified transaction. Every
	// transaction lands in exactly one bucket.
	Bucket string

	// Tag is an expense sub-facet. Unlike buckets, tags are a non-exclusive
	// set: one category may carry several.
	Tag string

	// TagSet is the set of tags attached to an expense.
	TagSet map[Tag]struct{}

	// AccountPredicate reports whether an account name is user-tagged as an
	// investment account. It is supplied by the collaborator that owns account
	// tagging; the classifier falls back to name patterns when it returns false.
	AccountPredicate func(account string) bool

	// rule is one step of the ordered classification table. The first rule
	// that matches wins; precedence lives in the rule slice, not in nesting.
	rule struct {
		name  string
		match func(tx core.Transaction, isInvestment AccountPredicate) bool
	}

	// Classifier assigns transactions to buckets and tags using an immutable
	// vocabulary. It is deterministic and free of side effects.
	Classifier struct {
		vocab Vocabulary
		rules []rule
	}
)

func (s TagSet) Has(t Tag) bool {
	_, ok := s[t]
	return ok
}

// NewClassifier builds a classifier bound to the given vocabulary.
func NewClassifier(vocab Vocabulary) *Classifier {
	c := &Classifier{vocab: vocab}
	c.rules = []rule{
		{name: string(BucketInvestmentIn), match: c.isInvestmentInflow},
		{name: string(BucketInvestmentOut), match: c.isInvestmentOutflow},
		{name: string(BucketIncome), match: func(tx core.Transaction, _ AccountPredicate) bool {
			return tx.Type == core.Income
		}},
		{name: string(BucketExpense), match: func(tx core.Transaction, _ AccountPredicate) bool {
			return tx.Type == core.Expense
		}},
	}
	return c
}

// Classify places one transaction into a bucket and, for expenses, derives its
// tag set. Untagged transfers fall through to BucketIgnored.
func (c *Classifier) Classify(tx core.Transaction, isInvestment AccountPredicate) (Bucket, TagSet) {
	for _, r := range c.rules {
		if r.match(tx, isInvestment) {
			bucket := Bucket(r.name)
			if bucket == BucketExpense {
				return bucket, c.expenseTags(tx.Category)
			}
			return bucket, nil
		}
	}
	return BucketIgnored, nil
}

func (c *Classifier) isInvestmentInflow(tx core.Transaction, isInvestment AccountPredicate) bool {
	if tx.Type != core.Transfer || tx.ToAccount == "" {
		return false
	}
	if c.accountQualifies(tx.ToAccount, isInvestment) {
		return true
	}
	return containsAny(tx.Note, c.vocab.InvestmentKeywords) ||
		containsAny(tx.Category, c.vocab.InvestmentKeywords)
}

// isInvestmentOutflow matches withdrawals from investment accounts. A transfer
// whose destination also qualifies as an investment account is excluded so
// investment-to-investment moves are not double counted.
func (c *Classifier) isInvestmentOutflow(tx core.Transaction, isInvestment AccountPredicate) bool {
	if tx.Type != core.Transfer || tx.FromAccount == "" {
		return false
	}
	if !c.accountQualifies(tx.FromAccount, isInvestment) {
		return false
	}
	return !c.accountQualifies(tx.ToAccount, isInvestment)
}

func (c *Classifier) accountQualifies(account string, isInvestment AccountPredicate) bool {
	if account == "" {
		return false
	}
	if isInvestment != nil && isInvestment(account) {
		return true
	}
	return containsAny(account, c.vocab.InvestmentAccounts)
}

func (c *Classifier) expenseTags(category string) TagSet {
	tags := make(TagSet)
	if containsAny(category, c.vocab.Debt) {
		tags[TagDebt] = struct{}{}
	}
	if containsAny(category, c.vocab.Discretionary) {
		tags[TagDiscretionary] = struct{}{}
	}
	if containsAny(category, c.vocab.Essential) {
		tags[TagEssential] = struct{}{}
	}
	return tags
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
