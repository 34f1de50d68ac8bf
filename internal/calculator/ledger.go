package calculator

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Debt is a signed two-party entry: positive = the ledger owner owes the person,
// negative = the person owes the ledger owner.
type Debt struct {
	ID         string
	PersonName string
	Amount     float64
	CreatedAt  time.Time
}

// PersonSummary aggregates every debt recorded against one person.
type PersonSummary struct {
	DisplayName  string
	Total        float64
	Transactions []Debt
}

// SummarizeDebts groups debts by case-insensitive person name.
//
// The display name is the spelling of the first debt seen for that person, so the result
// depends on input order (callers pass debts newest first). Summaries are returned in
// first-seen order; each summary's transactions are sorted newest first.
func SummarizeDebts(debts []Debt) []PersonSummary {
	index := make(map[string]int)
	var summaries []PersonSummary
	var totals []decimal.Decimal

	for _, d := range debts {
		key := strings.ToLower(d.PersonName)
		i, ok := index[key]
		if !ok {
			i = len(summaries)
			index[key] = i
			summaries = append(summaries, PersonSummary{DisplayName: d.PersonName})
			totals = append(totals, decimal.Zero)
		}
		totals[i] = totals[i].Add(decimal.NewFromFloat(d.Amount))
		summaries[i].Transactions = append(summaries[i].Transactions, d)
	}

	for i := range summaries {
		summaries[i].Total = totals[i].InexactFloat64()
		txs := summaries[i].Transactions
		sort.SliceStable(txs, func(a, b int) bool {
			return txs[a].CreatedAt.After(txs[b].CreatedAt)
		})
	}

	return summaries
}
