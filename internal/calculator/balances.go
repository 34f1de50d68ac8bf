package calculator

import "github.com/shopspring/decimal"

// Expense is the minimal view of a group expense needed by the calculator.
type Expense struct {
	ID     string
	PaidBy string // member ID of the payer
	Amount float64
	Splits []Split
}

// Split is one member's owed share of an expense.
type Split struct {
	ID        string
	MemberID  string
	Amount    float64
	IsSettled bool
}

// Member is a group member as shown in settlement plans.
type Member struct {
	ID   string
	Name string
}

// ComputeBalances derives each member's net balance from a group's full expense history.
//
// The payer of an expense is credited its full amount and every split owner is debited
// their share. Settlement flags are ignored: balances describe the original obligations.
// Positive = owed money, negative = owes money. Members that never appear as payer or
// split owner are absent from the result.
func ComputeBalances(expenses []Expense) map[string]float64 {
	acc := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		acc[e.PaidBy] = acc[e.PaidBy].Add(decimal.NewFromFloat(e.Amount))
		for _, s := range e.Splits {
			acc[s.MemberID] = acc[s.MemberID].Sub(decimal.NewFromFloat(s.Amount))
		}
	}

	balances := make(map[string]float64, len(acc))
	for id, v := range acc {
		balances[id] = v.InexactFloat64()
	}
	return balances
}

// MemberBalance is a roster member's balance, defaulted to zero when absent.
type MemberBalance struct {
	Member
	Balance float64
}

// RosterBalances joins balances with the group roster in roster order.
func RosterBalances(members []Member, balances map[string]float64) []MemberBalance {
	out := make([]MemberBalance, len(members))
	for i, m := range members {
		out[i] = MemberBalance{Member: m, Balance: balances[m.ID]}
	}
	return out
}
