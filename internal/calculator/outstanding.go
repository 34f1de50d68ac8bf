package calculator

import "github.com/shopspring/decimal"

// Outstanding sums the unsettled splits owed by fromID on expenses paid by toID.
// It returns the total and the IDs of the contributing splits, which are the splits
// to mark settled once the payment is made.
func Outstanding(expenses []Expense, fromID, toID string) (float64, []string) {
	if fromID == toID {
		return 0, nil
	}

	total := decimal.Zero
	var ids []string
	for _, e := range expenses {
		if e.PaidBy != toID {
			continue
		}
		for _, s := range e.Splits {
			if s.MemberID != fromID || s.IsSettled {
				continue
			}
			total = total.Add(decimal.NewFromFloat(s.Amount))
			ids = append(ids, s.ID)
		}
	}
	return total.InexactFloat64(), ids
}
