package calculator

import "sort"

// Transfer is a proposed payment from a debtor to a creditor.
type Transfer struct {
	From   Member
	To     Member
	Amount float64
}

// PlanSettlements computes a list of debtor -> creditor transfers that zeroes every balance.
//
// Algorithm:
//   - Every roster member gets a working balance (0 when missing from balances)
//   - Sort ascending: biggest debtors first, biggest creditors last (ties keep roster order)
//   - Two pointers sweep inward, each step moving min(debt, credit) and advancing whichever
//     side reached zero
//
// At most len(members)-1 transfers are emitted, each rounded to cents and strictly positive.
//
// Balances from ComputeBalances always sum to zero. When they do not, the sweep only ever
// moves money from a member with a negative balance to one with a positive balance: a
// non-negative "debtor" or non-positive "creditor" is skipped instead of being paired. So
// {A: 10, B: 20} plans nothing, and unmatched debt or credit is left in place.
func PlanSettlements(members []Member, balances map[string]float64) []Transfer {
	working := RosterBalances(members, balances)
	sort.SliceStable(working, func(a, b int) bool {
		return working[a].Balance < working[b].Balance
	})

	var transfers []Transfer
	i, j := 0, len(working)-1
	for i < j {
		debt := -working[i].Balance
		credit := working[j].Balance

		if IsZero(debt) && IsZero(credit) {
			i++
			j--
			continue
		}
		if debt <= 0 {
			i++
			continue
		}
		if credit <= 0 {
			j--
			continue
		}

		amount := min(debt, credit)
		if rounded := RoundCents(amount); rounded > 0 {
			transfers = append(transfers, Transfer{
				From:   working[i].Member,
				To:     working[j].Member,
				Amount: rounded,
			})
		}

		working[i].Balance += amount
		working[j].Balance -= amount

		if IsZero(working[i].Balance) {
			i++
		}
		if IsZero(working[j].Balance) {
			j--
		}
	}

	return transfers
}

// ApplyTransfers returns a copy of balances with every transfer applied.
func ApplyTransfers(balances map[string]float64, transfers []Transfer) map[string]float64 {
	out := make(map[string]float64, len(balances))
	for id, v := range balances {
		out[id] = v
	}
	for _, t := range transfers {
		out[t.From.ID] += t.Amount
		out[t.To.ID] -= t.Amount
	}
	return out
}
