package calculator

import "math"

// ReciprocalPair is two unsettled splits on different expenses that cancel each other:
// A owes B via SplitA and B owes A the same amount via SplitB.
type ReciprocalPair struct {
	ExpenseA string
	SplitA   Split
	ExpenseB string
	SplitB   Split
}

// SplitIDs returns both split IDs of the pair.
func (p ReciprocalPair) SplitIDs() []string {
	return []string{p.SplitA.ID, p.SplitB.ID}
}

// FindReciprocalPairs identifies pairs of unsettled splits whose debts exactly cancel.
//
// For every unsettled split s1 on e1 it looks for an unsettled split s2 on another expense e2
// with s1.MemberID == e2.PaidBy, s2.MemberID == e1.PaidBy and equal amounts (within Epsilon).
// Every qualifying unordered pair is returned once, keyed by its two split IDs, in the order
// the scan first meets it. A split may appear in several pairs; callers that settle pairs
// decide which of them to act on. Settled splits are skipped, so re-running after the
// returned splits are settled finds nothing that includes them.
//
// The scan is quadratic in the number of splits in the group.
func FindReciprocalPairs(expenses []Expense) []ReciprocalPair {
	seen := make(map[[2]string]bool)
	var pairs []ReciprocalPair

	for ei, e1 := range expenses {
		for _, s1 := range e1.Splits {
			if s1.IsSettled {
				continue
			}
			for ej, e2 := range expenses {
				if ei == ej || e1.ID == e2.ID {
					continue
				}
				for _, s2 := range e2.Splits {
					if s2.IsSettled || s1.ID == s2.ID {
						continue
					}
					if s1.MemberID != e2.PaidBy ||
						s2.MemberID != e1.PaidBy ||
						math.Abs(s1.Amount-s2.Amount) >= Epsilon {
						continue
					}
					key := pairKey(s1.ID, s2.ID)
					if seen[key] {
						continue
					}
					seen[key] = true
					pairs = append(pairs, ReciprocalPair{
						ExpenseA: e1.ID,
						SplitA:   s1,
						ExpenseB: e2.ID,
						SplitB:   s2,
					})
				}
			}
		}
	}

	return pairs
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}
