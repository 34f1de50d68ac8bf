package calculator

import (
	"fmt"
	"math"
)

// SplitType selects how an expense amount is divided among members.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitExact      SplitType = "exact"
)

// ShareInput is a user-entered share: a percentage for SplitPercentage,
// an amount for SplitExact. Ignored for SplitEqual.
type ShareInput struct {
	MemberID string
	Value    float64
}

// Share is a computed split amount for one member.
type Share struct {
	MemberID string
	Amount   float64
}

// CalculateSplits divides amount among members according to splitType.
// Shares are rounded to cents and always sum exactly to the rounded amount:
// equal splits hand the leftover cents to members in roster order, percentage
// splits let the last share absorb the rounding remainder.
func CalculateSplits(amount float64, splitType SplitType, shares []ShareInput, members []string) ([]Share, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("must have at least one member")
	}

	switch splitType {
	case SplitEqual, "":
		return equalSplits(amount, members), nil
	case SplitPercentage, SplitExact:
		if err := checkShares(shares, members); err != nil {
			return nil, err
		}
		if splitType == SplitPercentage {
			return percentageSplits(amount, shares)
		}
		return exactSplits(amount, shares)
	default:
		return nil, fmt.Errorf("unknown split type %q", splitType)
	}
}

func equalSplits(amount float64, members []string) []Share {
	total := toCents(amount)
	n := int64(len(members))
	base, rem := total/n, total%n

	out := make([]Share, len(members))
	for i, m := range members {
		cents := base
		if int64(i) < rem {
			cents++
		}
		out[i] = Share{MemberID: m, Amount: fromCents(cents)}
	}
	return out
}

func percentageSplits(amount float64, shares []ShareInput) ([]Share, error) {
	var pct float64
	for _, s := range shares {
		pct += s.Value
	}
	if math.Abs(pct-100) >= Epsilon {
		return nil, fmt.Errorf("percentages must add up to 100, got %.2f", pct)
	}

	total := toCents(amount)
	var assigned int64
	out := make([]Share, len(shares))
	for i, s := range shares {
		cents := toCents(amount * s.Value / 100)
		if i == len(shares)-1 {
			cents = total - assigned
		}
		assigned += cents
		out[i] = Share{MemberID: s.MemberID, Amount: fromCents(cents)}
	}
	return out, nil
}

func exactSplits(amount float64, shares []ShareInput) ([]Share, error) {
	var sum int64
	out := make([]Share, len(shares))
	for i, s := range shares {
		cents := toCents(s.Value)
		sum += cents
		out[i] = Share{MemberID: s.MemberID, Amount: fromCents(cents)}
	}
	if sum != toCents(amount) {
		return nil, fmt.Errorf("split amounts add up to %.2f, expected %.2f", fromCents(sum), amount)
	}
	return out, nil
}

func checkShares(shares []ShareInput, members []string) error {
	if len(shares) == 0 {
		return fmt.Errorf("shares are required for this split type")
	}
	roster := make(map[string]bool, len(members))
	for _, m := range members {
		roster[m] = true
	}
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if !roster[s.MemberID] {
			return fmt.Errorf("member %q is not part of the group", s.MemberID)
		}
		if seen[s.MemberID] {
			return fmt.Errorf("member %q has more than one share", s.MemberID)
		}
		if s.Value < 0 {
			return fmt.Errorf("share for member %q cannot be negative", s.MemberID)
		}
		seen[s.MemberID] = true
	}
	return nil
}
