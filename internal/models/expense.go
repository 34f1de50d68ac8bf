package models

import "time"

// Expense is an amount paid by one member on behalf of the group.
// The sum of its splits should equal Amount; that is checked when the
// expense is written, not when it is read.
type Expense struct {
	ID          string
	GroupID     string
	Description string
	Amount      float64

	// PaidBy is the member ID of the payer.
	PaidBy string

	Splits    []Split
	CreatedAt time.Time
}

// Split is one member's owed share of an expense: MemberID owes Amount to the
// expense's payer. IsSettled only ever flips from false to true.
type Split struct {
	ID        string
	ExpenseID string
	MemberID  string
	Amount    float64
	IsSettled bool

	// SettledAt is zero while the split is unsettled.
	SettledAt time.Time
}
