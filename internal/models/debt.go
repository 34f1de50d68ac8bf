package models

import "time"

// PersonalDebt is a two-party entry tracked from the owning user's viewpoint.
type PersonalDebt struct {
	ID     string
	UserID string

	// PersonName is free text; summaries group it case-insensitively.
	PersonName string

	// Amount is signed: positive = the user owes PersonName,
	// negative = PersonName owes the user.
	Amount float64

	CreatedAt time.Time
	UpdatedAt time.Time
}
