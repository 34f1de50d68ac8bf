package models

import "time"

// Group is a named collection of members sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Goa Trip", "Flat 4B").
	Name string

	Description string

	// CreatedBy is the ID of the user who owns the group.
	CreatedBy string

	// Members in the order they were added. At least two at creation.
	Members []Member

	// Expenses newest first. Only populated by GetGroup.
	Expenses []Expense

	CreatedAt time.Time
}

// Member is a participant in exactly one group.
type Member struct {
	ID      string
	GroupID string
	Name    string

	// UserID links the member to a registered user, empty otherwise.
	UserID string
}

// MemberByID returns the member with the given ID.
func (g *Group) MemberByID(id string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// MemberIDs returns the IDs of all members in roster order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}
