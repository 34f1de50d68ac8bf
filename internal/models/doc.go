// Package models defines the domain records persisted by Monies.
//
// # Group expenses
//
//   - Group: a named set of members owned by the user who created it
//   - Member: a participant in one group; may or may not be a registered user
//   - Expense: an amount paid by one member, divided into splits
//   - Split: one member's owed share of an expense, settled at most once
//
// Balances and settlement plans are never stored. They are recomputed from the
// expense history by the calculator package on every read.
//
// # Personal debts
//
//   - PersonalDebt: a signed two-party entry from the owning user's viewpoint
//     (positive = the user owes the person, negative = the person owes the user)
//
// # Design Principles
//
//  1. Relationships use ID strings rather than pointers
//  2. Timestamps are time.Time; storage persists them as Unix milliseconds
//  3. Monetary amounts are float64 currency units with two decimals
package models
