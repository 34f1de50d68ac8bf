package service

import (
	"github.com/raaksss/Monies/internal/calculator"
	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	out := &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     make([]api.Member, len(g.Members)),
		CreatedAt:   g.CreatedAt,
	}
	for i, m := range g.Members {
		out.Members[i] = api.Member{ID: m.ID, Name: m.Name, UserID: m.UserID}
	}
	for i := range g.Expenses {
		out.Expenses = append(out.Expenses, *toAPIExpense(&g.Expenses[i]))
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		Splits:      make([]api.Split, len(e.Splits)),
		CreatedAt:   e.CreatedAt,
	}
	for i := range e.Splits {
		out.Splits[i] = toAPISplit(&e.Splits[i])
	}
	return out
}

func toAPISplit(s *models.Split) api.Split {
	out := api.Split{
		ID:        s.ID,
		MemberID:  s.MemberID,
		Amount:    s.Amount,
		IsSettled: s.IsSettled,
	}
	if !s.SettledAt.IsZero() {
		at := s.SettledAt
		out.SettledAt = &at
	}
	return out
}

func toAPIDebt(d *models.PersonalDebt) *api.Debt {
	return &api.Debt{
		ID:         d.ID,
		PersonName: d.PersonName,
		Amount:     d.Amount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toAPIPairs(pairs []calculator.ReciprocalPair) []api.ReciprocalPair {
	if len(pairs) == 0 {
		return nil
	}
	out := make([]api.ReciprocalPair, len(pairs))
	for i, p := range pairs {
		out[i] = api.ReciprocalPair{
			ExpenseA: p.ExpenseA,
			SplitA:   p.SplitA.ID,
			ExpenseB: p.ExpenseB,
			SplitB:   p.SplitB.ID,
			Amount:   p.SplitA.Amount,
		}
	}
	return out
}

// calcMembers returns the roster as the calculator sees it.
func calcMembers(g *models.Group) []calculator.Member {
	out := make([]calculator.Member, len(g.Members))
	for i, m := range g.Members {
		out[i] = calculator.Member{ID: m.ID, Name: m.Name}
	}
	return out
}

// calcExpenses returns the group's expenses as the calculator sees them.
func calcExpenses(g *models.Group) []calculator.Expense {
	out := make([]calculator.Expense, len(g.Expenses))
	for i, e := range g.Expenses {
		splits := make([]calculator.Split, len(e.Splits))
		for j, s := range e.Splits {
			splits[j] = calculator.Split{
				ID:        s.ID,
				MemberID:  s.MemberID,
				Amount:    s.Amount,
				IsSettled: s.IsSettled,
			}
		}
		out[i] = calculator.Expense{ID: e.ID, PaidBy: e.PaidBy, Amount: e.Amount, Splits: splits}
	}
	return out
}

func calcDebts(debts []*models.PersonalDebt) []calculator.Debt {
	out := make([]calculator.Debt, len(debts))
	for i, d := range debts {
		out[i] = calculator.Debt{ID: d.ID, PersonName: d.PersonName, Amount: d.Amount, CreatedAt: d.CreatedAt}
	}
	return out
}
