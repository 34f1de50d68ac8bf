package calculator

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

var scenarioMembers = []Member{
	{ID: "alice", Name: "Alice"},
	{ID: "bob", Name: "Bob"},
	{ID: "carol", Name: "Carol"},
}

func TestPlanSettlements_ScenarioA(t *testing.T) {
	balances := ComputeBalances(scenarioExpenses())
	plan := PlanSettlements(scenarioMembers, balances)

	want := []Transfer{
		{From: Member{ID: "carol", Name: "Carol"}, To: Member{ID: "alice", Name: "Alice"}, Amount: 175},
		{From: Member{ID: "bob", Name: "Bob"}, To: Member{ID: "alice", Name: "Alice"}, Amount: 25},
	}
	if len(plan) != len(want) {
		t.Fatalf("got %d transfers, want %d: %+v", len(plan), len(want), plan)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("transfer %d = %+v, want %+v", i, plan[i], want[i])
		}
	}
}

func TestPlanSettlements(t *testing.T) {
	tests := []struct {
		name     string
		members  []Member
		balances map[string]float64
		want     []Transfer
	}{
		{
			name:     "empty",
			members:  nil,
			balances: map[string]float64{},
			want:     nil,
		},
		{
			name:     "all zero balances",
			members:  scenarioMembers,
			balances: map[string]float64{"alice": 0, "bob": 0.004, "carol": -0.004},
			want:     nil,
		},
		{
			name:     "members missing from balances default to zero",
			members:  scenarioMembers,
			balances: map[string]float64{"alice": 50, "bob": -50},
			want: []Transfer{
				{From: Member{ID: "bob", Name: "Bob"}, To: Member{ID: "alice", Name: "Alice"}, Amount: 50},
			},
		},
		{
			name: "one creditor split across debtors",
			members: []Member{
				{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"},
			},
			balances: map[string]float64{"a": -30, "b": -20, "c": -10, "d": 60},
			want: []Transfer{
				{From: Member{ID: "a", Name: "A"}, To: Member{ID: "d", Name: "D"}, Amount: 30},
				{From: Member{ID: "b", Name: "B"}, To: Member{ID: "d", Name: "D"}, Amount: 20},
				{From: Member{ID: "c", Name: "C"}, To: Member{ID: "d", Name: "D"}, Amount: 10},
			},
		},
		{
			name: "amounts rounded to cents",
			members: []Member{
				{ID: "a", Name: "A"}, {ID: "b", Name: "B"},
			},
			balances: map[string]float64{"a": -33.333333, "b": 33.333333},
			want: []Transfer{
				{From: Member{ID: "a", Name: "A"}, To: Member{ID: "b", Name: "B"}, Amount: 33.33},
			},
		},
		{
			name: "no debtors means no transfers",
			members: []Member{
				{ID: "a", Name: "A"}, {ID: "b", Name: "B"},
			},
			balances: map[string]float64{"a": 10, "b": 20},
			want:     nil,
		},
		{
			name: "unmatched debt is left in place",
			members: []Member{
				{ID: "a", Name: "A"}, {ID: "b", Name: "B"},
			},
			balances: map[string]float64{"a": -30, "b": 10},
			want: []Transfer{
				{From: Member{ID: "a", Name: "A"}, To: Member{ID: "b", Name: "B"}, Amount: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSettlements(tt.members, tt.balances)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d transfers, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("transfer %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPlanSettlements_DrivesBalancesToZero(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		n := 2 + rng.Intn(8)
		members := make([]Member, n)
		for i := range members {
			members[i] = Member{ID: fmt.Sprintf("m%d", i), Name: fmt.Sprintf("Member %d", i)}
		}

		// Random expenses with equal splits keep the zero-sum property
		var expenses []Expense
		for e := 0; e < 1+rng.Intn(10); e++ {
			amount := float64(1+rng.Intn(100000)) / 100
			ids := make([]string, n)
			for i, m := range members {
				ids[i] = m.ID
			}
			shares, err := CalculateSplits(amount, SplitEqual, nil, ids)
			if err != nil {
				t.Fatalf("CalculateSplits failed: %v", err)
			}
			exp := Expense{ID: fmt.Sprintf("e%d", e), PaidBy: members[rng.Intn(n)].ID, Amount: amount}
			for i, s := range shares {
				exp.Splits = append(exp.Splits, Split{ID: fmt.Sprintf("e%d-s%d", e, i), MemberID: s.MemberID, Amount: s.Amount})
			}
			expenses = append(expenses, exp)
		}

		balances := ComputeBalances(expenses)
		plan := PlanSettlements(members, balances)

		if len(plan) > n-1 {
			t.Errorf("round %d: %d transfers for %d members", round, len(plan), n)
		}
		for _, tr := range plan {
			if tr.Amount <= 0 {
				t.Errorf("round %d: non-positive transfer %+v", round, tr)
			}
			if math.Abs(tr.Amount-RoundCents(tr.Amount)) > 1e-9 {
				t.Errorf("round %d: transfer not rounded to cents %+v", round, tr)
			}
		}
		for id, v := range ApplyTransfers(balances, plan) {
			if !IsZero(v) {
				t.Errorf("round %d: member %s left with balance %v", round, id, v)
			}
		}
	}
}
