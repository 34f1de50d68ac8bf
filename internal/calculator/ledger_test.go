package calculator

import (
	"math"
	"testing"
	"time"
)

func TestSummarizeDebts_ScenarioC(t *testing.T) {
	now := time.Now()
	debts := []Debt{
		{ID: "d1", PersonName: "Bob", Amount: 200, CreatedAt: now},
		{ID: "d2", PersonName: "bob", Amount: -50, CreatedAt: now.Add(-time.Hour)},
	}

	summary := SummarizeDebts(debts)
	if len(summary) != 1 {
		t.Fatalf("got %d entries, want 1", len(summary))
	}
	if summary[0].DisplayName != "Bob" {
		t.Errorf("display name = %q, want %q", summary[0].DisplayName, "Bob")
	}
	if math.Abs(summary[0].Total-150) > 0.01 {
		t.Errorf("total = %v, want 150", summary[0].Total)
	}
	if len(summary[0].Transactions) != 2 {
		t.Errorf("transactions = %d, want 2", len(summary[0].Transactions))
	}
}

func TestSummarizeDebts(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		if got := SummarizeDebts(nil); len(got) != 0 {
			t.Errorf("expected empty summary, got %+v", got)
		}
	})

	t.Run("display name is first spelling seen", func(t *testing.T) {
		got := SummarizeDebts([]Debt{
			{ID: "1", PersonName: "CAROL", Amount: 10, CreatedAt: base},
			{ID: "2", PersonName: "Carol", Amount: 10, CreatedAt: base.Add(time.Hour)},
		})
		if got[0].DisplayName != "CAROL" {
			t.Errorf("display name = %q, want CAROL", got[0].DisplayName)
		}
	})

	t.Run("people keep first-seen order", func(t *testing.T) {
		got := SummarizeDebts([]Debt{
			{ID: "1", PersonName: "Zed", Amount: 1, CreatedAt: base},
			{ID: "2", PersonName: "Amy", Amount: 2, CreatedAt: base},
			{ID: "3", PersonName: "zed", Amount: 3, CreatedAt: base},
		})
		if len(got) != 2 || got[0].DisplayName != "Zed" || got[1].DisplayName != "Amy" {
			t.Errorf("unexpected order: %+v", got)
		}
		if math.Abs(got[0].Total-4) > 0.01 {
			t.Errorf("Zed total = %v, want 4", got[0].Total)
		}
	})

	t.Run("transactions sorted newest first", func(t *testing.T) {
		got := SummarizeDebts([]Debt{
			{ID: "old", PersonName: "Dan", Amount: 5, CreatedAt: base},
			{ID: "new", PersonName: "dan", Amount: 5, CreatedAt: base.Add(48 * time.Hour)},
			{ID: "mid", PersonName: "DAN", Amount: 5, CreatedAt: base.Add(24 * time.Hour)},
		})
		txs := got[0].Transactions
		if txs[0].ID != "new" || txs[1].ID != "mid" || txs[2].ID != "old" {
			t.Errorf("transactions order = %s, %s, %s", txs[0].ID, txs[1].ID, txs[2].ID)
		}
	})

	t.Run("negative total means the person owes", func(t *testing.T) {
		got := SummarizeDebts([]Debt{
			{ID: "1", PersonName: "Eve", Amount: -30.1, CreatedAt: base},
			{ID: "2", PersonName: "Eve", Amount: 10.05, CreatedAt: base},
		})
		if math.Abs(got[0].Total-(-20.05)) > 0.001 {
			t.Errorf("total = %v, want -20.05", got[0].Total)
		}
	})
}
