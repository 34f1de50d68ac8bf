package service

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/pkg/api"
)

func createDebt(t *testing.T, c *clients, person string, amount float64) *api.Debt {
	t.Helper()

	resp, err := c.debts.CreateDebt(context.Background(), connect.NewRequest(&api.CreateDebtRequest{
		PersonName: person,
		Amount:     amount,
	}))
	if err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}
	return resp.Msg.Debt
}

func TestCreateDebt(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	ctx := context.Background()

	debt := createDebt(t, alice, "  Bob ", 12.345)
	if debt.ID == "" {
		t.Error("expected an ID")
	}
	if debt.PersonName != "Bob" {
		t.Errorf("person name = %q, want trimmed", debt.PersonName)
	}
	assertAmount(t, "amount", debt.Amount, 12.35)

	tests := []struct {
		name string
		req  *api.CreateDebtRequest
	}{
		{"zero amount", &api.CreateDebtRequest{PersonName: "Bob", Amount: 0}},
		{"rounds to zero", &api.CreateDebtRequest{PersonName: "Bob", Amount: 0.001}},
		{"missing person", &api.CreateDebtRequest{Amount: 10}},
		{"whitespace-only person", &api.CreateDebtRequest{PersonName: "   ", Amount: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.debts.CreateDebt(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	_, err := env.anonymous().debts.CreateDebt(ctx, connect.NewRequest(&api.CreateDebtRequest{PersonName: "Bob", Amount: 1}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestCreateDebt_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	svc := NewDebtService(nil, slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := svc.CreateDebt(context.Background(), connect.NewRequest(&api.CreateDebtRequest{PersonName: "Bob", Amount: 5}))
	assertCode(t, err, connect.CodeUnauthenticated)

	if !strings.Contains(buf.String(), "CreateDebt request received") {
		t.Errorf("log = %q, want the request entry line", buf.String())
	}
	if !strings.Contains(buf.String(), "person_name=Bob") {
		t.Errorf("log = %q, want the person name", buf.String())
	}
}

func TestListDebts_ScopedToCaller(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")
	ctx := context.Background()

	createDebt(t, alice, "Carol", 10)
	createDebt(t, alice, "Dave", -5)
	createDebt(t, bob, "Erin", 7)

	resp, err := alice.debts.ListDebts(ctx, connect.NewRequest(&api.ListDebtsRequest{}))
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}
	if len(resp.Msg.Debts) != 2 {
		t.Fatalf("expected 2 debts, got %d", len(resp.Msg.Debts))
	}
	if resp.Msg.Debts[0].PersonName != "Dave" {
		t.Errorf("newest debt should come first, got %s", resp.Msg.Debts[0].PersonName)
	}
}

func TestUpdateAndDeleteDebt(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")
	ctx := context.Background()

	debt := createDebt(t, alice, "Carol", 10)

	resp, err := alice.debts.UpdateDebt(ctx, connect.NewRequest(&api.UpdateDebtRequest{
		DebtID: debt.ID, PersonName: "Caroline", Amount: -20,
	}))
	if err != nil {
		t.Fatalf("UpdateDebt failed: %v", err)
	}
	if resp.Msg.Debt.PersonName != "Caroline" {
		t.Errorf("person name = %q", resp.Msg.Debt.PersonName)
	}
	assertAmount(t, "amount", resp.Msg.Debt.Amount, -20)

	t.Run("other user sees not found", func(t *testing.T) {
		_, err := bob.debts.UpdateDebt(ctx, connect.NewRequest(&api.UpdateDebtRequest{
			DebtID: debt.ID, PersonName: "Mallory", Amount: 1,
		}))
		assertCode(t, err, connect.CodeNotFound)

		_, err = bob.debts.DeleteDebt(ctx, connect.NewRequest(&api.DeleteDebtRequest{DebtID: debt.ID}))
		assertCode(t, err, connect.CodeNotFound)
	})

	t.Run("whitespace-only person", func(t *testing.T) {
		_, err := alice.debts.UpdateDebt(ctx, connect.NewRequest(&api.UpdateDebtRequest{
			DebtID: debt.ID, PersonName: " ", Amount: 5,
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := alice.debts.UpdateDebt(ctx, connect.NewRequest(&api.UpdateDebtRequest{
			DebtID: debt.ID, PersonName: "Carol", Amount: 0,
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	if _, err := alice.debts.DeleteDebt(ctx, connect.NewRequest(&api.DeleteDebtRequest{DebtID: debt.ID})); err != nil {
		t.Fatalf("DeleteDebt failed: %v", err)
	}
	_, err = alice.debts.DeleteDebt(ctx, connect.NewRequest(&api.DeleteDebtRequest{DebtID: debt.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetDebtSummary(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	ctx := context.Background()

	createDebt(t, alice, "bob", -50)
	createDebt(t, alice, "Carol", 30)
	createDebt(t, alice, "Bob", 200)

	resp, err := alice.debts.GetDebtSummary(ctx, connect.NewRequest(&api.GetDebtSummaryRequest{}))
	if err != nil {
		t.Fatalf("GetDebtSummary failed: %v", err)
	}

	people := resp.Msg.People
	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %+v", people)
	}

	bob := people[0]
	if bob.PersonName != "Bob" {
		t.Errorf("display name = %q, want the newest spelling Bob", bob.PersonName)
	}
	assertAmount(t, "Bob total", bob.Total, 150)
	if len(bob.Transactions) != 2 {
		t.Fatalf("expected 2 transactions for Bob, got %d", len(bob.Transactions))
	}
	assertAmount(t, "newest transaction", bob.Transactions[0].Amount, 200)

	if people[1].PersonName != "Carol" {
		t.Errorf("second person = %q", people[1].PersonName)
	}
	assertAmount(t, "Carol total", people[1].Total, 30)
}

func TestGetDebtSummary_Empty(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")

	resp, err := alice.debts.GetDebtSummary(context.Background(), connect.NewRequest(&api.GetDebtSummaryRequest{}))
	if err != nil {
		t.Fatalf("GetDebtSummary failed: %v", err)
	}
	if len(resp.Msg.People) != 0 {
		t.Errorf("expected no people, got %+v", resp.Msg.People)
	}
}
