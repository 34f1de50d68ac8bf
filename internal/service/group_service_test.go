package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")

	resp, err := alice.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:        "Roommates",
		Description: "Flat 4B",
		Members:     []string{"Alice", "Bob", "Charlie"},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if group.CreatedBy != alice.user.ID {
		t.Errorf("created by %s, want %s", group.CreatedBy, alice.user.ID)
	}
	if len(group.Members) != 3 || group.Members[2].Name != "Charlie" {
		t.Errorf("members: %+v", group.Members)
	}
	if group.CreatedAt.IsZero() {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
	}{
		{"one member", &api.CreateGroupRequest{Name: "Solo", Members: []string{"Alice"}}},
		{"no name", &api.CreateGroupRequest{Members: []string{"Alice", "Bob"}}},
		{"blank member", &api.CreateGroupRequest{Name: "Trip", Members: []string{"Alice", ""}}},
		{"duplicate member", &api.CreateGroupRequest{Name: "Trip", Members: []string{"Alice", "Alice"}}},
		{"whitespace-only member", &api.CreateGroupRequest{Name: "Trip", Members: []string{"Alice", "   "}}},
		{"whitespace-only name", &api.CreateGroupRequest{Name: " \t ", Members: []string{"Alice", "Bob"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.groups.CreateGroup(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}

	t.Run("whitespace-only member on update", func(t *testing.T) {
		group := createGroup(t, alice, "Alice", "Bob")
		_, err := alice.groups.UpdateGroup(context.Background(), connect.NewRequest(&api.UpdateGroupRequest{
			GroupID: group.ID,
			Name:    group.Name,
			Members: []api.MemberInput{
				{ID: group.Members[0].ID, Name: group.Members[0].Name},
				{ID: group.Members[1].ID, Name: "  "},
			},
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestGroupsAreScopedToOwner(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")
	ctx := context.Background()

	first := createGroup(t, alice, "Alice", "Bob")
	second := createGroup(t, alice, "Alice", "Carol")
	createGroup(t, bob, "Bob", "Dan")

	list, err := alice.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(list.Msg.Groups))
	}
	if list.Msg.Groups[0].ID != second.ID || list.Msg.Groups[1].ID != first.ID {
		t.Error("expected newest group first")
	}

	_, err = bob.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: first.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = bob.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: first.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nonexistent-id"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.anonymous().groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestUpdateGroup(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	ctx := context.Background()

	group := createGroup(t, alice, "Alice", "Bob", "Carol")
	aliceID, bobID := memberID(t, group, "Alice"), memberID(t, group, "Bob")

	addExpense(t, alice, group.ID, api.ExpenseInput{
		Description:  "Taxi",
		Amount:       30,
		PaidBy:       aliceID,
		Participants: []string{aliceID, bobID},
	})

	t.Run("rename, add and remove unused member", func(t *testing.T) {
		resp, err := alice.groups.UpdateGroup(ctx, connect.NewRequest(&api.UpdateGroupRequest{
			GroupID: group.ID,
			Name:    "Goa Trip",
			Members: []api.MemberInput{
				{ID: aliceID, Name: "Alice"},
				{ID: bobID, Name: "Robert"},
				{Name: "Dave"},
			},
		}))
		if err != nil {
			t.Fatalf("UpdateGroup failed: %v", err)
		}

		got := resp.Msg.Group
		if got.Name != "Goa Trip" {
			t.Errorf("name = %q", got.Name)
		}
		if len(got.Members) != 3 || got.Members[1].Name != "Robert" || got.Members[2].Name != "Dave" {
			t.Errorf("members = %+v", got.Members)
		}
		if len(got.Expenses) != 1 {
			t.Errorf("expected expense to survive, got %d", len(got.Expenses))
		}
	})

	t.Run("member with expenses cannot be removed", func(t *testing.T) {
		_, err := alice.groups.UpdateGroup(ctx, connect.NewRequest(&api.UpdateGroupRequest{
			GroupID: group.ID,
			Name:    "Goa Trip",
			Members: []api.MemberInput{{ID: aliceID, Name: "Alice"}, {Name: "Eve"}},
		}))
		assertCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("fewer than two members", func(t *testing.T) {
		_, err := alice.groups.UpdateGroup(ctx, connect.NewRequest(&api.UpdateGroupRequest{
			GroupID: group.ID,
			Name:    "Goa Trip",
			Members: []api.MemberInput{{ID: aliceID, Name: "Alice"}},
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	ctx := context.Background()

	group := createGroup(t, alice, "Alice", "Bob")

	if _, err := alice.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err := alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetGroupBalances(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	ctx := context.Background()

	group := createGroup(t, alice, "Alice", "Bob", "Carol")
	aliceID := memberID(t, group, "Alice")
	bobID := memberID(t, group, "Bob")
	carolID := memberID(t, group, "Carol")

	addExpense(t, alice, group.ID, api.ExpenseInput{Description: "Hotel", Amount: 300, PaidBy: aliceID})
	addExpense(t, alice, group.ID, api.ExpenseInput{
		Description:  "Dinner",
		Amount:       150,
		PaidBy:       bobID,
		Participants: []string{bobID, carolID},
	})

	resp, err := alice.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}

	wantBalances := map[string]float64{"Alice": 200, "Bob": -25, "Carol": -175}
	if len(resp.Msg.Balances) != 3 {
		t.Fatalf("expected 3 balances, got %d", len(resp.Msg.Balances))
	}
	for _, b := range resp.Msg.Balances {
		assertAmount(t, b.Name+" balance", b.Balance, wantBalances[b.Name])
	}

	want := []struct {
		from, to            string
		amount, outstanding float64
	}{
		{"Carol", "Alice", 175, 100},
		{"Bob", "Alice", 25, 100},
	}
	if len(resp.Msg.Settlements) != len(want) {
		t.Fatalf("expected %d settlements, got %+v", len(want), resp.Msg.Settlements)
	}
	for i, w := range want {
		got := resp.Msg.Settlements[i]
		if got.FromName != w.from || got.ToName != w.to {
			t.Errorf("settlement %d: %s -> %s, want %s -> %s", i, got.FromName, got.ToName, w.from, w.to)
		}
		assertAmount(t, "amount", got.Amount, w.amount)
		assertAmount(t, "outstanding", got.Outstanding, w.outstanding)
	}
}

func TestGetGroupBalances_NoExpenses(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")

	group := createGroup(t, alice, "Alice", "Bob")
	resp, err := alice.groups.GetGroupBalances(context.Background(), connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if len(resp.Msg.Balances) != 2 {
		t.Errorf("expected zero balances for both members, got %+v", resp.Msg.Balances)
	}
	for _, b := range resp.Msg.Balances {
		if b.Balance != 0 {
			t.Errorf("%s balance = %v, want 0", b.Name, b.Balance)
		}
	}
	if len(resp.Msg.Settlements) != 0 {
		t.Errorf("expected no settlements, got %+v", resp.Msg.Settlements)
	}
}
