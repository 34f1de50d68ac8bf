package service

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/raaksss/Monies/internal/export"
	"github.com/raaksss/Monies/pkg/api"
)

func getExport(t *testing.T, env *testEnv, groupID, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/export/groups/"+groupID, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestExportHandler(t *testing.T) {
	env := setupTestServer(t, nil)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")

	group := createGroup(t, alice, "Alice", "Bob")
	addExpense(t, alice, group.ID, api.ExpenseInput{Description: "Dinner", Amount: 80, PaidBy: memberID(t, group, "Alice")})

	resp := getExport(t, env, group.ID, alice.token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != export.ContentType {
		t.Errorf("content type = %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(export.SheetExpenses)
	if err != nil {
		t.Fatalf("failed to read expenses sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected header and 2 split rows, got %d rows", len(rows))
	}

	tests := []struct {
		name    string
		groupID string
		token   string
		want    int
	}{
		{"no token", group.ID, "", http.StatusUnauthorized},
		{"bad token", group.ID, "garbage", http.StatusUnauthorized},
		{"someone else's group", group.ID, bob.token, http.StatusForbidden},
		{"unknown group", "missing", alice.token, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := getExport(t, env, tt.groupID, tt.token)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
