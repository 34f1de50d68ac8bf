package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestGroupChangedMessageFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  string
		wantErr bool
	}{
		{"valid", `{"group_id":"g1","reason":"expense_added","timestamp":"2026-01-02T03:04:05Z"}`, "g1", false},
		{"missing group", `{"reason":"expense_added"}`, "", true},
		{"not json", `group g1 changed`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := GroupChangedMessageFromJSON([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && msg.GroupID != tt.wantID {
				t.Errorf("GroupID = %q, want %q", msg.GroupID, tt.wantID)
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	valid, err := NewGroupChangedMessage("g1", ReasonExpenseAdded).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var handled []string
	ok := func(_ context.Context, msg *GroupChangedMessage) error {
		handled = append(handled, msg.GroupID)
		return nil
	}
	failing := func(context.Context, *GroupChangedMessage) error {
		return errors.New("database locked")
	}

	tests := []struct {
		name    string
		body    []byte
		handler Handler
		want    outcome
	}{
		{"handled", valid, ok, outcomeAck},
		{"malformed is dropped", []byte("{"), ok, outcomeDrop},
		{"handler error requeues", valid, failing, outcomeRequeue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dispatch(context.Background(), logger, tt.body, tt.handler); got != tt.want {
				t.Errorf("dispatch = %v, want %v", got, tt.want)
			}
		})
	}

	if len(handled) != 1 || handled[0] != "g1" {
		t.Errorf("handled = %v, want [g1]", handled)
	}
}
