// Package events carries group-change notifications between the API server
// and the settle worker.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reasons a group changed.
const (
	ReasonExpenseAdded   = "expense_added"
	ReasonExpenseUpdated = "expense_updated"
)

// GroupChangedMessage tells the worker which group to re-examine. It carries only
// the ID; the worker reloads the group from the database.
type GroupChangedMessage struct {
	GroupID   string    `json:"group_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewGroupChangedMessage(groupID, reason string) *GroupChangedMessage {
	return &GroupChangedMessage{
		GroupID:   groupID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

func (m *GroupChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// GroupChangedMessageFromJSON decodes a message and rejects ones without a group ID.
func GroupChangedMessageFromJSON(data []byte) (*GroupChangedMessage, error) {
	var msg GroupChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.GroupID == "" {
		return nil, fmt.Errorf("message has no group_id")
	}
	return &msg, nil
}
