package events

import "context"

// Publisher announces that a group's expenses changed. *Client implements it.
type Publisher interface {
	PublishGroupChanged(ctx context.Context, groupID, reason string) error
}

var _ Publisher = (*Client)(nil)
