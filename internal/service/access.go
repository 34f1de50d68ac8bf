package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/internal/auth"
	"github.com/raaksss/Monies/internal/middleware"
	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/internal/storage"
)

// callerID returns the authenticated user or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// ownedGroup loads a group and checks that the caller created it.
func ownedGroup(ctx context.Context, groups storage.GroupStore, groupID string) (*models.Group, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	group, err := groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, fmt.Errorf("group %s: %w", groupID, errNotGroupOwner)
	}
	return group, nil
}
