package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/internal/auth"
	"github.com/raaksss/Monies/internal/lock"
	"github.com/raaksss/Monies/internal/storage"
)

var (
	errNotGroupOwner = errors.New("group belongs to another user")
	errUnknownMember = errors.New("member is not part of this group")
)

// connectError maps domain and storage errors onto Connect codes.
func connectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrSettlementConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, storage.ErrMemberInUse):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, lock.ErrBusy):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, errNotGroupOwner):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, errUnknownMember):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
