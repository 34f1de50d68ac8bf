package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/internal/calculator"
	"github.com/raaksss/Monies/internal/events"
	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/internal/storage"
	"github.com/raaksss/Monies/pkg/api"
)

// ExpenseService implements api.ExpenseServiceHandler.
//
// After an expense is added or updated, reciprocal splits are settled inline when
// publisher is nil. Otherwise a group-changed event is published and the settle
// worker does it.
type ExpenseService struct {
	store     storage.GroupStore
	settler   *Settler
	publisher events.Publisher
	logger    *slog.Logger
}

func NewExpenseService(store storage.GroupStore, settler *Settler, publisher events.Publisher, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, settler: settler, publisher: publisher, logger: logger}
}

// buildSplits validates the payer and participants against the roster and computes the splits.
func buildSplits(group *models.Group, in api.ExpenseInput) ([]models.Split, error) {
	if _, ok := group.MemberByID(in.PaidBy); !ok {
		return nil, fmt.Errorf("payer %s: %w", in.PaidBy, errUnknownMember)
	}

	splitType := calculator.SplitType(in.SplitType)
	members := group.MemberIDs()
	if (splitType == calculator.SplitEqual || splitType == "") && len(in.Participants) > 0 {
		for _, id := range in.Participants {
			if _, ok := group.MemberByID(id); !ok {
				return nil, fmt.Errorf("participant %s: %w", id, errUnknownMember)
			}
		}
		members = in.Participants
	}

	shares := make([]calculator.ShareInput, len(in.Shares))
	for i, sh := range in.Shares {
		shares[i] = calculator.ShareInput{MemberID: sh.MemberID, Value: sh.Value}
	}

	computed, err := calculator.CalculateSplits(in.Amount, splitType, shares, members)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	var splits []models.Split
	for _, sh := range computed {
		if calculator.IsZero(sh.Amount) {
			continue
		}
		splits = append(splits, models.Split{MemberID: sh.MemberID, Amount: sh.Amount})
	}
	return splits, nil
}

// AddExpense records an expense and its splits.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	s.logger.Info("AddExpense request received", "group_id", req.Msg.GroupID, "amount", req.Msg.Amount, "split_type", req.Msg.SplitType)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var expense *models.Expense
	err := s.settler.withGroupLock(ctx, req.Msg.GroupID, func() error {
		group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
		if err != nil {
			return err
		}
		splits, err := buildSplits(group, req.Msg.ExpenseInput)
		if err != nil {
			return err
		}

		expense = &models.Expense{
			GroupID:     group.ID,
			Description: strings.TrimSpace(req.Msg.Description),
			Amount:      calculator.RoundCents(req.Msg.Amount),
			PaidBy:      req.Msg.PaidBy,
			Splits:      splits,
		}
		return s.store.CreateExpense(ctx, expense)
	})
	if err != nil {
		s.logger.Warn("AddExpense failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	s.logger.Info("Expense added", "group_id", expense.GroupID, "expense_id", expense.ID, "amount", expense.Amount)

	pairs := s.afterChange(ctx, expense.GroupID, events.ReasonExpenseAdded)
	if len(pairs) > 0 {
		if expense, err = s.store.GetExpense(ctx, expense.ID); err != nil {
			return nil, connectError(err)
		}
	}

	return connect.NewResponse(&api.AddExpenseResponse{
		Expense:     toAPIExpense(expense),
		AutoSettled: toAPIPairs(pairs),
	}), nil
}

// UpdateExpense rewrites an expense. All of its splits are replaced and start unsettled.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	s.logger.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	current, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}

	// An expense never moves between groups, so the lock key is stable.
	var expense *models.Expense
	err = s.settler.withGroupLock(ctx, current.GroupID, func() error {
		group, err := ownedGroup(ctx, s.store, current.GroupID)
		if err != nil {
			return err
		}
		splits, err := buildSplits(group, req.Msg.ExpenseInput)
		if err != nil {
			return err
		}

		expense = &models.Expense{
			ID:          current.ID,
			GroupID:     current.GroupID,
			Description: strings.TrimSpace(req.Msg.Description),
			Amount:      calculator.RoundCents(req.Msg.Amount),
			PaidBy:      req.Msg.PaidBy,
			Splits:      splits,
			CreatedAt:   current.CreatedAt,
		}
		return s.store.UpdateExpense(ctx, expense)
	})
	if err != nil {
		s.logger.Warn("UpdateExpense failed", "expense_id", current.ID, "error", err)
		return nil, connectError(err)
	}
	s.logger.Info("Expense updated", "group_id", expense.GroupID, "expense_id", expense.ID)

	pairs := s.afterChange(ctx, expense.GroupID, events.ReasonExpenseUpdated)
	if len(pairs) > 0 {
		if expense, err = s.store.GetExpense(ctx, expense.ID); err != nil {
			return nil, connectError(err)
		}
	}

	return connect.NewResponse(&api.UpdateExpenseResponse{
		Expense:     toAPIExpense(expense),
		AutoSettled: toAPIPairs(pairs),
	}), nil
}

// DeleteExpense removes an expense and its splits.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	s.logger.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(err)
	}
	err = s.settler.withGroupLock(ctx, expense.GroupID, func() error {
		if _, err := ownedGroup(ctx, s.store, expense.GroupID); err != nil {
			return err
		}
		return s.store.DeleteExpense(ctx, expense.ID)
	})
	if err != nil {
		s.logger.Warn("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Expense deleted", "group_id", expense.GroupID, "expense_id", expense.ID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// SettleSplit marks one split settled. Settled splits stay settled.
func (s *ExpenseService) SettleSplit(ctx context.Context, req *connect.Request[api.SettleSplitRequest]) (*connect.Response[api.SettleSplitResponse], error) {
	s.logger.Info("SettleSplit request received", "split_id", req.Msg.SplitID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	_, groupID, err := s.store.GetSplit(ctx, req.Msg.SplitID)
	if err != nil {
		return nil, connectError(err)
	}
	if _, err := ownedGroup(ctx, s.store, groupID); err != nil {
		return nil, connectError(err)
	}

	split, err := s.settler.SettleSplit(ctx, groupID, req.Msg.SplitID)
	if err != nil {
		s.logger.Error("SettleSplit failed", "split_id", req.Msg.SplitID, "error", err)
		return nil, connectError(err)
	}

	out := toAPISplit(split)
	return connect.NewResponse(&api.SettleSplitResponse{Split: &out}), nil
}

// SettleUp records that one member paid another everything outstanding between them.
func (s *ExpenseService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	s.logger.Info("SettleUp request received", "group_id", req.Msg.GroupID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	amount, ids, err := s.settler.SettleUp(ctx, req.Msg.GroupID, req.Msg.FromMemberID, req.Msg.ToMemberID)
	if err != nil {
		s.logger.Warn("SettleUp failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Settled up",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromMemberID,
		"to", req.Msg.ToMemberID,
		"amount", amount,
		"splits", len(ids),
	)
	return connect.NewResponse(&api.SettleUpResponse{Amount: calculator.RoundCents(amount), SplitIDs: ids}), nil
}

// AutoSettle settles every reciprocal pair in the group and returns the pairs.
func (s *ExpenseService) AutoSettle(ctx context.Context, req *connect.Request[api.AutoSettleRequest]) (*connect.Response[api.AutoSettleResponse], error) {
	s.logger.Info("AutoSettle request received", "group_id", req.Msg.GroupID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	pairs, err := s.settler.AutoSettle(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("AutoSettle failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.AutoSettleResponse{Pairs: toAPIPairs(pairs)}), nil
}

// afterChange runs reciprocal settlement for a changed group. The expense is already
// saved, so failures are logged and not returned.
func (s *ExpenseService) afterChange(ctx context.Context, groupID, reason string) []calculator.ReciprocalPair {
	if s.publisher != nil {
		if err := s.publisher.PublishGroupChanged(ctx, groupID, reason); err != nil {
			s.logger.Error("Failed to publish group change", "group_id", groupID, "error", err)
		}
		return nil
	}

	pairs, err := s.settler.AutoSettle(ctx, groupID)
	if err != nil {
		s.logger.Error("Inline auto-settle failed", "group_id", groupID, "error", err)
		return nil
	}
	return pairs
}
