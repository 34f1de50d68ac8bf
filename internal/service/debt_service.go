package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/internal/calculator"
	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/internal/storage"
	"github.com/raaksss/Monies/pkg/api"
)

// DebtService implements api.DebtServiceHandler over the caller's personal ledger.
type DebtService struct {
	store  storage.DebtStore
	logger *slog.Logger
}

// NewDebtService creates a DebtService over the given store.
func NewDebtService(store storage.DebtStore, logger *slog.Logger) *DebtService {
	return &DebtService{store: store, logger: logger}
}

// ownedDebt loads a debt of the caller. Other users' debts are reported as not found.
func (s *DebtService) ownedDebt(ctx context.Context, debtID string) (*models.PersonalDebt, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.UserID != userID {
		return nil, fmt.Errorf("debt %s: %w", debtID, storage.ErrNotFound)
	}
	return debt, nil
}

// CreateDebt records a signed debt with one person. Positive means the caller owes them.
func (s *DebtService) CreateDebt(ctx context.Context, req *connect.Request[api.CreateDebtRequest]) (*connect.Response[api.CreateDebtResponse], error) {
	s.logger.Info("CreateDebt request received", "person_name", req.Msg.PersonName, "amount", req.Msg.Amount)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	debt := &models.PersonalDebt{
		UserID:     userID,
		PersonName: strings.TrimSpace(req.Msg.PersonName),
		Amount:     calculator.RoundCents(req.Msg.Amount),
	}
	if calculator.IsZero(debt.Amount) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount must not be zero"))
	}
	if err := s.store.CreateDebt(ctx, debt); err != nil {
		s.logger.Error("CreateDebt failed", "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Debt recorded", "debt_id", debt.ID, "amount", debt.Amount)
	return connect.NewResponse(&api.CreateDebtResponse{Debt: toAPIDebt(debt)}), nil
}

// ListDebts returns the caller's debts, newest first.
func (s *DebtService) ListDebts(ctx context.Context, req *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	s.logger.Info("ListDebts request received")
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	debts, err := s.store.ListDebtsByUser(ctx, userID)
	if err != nil {
		return nil, connectError(err)
	}

	out := make([]*api.Debt, len(debts))
	for i, d := range debts {
		out[i] = toAPIDebt(d)
	}
	return connect.NewResponse(&api.ListDebtsResponse{Debts: out}), nil
}

// UpdateDebt changes the person and amount of one of the caller's debts.
func (s *DebtService) UpdateDebt(ctx context.Context, req *connect.Request[api.UpdateDebtRequest]) (*connect.Response[api.UpdateDebtResponse], error) {
	s.logger.Info("UpdateDebt request received", "debt_id", req.Msg.DebtID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	debt, err := s.ownedDebt(ctx, req.Msg.DebtID)
	if err != nil {
		return nil, connectError(err)
	}

	debt.PersonName = strings.TrimSpace(req.Msg.PersonName)
	debt.Amount = calculator.RoundCents(req.Msg.Amount)
	if calculator.IsZero(debt.Amount) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("amount must not be zero"))
	}
	if err := s.store.UpdateDebt(ctx, debt); err != nil {
		return nil, connectError(err)
	}

	s.logger.Info("Debt updated", "debt_id", debt.ID)
	return connect.NewResponse(&api.UpdateDebtResponse{Debt: toAPIDebt(debt)}), nil
}

// DeleteDebt removes one of the caller's debts.
func (s *DebtService) DeleteDebt(ctx context.Context, req *connect.Request[api.DeleteDebtRequest]) (*connect.Response[api.DeleteDebtResponse], error) {
	s.logger.Info("DeleteDebt request received", "debt_id", req.Msg.DebtID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := s.ownedDebt(ctx, req.Msg.DebtID); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteDebt(ctx, req.Msg.DebtID); err != nil {
		return nil, connectError(err)
	}

	s.logger.Info("Debt deleted", "debt_id", req.Msg.DebtID)
	return connect.NewResponse(&api.DeleteDebtResponse{}), nil
}

// GetDebtSummary groups the caller's debts by person, newest first.
func (s *DebtService) GetDebtSummary(ctx context.Context, req *connect.Request[api.GetDebtSummaryRequest]) (*connect.Response[api.GetDebtSummaryResponse], error) {
	s.logger.Info("GetDebtSummary request received")
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	debts, err := s.store.ListDebtsByUser(ctx, userID)
	if err != nil {
		return nil, connectError(err)
	}

	summaries := calculator.SummarizeDebts(calcDebts(debts))
	byID := make(map[string]*models.PersonalDebt, len(debts))
	for _, d := range debts {
		byID[d.ID] = d
	}

	people := make([]api.PersonSummary, len(summaries))
	for i, p := range summaries {
		people[i] = api.PersonSummary{
			PersonName:   p.DisplayName,
			Total:        calculator.RoundCents(p.Total),
			Transactions: make([]*api.Debt, len(p.Transactions)),
		}
		for j, t := range p.Transactions {
			people[i].Transactions[j] = toAPIDebt(byID[t.ID])
		}
	}
	return connect.NewResponse(&api.GetDebtSummaryResponse{People: people}), nil
}
