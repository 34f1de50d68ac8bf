package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/internal/calculator"
	"github.com/raaksss/Monies/internal/models"
	"github.com/raaksss/Monies/internal/storage"
	"github.com/raaksss/Monies/pkg/api"
)

// GroupService implements api.GroupServiceHandler. Every call is scoped to groups
// the caller created.
type GroupService struct {
	store  storage.GroupStore
	logger *slog.Logger
}

func NewGroupService(store storage.GroupStore, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

// CreateGroup creates a group with at least two members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	s.logger.Info("CreateGroup request received", "name", req.Msg.Name, "members_count", len(req.Msg.Members))
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        strings.TrimSpace(req.Msg.Name),
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   userID,
	}
	for _, name := range req.Msg.Members {
		group.Members = append(group.Members, models.Member{Name: strings.TrimSpace(name)})
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the caller's groups, newest first, without expenses.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	s.logger.Info("ListGroups request received")
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, connectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// GetGroup returns a group with its members, expenses and splits.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	s.logger.Info("GetGroup request received", "group_id", req.Msg.GroupID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		s.logger.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// UpdateGroup renames the group and reconciles its roster.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	s.logger.Info("UpdateGroup request received", "group_id", req.Msg.GroupID, "members_count", len(req.Msg.Members))
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	group.Name = strings.TrimSpace(req.Msg.Name)
	group.Description = strings.TrimSpace(req.Msg.Description)
	group.Members = make([]models.Member, len(req.Msg.Members))
	for i, m := range req.Msg.Members {
		group.Members[i] = models.Member{ID: m.ID, Name: strings.TrimSpace(m.Name)}
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		s.logger.Warn("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, connectError(err)
	}

	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(err)
	}

	s.logger.Info("Group updated", "group_id", group.ID)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(updated)}), nil
}

// DeleteGroup removes a group with all of its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	s.logger.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := ownedGroup(ctx, s.store, req.Msg.GroupID); err != nil {
		return nil, connectError(err)
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		s.logger.Error("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupBalances returns each member's net balance and the transfers that settle them.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	s.logger.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	group, err := ownedGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(err)
	}

	summary := summarize(group)
	resp := &api.GetGroupBalancesResponse{
		Balances:    make([]api.MemberBalance, len(summary.balances)),
		Settlements: make([]api.Settlement, len(summary.plan)),
	}
	for i, b := range summary.balances {
		resp.Balances[i] = api.MemberBalance{MemberID: b.ID, Name: b.Name, Balance: calculator.RoundCents(b.Balance)}
	}
	for i, t := range summary.plan {
		outstanding, _ := calculator.Outstanding(summary.expenses, t.From.ID, t.To.ID)
		resp.Settlements[i] = api.Settlement{
			FromMemberID: t.From.ID,
			FromName:     t.From.Name,
			ToMemberID:   t.To.ID,
			ToName:       t.To.Name,
			Amount:       t.Amount,
			Outstanding:  calculator.RoundCents(outstanding),
		}
	}

	s.logger.Debug("Balances computed", "group_id", group.ID, "transfers", len(summary.plan))
	return connect.NewResponse(resp), nil
}

type groupSummary struct {
	expenses []calculator.Expense
	balances []calculator.MemberBalance
	plan     []calculator.Transfer
}

func summarize(group *models.Group) groupSummary {
	expenses := calcExpenses(group)
	members := calcMembers(group)
	balances := calculator.ComputeBalances(expenses)
	return groupSummary{
		expenses: expenses,
		balances: calculator.RosterBalances(members, balances),
		plan:     calculator.PlanSettlements(members, balances),
	}
}
