package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
)

const GroupServiceName = "monies.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure      = "/monies.v1.GroupService/CreateGroup"
	GroupServiceListGroupsProcedure       = "/monies.v1.GroupService/ListGroups"
	GroupServiceGetGroupProcedure         = "/monies.v1.GroupService/GetGroup"
	GroupServiceUpdateGroupProcedure      = "/monies.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure      = "/monies.v1.GroupService/DeleteGroup"
	GroupServiceGetGroupBalancesProcedure = "/monies.v1.GroupService/GetGroupBalances"
)

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"userId,omitempty"`
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Members     []Member  `json:"members"`
	Expenses    []Expense `json:"expenses,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CreateGroupRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Members     []string `json:"members" validate:"min=2,unique,dive,required,notblank,max=100"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

// MemberInput names a member in an update. An empty ID adds a new member.
type MemberInput struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name" validate:"required,notblank,max=100"`
}

type UpdateGroupRequest struct {
	GroupID     string        `json:"groupId" validate:"required"`
	Name        string        `json:"name" validate:"required,notblank,max=100"`
	Description string        `json:"description" validate:"max=500"`
	Members     []MemberInput `json:"members" validate:"min=2,dive"`
}

type UpdateGroupResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type MemberBalance struct {
	MemberID string  `json:"memberId"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
}

// Settlement is a planned transfer. Outstanding is what is still unsettled
// on the debtor's splits of the creditor's expenses.
type Settlement struct {
	FromMemberID string  `json:"fromMemberId"`
	FromName     string  `json:"fromName"`
	ToMemberID   string  `json:"toMemberId"`
	ToName       string  `json:"toName"`
	Amount       float64 `json:"amount"`
	Outstanding  float64 `json:"outstanding"`
}

type GetGroupBalancesResponse struct {
	Balances    []MemberBalance `json:"balances"`
	Settlements []Settlement    `json:"settlements"`
}

type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error)
	UpdateGroup(context.Context, *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error)
	GetGroupBalances(context.Context, *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error)
}

func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", route(map[string]http.Handler{
		GroupServiceCreateGroupProcedure:      connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceListGroupsProcedure:       connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceGetGroupProcedure:         connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceUpdateGroupProcedure:      connect.NewUnaryHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts...),
		GroupServiceDeleteGroupProcedure:      connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...),
		GroupServiceGetGroupBalancesProcedure: connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...),
	})
}

type GroupServiceClient struct {
	createGroup      *connect.Client[CreateGroupRequest, CreateGroupResponse]
	listGroups       *connect.Client[ListGroupsRequest, ListGroupsResponse]
	getGroup         *connect.Client[GetGroupRequest, GetGroupResponse]
	updateGroup      *connect.Client[UpdateGroupRequest, UpdateGroupResponse]
	deleteGroup      *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
	getGroupBalances *connect.Client[GetGroupBalancesRequest, GetGroupBalancesResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:      connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		listGroups:       connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		getGroup:         connect.NewClient[GetGroupRequest, GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		updateGroup:      connect.NewClient[UpdateGroupRequest, UpdateGroupResponse](httpClient, baseURL+GroupServiceUpdateGroupProcedure, opts...),
		deleteGroup:      connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		getGroupBalances: connect.NewClient[GetGroupBalancesRequest, GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[UpdateGroupRequest]) (*connect.Response[UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[GetGroupBalancesRequest]) (*connect.Response[GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
