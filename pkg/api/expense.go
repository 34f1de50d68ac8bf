package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
)

const ExpenseServiceName = "monies.v1.ExpenseService"

const (
	ExpenseServiceAddExpenseProcedure    = "/monies.v1.ExpenseService/AddExpense"
	ExpenseServiceUpdateExpenseProcedure = "/monies.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure = "/monies.v1.ExpenseService/DeleteExpense"
	ExpenseServiceSettleSplitProcedure   = "/monies.v1.ExpenseService/SettleSplit"
	ExpenseServiceSettleUpProcedure      = "/monies.v1.ExpenseService/SettleUp"
	ExpenseServiceAutoSettleProcedure    = "/monies.v1.ExpenseService/AutoSettle"
)

type Split struct {
	ID        string     `json:"id"`
	MemberID  string     `json:"memberId"`
	Amount    float64    `json:"amount"`
	IsSettled bool       `json:"isSettled"`
	SettledAt *time.Time `json:"settledAt,omitempty"`
}

type Expense struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	PaidBy      string    `json:"paidBy"`
	Splits      []Split   `json:"splits"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ShareInput is a percentage or an exact amount for one member, depending on the split type.
type ShareInput struct {
	MemberID string  `json:"memberId" validate:"required"`
	Value    float64 `json:"value" validate:"gte=0"`
}

// ExpenseInput is shared by AddExpense and UpdateExpense. For equal splits Participants
// selects who shares the cost (everyone when empty); other split types use Shares.
type ExpenseInput struct {
	Description  string       `json:"description" validate:"required,notblank,max=200"`
	Amount       float64      `json:"amount" validate:"gt=0"`
	PaidBy       string       `json:"paidBy" validate:"required"`
	SplitType    string       `json:"splitType" validate:"omitempty,oneof=equal percentage exact"`
	Participants []string     `json:"participants,omitempty" validate:"unique,dive,required"`
	Shares       []ShareInput `json:"shares,omitempty" validate:"dive"`
}

// ReciprocalPair reports two splits settled against each other.
type ReciprocalPair struct {
	ExpenseA string  `json:"expenseA"`
	SplitA   string  `json:"splitA"`
	ExpenseB string  `json:"expenseB"`
	SplitB   string  `json:"splitB"`
	Amount   float64 `json:"amount"`
}

type AddExpenseRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	ExpenseInput
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
	// AutoSettled is filled when reciprocal settlement runs inline.
	AutoSettled []ReciprocalPair `json:"autoSettled,omitempty"`
}

type UpdateExpenseRequest struct {
	ExpenseID string `json:"expenseId" validate:"required"`
	ExpenseInput
}

type UpdateExpenseResponse struct {
	Expense     *Expense         `json:"expense"`
	AutoSettled []ReciprocalPair `json:"autoSettled,omitempty"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId" validate:"required"`
}

type DeleteExpenseResponse struct{}

type SettleSplitRequest struct {
	SplitID string `json:"splitId" validate:"required"`
}

type SettleSplitResponse struct {
	Split *Split `json:"split"`
}

type SettleUpRequest struct {
	GroupID      string `json:"groupId" validate:"required"`
	FromMemberID string `json:"fromMemberId" validate:"required"`
	ToMemberID   string `json:"toMemberId" validate:"required,nefield=FromMemberID"`
}

type SettleUpResponse struct {
	Amount   float64  `json:"amount"`
	SplitIDs []string `json:"splitIds"`
}

type AutoSettleRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type AutoSettleResponse struct {
	Pairs []ReciprocalPair `json:"pairs"`
}

type ExpenseServiceHandler interface {
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	SettleSplit(context.Context, *connect.Request[SettleSplitRequest]) (*connect.Response[SettleSplitResponse], error)
	SettleUp(context.Context, *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error)
	AutoSettle(context.Context, *connect.Request[AutoSettleRequest]) (*connect.Response[AutoSettleResponse], error)
}

func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", route(map[string]http.Handler{
		ExpenseServiceAddExpenseProcedure:    connect.NewUnaryHandler(ExpenseServiceAddExpenseProcedure, svc.AddExpense, opts...),
		ExpenseServiceUpdateExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure: connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		ExpenseServiceSettleSplitProcedure:   connect.NewUnaryHandler(ExpenseServiceSettleSplitProcedure, svc.SettleSplit, opts...),
		ExpenseServiceSettleUpProcedure:      connect.NewUnaryHandler(ExpenseServiceSettleUpProcedure, svc.SettleUp, opts...),
		ExpenseServiceAutoSettleProcedure:    connect.NewUnaryHandler(ExpenseServiceAutoSettleProcedure, svc.AutoSettle, opts...),
	})
}

type ExpenseServiceClient struct {
	addExpense    *connect.Client[AddExpenseRequest, AddExpenseResponse]
	updateExpense *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	settleSplit   *connect.Client[SettleSplitRequest, SettleSplitResponse]
	settleUp      *connect.Client[SettleUpRequest, SettleUpResponse]
	autoSettle    *connect.Client[AutoSettleRequest, AutoSettleResponse]
}

func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		addExpense:    connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+ExpenseServiceAddExpenseProcedure, opts...),
		updateExpense: connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense: connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		settleSplit:   connect.NewClient[SettleSplitRequest, SettleSplitResponse](httpClient, baseURL+ExpenseServiceSettleSplitProcedure, opts...),
		settleUp:      connect.NewClient[SettleUpRequest, SettleUpResponse](httpClient, baseURL+ExpenseServiceSettleUpProcedure, opts...),
		autoSettle:    connect.NewClient[AutoSettleRequest, AutoSettleResponse](httpClient, baseURL+ExpenseServiceAutoSettleProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) SettleSplit(ctx context.Context, req *connect.Request[SettleSplitRequest]) (*connect.Response[SettleSplitResponse], error) {
	return c.settleSplit.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) SettleUp(ctx context.Context, req *connect.Request[SettleUpRequest]) (*connect.Response[SettleUpResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) AutoSettle(ctx context.Context, req *connect.Request[AutoSettleRequest]) (*connect.Response[AutoSettleResponse], error) {
	return c.autoSettle.CallUnary(ctx, req)
}
