package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
)

const DebtServiceName = "monies.v1.DebtService"

const (
	DebtServiceCreateDebtProcedure     = "/monies.v1.DebtService/CreateDebt"
	DebtServiceListDebtsProcedure      = "/monies.v1.DebtService/ListDebts"
	DebtServiceUpdateDebtProcedure     = "/monies.v1.DebtService/UpdateDebt"
	DebtServiceDeleteDebtProcedure     = "/monies.v1.DebtService/DeleteDebt"
	DebtServiceGetDebtSummaryProcedure = "/monies.v1.DebtService/GetDebtSummary"
)

// Debt is a personal debt. Positive amounts are owed by the caller to the person,
// negative amounts are owed by the person to the caller.
type Debt struct {
	ID         string    `json:"id"`
	PersonName string    `json:"personName"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateDebtRequest struct {
	PersonName string  `json:"personName" validate:"required,notblank,max=100"`
	Amount     float64 `json:"amount" validate:"required"`
}

type CreateDebtResponse struct {
	Debt *Debt `json:"debt"`
}

type ListDebtsRequest struct{}

type ListDebtsResponse struct {
	Debts []*Debt `json:"debts"`
}

type UpdateDebtRequest struct {
	DebtID     string  `json:"debtId" validate:"required"`
	PersonName string  `json:"personName" validate:"required,notblank,max=100"`
	Amount     float64 `json:"amount" validate:"required"`
}

type UpdateDebtResponse struct {
	Debt *Debt `json:"debt"`
}

type DeleteDebtRequest struct {
	DebtID string `json:"debtId" validate:"required"`
}

type DeleteDebtResponse struct{}

type GetDebtSummaryRequest struct{}

type PersonSummary struct {
	PersonName   string  `json:"personName"`
	Total        float64 `json:"total"`
	Transactions []*Debt `json:"transactions"`
}

type GetDebtSummaryResponse struct {
	People []PersonSummary `json:"people"`
}

type DebtServiceHandler interface {
	CreateDebt(context.Context, *connect.Request[CreateDebtRequest]) (*connect.Response[CreateDebtResponse], error)
	ListDebts(context.Context, *connect.Request[ListDebtsRequest]) (*connect.Response[ListDebtsResponse], error)
	UpdateDebt(context.Context, *connect.Request[UpdateDebtRequest]) (*connect.Response[UpdateDebtResponse], error)
	DeleteDebt(context.Context, *connect.Request[DeleteDebtRequest]) (*connect.Response[DeleteDebtResponse], error)
	GetDebtSummary(context.Context, *connect.Request[GetDebtSummaryRequest]) (*connect.Response[GetDebtSummaryResponse], error)
}

func NewDebtServiceHandler(svc DebtServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + DebtServiceName + "/", route(map[string]http.Handler{
		DebtServiceCreateDebtProcedure:     connect.NewUnaryHandler(DebtServiceCreateDebtProcedure, svc.CreateDebt, opts...),
		DebtServiceListDebtsProcedure:      connect.NewUnaryHandler(DebtServiceListDebtsProcedure, svc.ListDebts, opts...),
		DebtServiceUpdateDebtProcedure:     connect.NewUnaryHandler(DebtServiceUpdateDebtProcedure, svc.UpdateDebt, opts...),
		DebtServiceDeleteDebtProcedure:     connect.NewUnaryHandler(DebtServiceDeleteDebtProcedure, svc.DeleteDebt, opts...),
		DebtServiceGetDebtSummaryProcedure: connect.NewUnaryHandler(DebtServiceGetDebtSummaryProcedure, svc.GetDebtSummary, opts...),
	})
}

type DebtServiceClient struct {
	createDebt     *connect.Client[CreateDebtRequest, CreateDebtResponse]
	listDebts      *connect.Client[ListDebtsRequest, ListDebtsResponse]
	updateDebt     *connect.Client[UpdateDebtRequest, UpdateDebtResponse]
	deleteDebt     *connect.Client[DeleteDebtRequest, DeleteDebtResponse]
	getDebtSummary *connect.Client[GetDebtSummaryRequest, GetDebtSummaryResponse]
}

func NewDebtServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DebtServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &DebtServiceClient{
		createDebt:     connect.NewClient[CreateDebtRequest, CreateDebtResponse](httpClient, baseURL+DebtServiceCreateDebtProcedure, opts...),
		listDebts:      connect.NewClient[ListDebtsRequest, ListDebtsResponse](httpClient, baseURL+DebtServiceListDebtsProcedure, opts...),
		updateDebt:     connect.NewClient[UpdateDebtRequest, UpdateDebtResponse](httpClient, baseURL+DebtServiceUpdateDebtProcedure, opts...),
		deleteDebt:     connect.NewClient[DeleteDebtRequest, DeleteDebtResponse](httpClient, baseURL+DebtServiceDeleteDebtProcedure, opts...),
		getDebtSummary: connect.NewClient[GetDebtSummaryRequest, GetDebtSummaryResponse](httpClient, baseURL+DebtServiceGetDebtSummaryProcedure, opts...),
	}
}

func (c *DebtServiceClient) CreateDebt(ctx context.Context, req *connect.Request[CreateDebtRequest]) (*connect.Response[CreateDebtResponse], error) {
	return c.createDebt.CallUnary(ctx, req)
}

func (c *DebtServiceClient) ListDebts(ctx context.Context, req *connect.Request[ListDebtsRequest]) (*connect.Response[ListDebtsResponse], error) {
	return c.listDebts.CallUnary(ctx, req)
}

func (c *DebtServiceClient) UpdateDebt(ctx context.Context, req *connect.Request[UpdateDebtRequest]) (*connect.Response[UpdateDebtResponse], error) {
	return c.updateDebt.CallUnary(ctx, req)
}

func (c *DebtServiceClient) DeleteDebt(ctx context.Context, req *connect.Request[DeleteDebtRequest]) (*connect.Response[DeleteDebtResponse], error) {
	return c.deleteDebt.CallUnary(ctx, req)
}

func (c *DebtServiceClient) GetDebtSummary(ctx context.Context, req *connect.Request[GetDebtSummaryRequest]) (*connect.Response[GetDebtSummaryResponse], error) {
	return c.getDebtSummary.CallUnary(ctx, req)
}
