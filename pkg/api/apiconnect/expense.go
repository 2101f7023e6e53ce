package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

const ExpenseServiceName = "settleup.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure = "/settleup.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure    = "/settleup.v1.ExpenseService/GetExpense"
	ExpenseServiceListExpensesProcedure  = "/settleup.v1.ExpenseService/ListExpenses"
	ExpenseServiceDeleteExpenseProcedure = "/settleup.v1.ExpenseService/DeleteExpense"
	ExpenseServiceResolveSplitProcedure  = "/settleup.v1.ExpenseService/ResolveSplit"
)

type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ResolveSplit(context.Context, *connect.Request[api.ResolveSplitRequest]) (*connect.Response[api.ResolveSplitResponse], error)
}

func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceListExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceResolveSplitProcedure, connect.NewUnaryHandler(ExpenseServiceResolveSplitProcedure, svc.ResolveSplit, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

type ExpenseServiceClient struct {
	createExpense *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense    *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listExpenses  *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	deleteExpense *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	resolveSplit  *connect.Client[api.ResolveSplitRequest, api.ResolveSplitResponse]
}

func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		createExpense: newClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		getExpense:    newClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, opts),
		listExpenses:  newClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		deleteExpense: newClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
		resolveSplit:  newClient[api.ResolveSplitRequest, api.ResolveSplitResponse](httpClient, baseURL, ExpenseServiceResolveSplitProcedure, opts),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ResolveSplit(ctx context.Context, req *connect.Request[api.ResolveSplitRequest]) (*connect.Response[api.ResolveSplitResponse], error) {
	return c.resolveSplit.CallUnary(ctx, req)
}
