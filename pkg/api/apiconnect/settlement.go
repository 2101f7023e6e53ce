package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

const SettlementServiceName = "settleup.v1.SettlementService"

const (
	SettlementServiceGetMemberSummaryProcedure  = "/settleup.v1.SettlementService/GetMemberSummary"
	SettlementServiceGetGroupSummariesProcedure = "/settleup.v1.SettlementService/GetGroupSummaries"
	SettlementServiceRecordSettlementProcedure  = "/settleup.v1.SettlementService/RecordSettlement"
	SettlementServiceListSettlementsProcedure   = "/settleup.v1.SettlementService/ListSettlements"
	SettlementServiceDeleteSettlementProcedure  = "/settleup.v1.SettlementService/DeleteSettlement"
)

type SettlementServiceHandler interface {
	GetMemberSummary(context.Context, *connect.Request[api.GetMemberSummaryRequest]) (*connect.Response[api.GetMemberSummaryResponse], error)
	GetGroupSummaries(context.Context, *connect.Request[api.GetGroupSummariesRequest]) (*connect.Response[api.GetGroupSummariesResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
}

func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceGetMemberSummaryProcedure, connect.NewUnaryHandler(SettlementServiceGetMemberSummaryProcedure, svc.GetMemberSummary, opts...))
	mux.Handle(SettlementServiceGetGroupSummariesProcedure, connect.NewUnaryHandler(SettlementServiceGetGroupSummariesProcedure, svc.GetGroupSummaries, opts...))
	mux.Handle(SettlementServiceRecordSettlementProcedure, connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opts...))
	mux.Handle(SettlementServiceListSettlementsProcedure, connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts...))
	mux.Handle(SettlementServiceDeleteSettlementProcedure, connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...))
	return "/" + SettlementServiceName + "/", mux
}

type SettlementServiceClient struct {
	getMemberSummary  *connect.Client[api.GetMemberSummaryRequest, api.GetMemberSummaryResponse]
	getGroupSummaries *connect.Client[api.GetGroupSummariesRequest, api.GetGroupSummariesResponse]
	recordSettlement  *connect.Client[api.RecordSettlementRequest, api.RecordSettlementResponse]
	listSettlements   *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	deleteSettlement  *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
}

func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		getMemberSummary:  newClient[api.GetMemberSummaryRequest, api.GetMemberSummaryResponse](httpClient, baseURL, SettlementServiceGetMemberSummaryProcedure, opts),
		getGroupSummaries: newClient[api.GetGroupSummariesRequest, api.GetGroupSummariesResponse](httpClient, baseURL, SettlementServiceGetGroupSummariesProcedure, opts),
		recordSettlement:  newClient[api.RecordSettlementRequest, api.RecordSettlementResponse](httpClient, baseURL, SettlementServiceRecordSettlementProcedure, opts),
		listSettlements:   newClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL, SettlementServiceListSettlementsProcedure, opts),
		deleteSettlement:  newClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](httpClient, baseURL, SettlementServiceDeleteSettlementProcedure, opts),
	}
}

func (c *SettlementServiceClient) GetMemberSummary(ctx context.Context, req *connect.Request[api.GetMemberSummaryRequest]) (*connect.Response[api.GetMemberSummaryResponse], error) {
	return c.getMemberSummary.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetGroupSummaries(ctx context.Context, req *connect.Request[api.GetGroupSummariesRequest]) (*connect.Response[api.GetGroupSummariesResponse], error) {
	return c.getGroupSummaries.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}
