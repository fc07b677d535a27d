package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/pkg/api"
)

// LedgerServiceClient is a client for the LedgerService.
type LedgerServiceClient interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	GetTotals(context.Context, *connect.Request[api.GetTotalsRequest]) (*connect.Response[api.GetTotalsResponse], error)
	GetRecentActivity(context.Context, *connect.Request[api.GetRecentActivityRequest]) (*connect.Response[api.GetRecentActivityResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService. The baseURL is the server root,
// e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		recordPayment:     connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+LedgerServiceRecordPaymentProcedure, opts...),
		getTotals:         connect.NewClient[api.GetTotalsRequest, api.GetTotalsResponse](httpClient, baseURL+LedgerServiceGetTotalsProcedure, opts...),
		getRecentActivity: connect.NewClient[api.GetRecentActivityRequest, api.GetRecentActivityResponse](httpClient, baseURL+LedgerServiceGetRecentActivityProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	recordPayment     *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
	getTotals         *connect.Client[api.GetTotalsRequest, api.GetTotalsResponse]
	getRecentActivity *connect.Client[api.GetRecentActivityRequest, api.GetRecentActivityResponse]
}

func (c *ledgerServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetTotals(ctx context.Context, req *connect.Request[api.GetTotalsRequest]) (*connect.Response[api.GetTotalsResponse], error) {
	return c.getTotals.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetRecentActivity(ctx context.Context, req *connect.Request[api.GetRecentActivityRequest]) (*connect.Response[api.GetRecentActivityResponse], error) {
	return c.getRecentActivity.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server side of the LedgerService.
type LedgerServiceHandler interface {
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
	GetTotals(context.Context, *connect.Request[api.GetTotalsRequest]) (*connect.Response[api.GetTotalsResponse], error)
	GetRecentActivity(context.Context, *connect.Request[api.GetRecentActivityRequest]) (*connect.Response[api.GetRecentActivityResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation. It returns the
// path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + LedgerServiceName + "/", router{
		LedgerServiceRecordPaymentProcedure:     connect.NewUnaryHandler(LedgerServiceRecordPaymentProcedure, svc.RecordPayment, opts...),
		LedgerServiceGetTotalsProcedure:         connect.NewUnaryHandler(LedgerServiceGetTotalsProcedure, svc.GetTotals, opts...),
		LedgerServiceGetRecentActivityProcedure: connect.NewUnaryHandler(LedgerServiceGetRecentActivityProcedure, svc.GetRecentActivity, opts...),
	}
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.LedgerService.RecordPayment is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetTotals(context.Context, *connect.Request[api.GetTotalsRequest]) (*connect.Response[api.GetTotalsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.LedgerService.GetTotals is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetRecentActivity(context.Context, *connect.Request[api.GetRecentActivityRequest]) (*connect.Response[api.GetRecentActivityResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.LedgerService.GetRecentActivity is not implemented"))
}
