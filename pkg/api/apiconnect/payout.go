package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/pkg/api"
)

// PayoutServiceClient is a client for the PayoutService.
type PayoutServiceClient interface {
	GetPayoutStatus(context.Context, *connect.Request[api.GetPayoutStatusRequest]) (*connect.Response[api.GetPayoutStatusResponse], error)
	CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error)
	FinalizeRound(context.Context, *connect.Request[api.FinalizeRoundRequest]) (*connect.Response[api.FinalizeRoundResponse], error)
	MarkReceived(context.Context, *connect.Request[api.MarkReceivedRequest]) (*connect.Response[api.MarkReceivedResponse], error)
	AssignCollector(context.Context, *connect.Request[api.AssignCollectorRequest]) (*connect.Response[api.AssignCollectorResponse], error)
	GetCollector(context.Context, *connect.Request[api.GetCollectorRequest]) (*connect.Response[api.GetCollectorResponse], error)
}

// NewPayoutServiceClient constructs a client for the PayoutService. The baseURL is the server root,
// e.g. http://localhost:8080.
func NewPayoutServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PayoutServiceClient {
	opts = clientOptions(opts)
	return &payoutServiceClient{
		getPayoutStatus: connect.NewClient[api.GetPayoutStatusRequest, api.GetPayoutStatusResponse](httpClient, baseURL+PayoutServiceGetPayoutStatusProcedure, opts...),
		castVote:        connect.NewClient[api.CastVoteRequest, api.CastVoteResponse](httpClient, baseURL+PayoutServiceCastVoteProcedure, opts...),
		finalizeRound:   connect.NewClient[api.FinalizeRoundRequest, api.FinalizeRoundResponse](httpClient, baseURL+PayoutServiceFinalizeRoundProcedure, opts...),
		markReceived:    connect.NewClient[api.MarkReceivedRequest, api.MarkReceivedResponse](httpClient, baseURL+PayoutServiceMarkReceivedProcedure, opts...),
		assignCollector: connect.NewClient[api.AssignCollectorRequest, api.AssignCollectorResponse](httpClient, baseURL+PayoutServiceAssignCollectorProcedure, opts...),
		getCollector:    connect.NewClient[api.GetCollectorRequest, api.GetCollectorResponse](httpClient, baseURL+PayoutServiceGetCollectorProcedure, opts...),
	}
}

type payoutServiceClient struct {
	getPayoutStatus *connect.Client[api.GetPayoutStatusRequest, api.GetPayoutStatusResponse]
	castVote        *connect.Client[api.CastVoteRequest, api.CastVoteResponse]
	finalizeRound   *connect.Client[api.FinalizeRoundRequest, api.FinalizeRoundResponse]
	markReceived    *connect.Client[api.MarkReceivedRequest, api.MarkReceivedResponse]
	assignCollector *connect.Client[api.AssignCollectorRequest, api.AssignCollectorResponse]
	getCollector    *connect.Client[api.GetCollectorRequest, api.GetCollectorResponse]
}

func (c *payoutServiceClient) GetPayoutStatus(ctx context.Context, req *connect.Request[api.GetPayoutStatusRequest]) (*connect.Response[api.GetPayoutStatusResponse], error) {
	return c.getPayoutStatus.CallUnary(ctx, req)
}

func (c *payoutServiceClient) CastVote(ctx context.Context, req *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	return c.castVote.CallUnary(ctx, req)
}

func (c *payoutServiceClient) FinalizeRound(ctx context.Context, req *connect.Request[api.FinalizeRoundRequest]) (*connect.Response[api.FinalizeRoundResponse], error) {
	return c.finalizeRound.CallUnary(ctx, req)
}

func (c *payoutServiceClient) MarkReceived(ctx context.Context, req *connect.Request[api.MarkReceivedRequest]) (*connect.Response[api.MarkReceivedResponse], error) {
	return c.markReceived.CallUnary(ctx, req)
}

func (c *payoutServiceClient) AssignCollector(ctx context.Context, req *connect.Request[api.AssignCollectorRequest]) (*connect.Response[api.AssignCollectorResponse], error) {
	return c.assignCollector.CallUnary(ctx, req)
}

func (c *payoutServiceClient) GetCollector(ctx context.Context, req *connect.Request[api.GetCollectorRequest]) (*connect.Response[api.GetCollectorResponse], error) {
	return c.getCollector.CallUnary(ctx, req)
}

// PayoutServiceHandler is implemented by the server side of the PayoutService.
type PayoutServiceHandler interface {
	GetPayoutStatus(context.Context, *connect.Request[api.GetPayoutStatusRequest]) (*connect.Response[api.GetPayoutStatusResponse], error)
	CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error)
	FinalizeRound(context.Context, *connect.Request[api.FinalizeRoundRequest]) (*connect.Response[api.FinalizeRoundResponse], error)
	MarkReceived(context.Context, *connect.Request[api.MarkReceivedRequest]) (*connect.Response[api.MarkReceivedResponse], error)
	AssignCollector(context.Context, *connect.Request[api.AssignCollectorRequest]) (*connect.Response[api.AssignCollectorResponse], error)
	GetCollector(context.Context, *connect.Request[api.GetCollectorRequest]) (*connect.Response[api.GetCollectorResponse], error)
}

// NewPayoutServiceHandler builds an HTTP handler from the service implementation. It returns the
// path on which to mount the handler and the handler itself.
func NewPayoutServiceHandler(svc PayoutServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + PayoutServiceName + "/", router{
		PayoutServiceGetPayoutStatusProcedure: connect.NewUnaryHandler(PayoutServiceGetPayoutStatusProcedure, svc.GetPayoutStatus, opts...),
		PayoutServiceCastVoteProcedure:        connect.NewUnaryHandler(PayoutServiceCastVoteProcedure, svc.CastVote, opts...),
		PayoutServiceFinalizeRoundProcedure:   connect.NewUnaryHandler(PayoutServiceFinalizeRoundProcedure, svc.FinalizeRound, opts...),
		PayoutServiceMarkReceivedProcedure:    connect.NewUnaryHandler(PayoutServiceMarkReceivedProcedure, svc.MarkReceived, opts...),
		PayoutServiceAssignCollectorProcedure: connect.NewUnaryHandler(PayoutServiceAssignCollectorProcedure, svc.AssignCollector, opts...),
		PayoutServiceGetCollectorProcedure:    connect.NewUnaryHandler(PayoutServiceGetCollectorProcedure, svc.GetCollector, opts...),
	}
}

// UnimplementedPayoutServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedPayoutServiceHandler struct{}

func (UnimplementedPayoutServiceHandler) GetPayoutStatus(context.Context, *connect.Request[api.GetPayoutStatusRequest]) (*connect.Response[api.GetPayoutStatusResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.PayoutService.GetPayoutStatus is not implemented"))
}

func (UnimplementedPayoutServiceHandler) CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.PayoutService.CastVote is not implemented"))
}

func (UnimplementedPayoutServiceHandler) FinalizeRound(context.Context, *connect.Request[api.FinalizeRoundRequest]) (*connect.Response[api.FinalizeRoundResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.PayoutService.FinalizeRound is not implemented"))
}

func (UnimplementedPayoutServiceHandler) MarkReceived(context.Context, *connect.Request[api.MarkReceivedRequest]) (*connect.Response[api.MarkReceivedResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.PayoutService.MarkReceived is not implemented"))
}

func (UnimplementedPayoutServiceHandler) AssignCollector(context.Context, *connect.Request[api.AssignCollectorRequest]) (*connect.Response[api.AssignCollectorResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.PayoutService.AssignCollector is not implemented"))
}

func (UnimplementedPayoutServiceHandler) GetCollector(context.Context, *connect.Request[api.GetCollectorRequest]) (*connect.Response[api.GetCollectorResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.PayoutService.GetCollector is not implemented"))
}
