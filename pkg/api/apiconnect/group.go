package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/pkg/api"
)

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	SubmitJoinRequest(context.Context, *connect.Request[api.SubmitJoinRequestRequest]) (*connect.Response[api.SubmitJoinRequestResponse], error)
	ApproveJoinRequest(context.Context, *connect.Request[api.ApproveJoinRequestRequest]) (*connect.Response[api.ApproveJoinRequestResponse], error)
	RejectJoinRequest(context.Context, *connect.Request[api.RejectJoinRequestRequest]) (*connect.Response[api.RejectJoinRequestResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService. The baseURL is the server root,
// e.g. http://localhost:8080.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:        connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:           connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:         connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		submitJoinRequest:  connect.NewClient[api.SubmitJoinRequestRequest, api.SubmitJoinRequestResponse](httpClient, baseURL+GroupServiceSubmitJoinRequestProcedure, opts...),
		approveJoinRequest: connect.NewClient[api.ApproveJoinRequestRequest, api.ApproveJoinRequestResponse](httpClient, baseURL+GroupServiceApproveJoinRequestProcedure, opts...),
		rejectJoinRequest:  connect.NewClient[api.RejectJoinRequestRequest, api.RejectJoinRequestResponse](httpClient, baseURL+GroupServiceRejectJoinRequestProcedure, opts...),
		addMember:          connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup        *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup           *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups         *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	submitJoinRequest  *connect.Client[api.SubmitJoinRequestRequest, api.SubmitJoinRequestResponse]
	approveJoinRequest *connect.Client[api.ApproveJoinRequestRequest, api.ApproveJoinRequestResponse]
	rejectJoinRequest  *connect.Client[api.RejectJoinRequestRequest, api.RejectJoinRequestResponse]
	addMember          *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) SubmitJoinRequest(ctx context.Context, req *connect.Request[api.SubmitJoinRequestRequest]) (*connect.Response[api.SubmitJoinRequestResponse], error) {
	return c.submitJoinRequest.CallUnary(ctx, req)
}

func (c *groupServiceClient) ApproveJoinRequest(ctx context.Context, req *connect.Request[api.ApproveJoinRequestRequest]) (*connect.Response[api.ApproveJoinRequestResponse], error) {
	return c.approveJoinRequest.CallUnary(ctx, req)
}

func (c *groupServiceClient) RejectJoinRequest(ctx context.Context, req *connect.Request[api.RejectJoinRequestRequest]) (*connect.Response[api.RejectJoinRequestResponse], error) {
	return c.rejectJoinRequest.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

// GroupServiceHandler is implemented by the server side of the GroupService.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	SubmitJoinRequest(context.Context, *connect.Request[api.SubmitJoinRequestRequest]) (*connect.Response[api.SubmitJoinRequestResponse], error)
	ApproveJoinRequest(context.Context, *connect.Request[api.ApproveJoinRequestRequest]) (*connect.Response[api.ApproveJoinRequestResponse], error)
	RejectJoinRequest(context.Context, *connect.Request[api.RejectJoinRequestRequest]) (*connect.Response[api.RejectJoinRequestResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation. It returns the
// path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", router{
		GroupServiceCreateGroupProcedure:        connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceGetGroupProcedure:           connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:         connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceSubmitJoinRequestProcedure:  connect.NewUnaryHandler(GroupServiceSubmitJoinRequestProcedure, svc.SubmitJoinRequest, opts...),
		GroupServiceApproveJoinRequestProcedure: connect.NewUnaryHandler(GroupServiceApproveJoinRequestProcedure, svc.ApproveJoinRequest, opts...),
		GroupServiceRejectJoinRequestProcedure:  connect.NewUnaryHandler(GroupServiceRejectJoinRequestProcedure, svc.RejectJoinRequest, opts...),
		GroupServiceAddMemberProcedure:          connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...),
	}
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.CreateGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.GetGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.ListGroups is not implemented"))
}

func (UnimplementedGroupServiceHandler) SubmitJoinRequest(context.Context, *connect.Request[api.SubmitJoinRequestRequest]) (*connect.Response[api.SubmitJoinRequestResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.SubmitJoinRequest is not implemented"))
}

func (UnimplementedGroupServiceHandler) ApproveJoinRequest(context.Context, *connect.Request[api.ApproveJoinRequestRequest]) (*connect.Response[api.ApproveJoinRequestResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.ApproveJoinRequest is not implemented"))
}

func (UnimplementedGroupServiceHandler) RejectJoinRequest(context.Context, *connect.Request[api.RejectJoinRequestRequest]) (*connect.Response[api.RejectJoinRequestResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.RejectJoinRequest is not implemented"))
}

func (UnimplementedGroupServiceHandler) AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("osusu.v1.GroupService.AddMember is not implemented"))
}
