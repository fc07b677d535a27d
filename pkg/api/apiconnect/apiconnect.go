// Package apiconnect wires the api messages to connect handlers and clients.
package apiconnect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/pkg/api"
)

// Service names.
const (
	AuthServiceName   = "osusu.v1.AuthService"
	GroupServiceName  = "osusu.v1.GroupService"
	PayoutServiceName = "osusu.v1.PayoutService"
	LedgerServiceName = "osusu.v1.LedgerService"
)

// Procedure paths, as they appear in the URL path.
const (
	AuthServiceRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure    = "/" + AuthServiceName + "/Login"

	GroupServiceCreateGroupProcedure        = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure           = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure         = "/" + GroupServiceName + "/ListGroups"
	GroupServiceSubmitJoinRequestProcedure  = "/" + GroupServiceName + "/SubmitJoinRequest"
	GroupServiceApproveJoinRequestProcedure = "/" + GroupServiceName + "/ApproveJoinRequest"
	GroupServiceRejectJoinRequestProcedure  = "/" + GroupServiceName + "/RejectJoinRequest"
	GroupServiceAddMemberProcedure          = "/" + GroupServiceName + "/AddMember"

	PayoutServiceGetPayoutStatusProcedure = "/" + PayoutServiceName + "/GetPayoutStatus"
	PayoutServiceCastVoteProcedure        = "/" + PayoutServiceName + "/CastVote"
	PayoutServiceFinalizeRoundProcedure   = "/" + PayoutServiceName + "/FinalizeRound"
	PayoutServiceMarkReceivedProcedure    = "/" + PayoutServiceName + "/MarkReceived"
	PayoutServiceAssignCollectorProcedure = "/" + PayoutServiceName + "/AssignCollector"
	PayoutServiceGetCollectorProcedure    = "/" + PayoutServiceName + "/GetCollector"

	LedgerServiceRecordPaymentProcedure     = "/" + LedgerServiceName + "/RecordPayment"
	LedgerServiceGetTotalsProcedure         = "/" + LedgerServiceName + "/GetTotals"
	LedgerServiceGetRecentActivityProcedure = "/" + LedgerServiceName + "/GetRecentActivity"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
}

// router dispatches a service's procedures by URL path.
type router map[string]http.Handler

func (r router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}
