package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/auth"
	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/middleware"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/internal/storage/sqlite"
	"github.com/mmynk/osusu/pkg/api"
	"github.com/mmynk/osusu/pkg/api/apiconnect"
)

// testClients bundles the clients of one test server.
type testClients struct {
	auth   apiconnect.AuthServiceClient
	groups apiconnect.GroupServiceClient
	payout apiconnect.PayoutServiceClient
	ledger apiconnect.LedgerServiceClient
	store  *sqlite.SQLiteStore
}

// setupTestServer creates a test server backed by a temporary SQLite database, with the
// auth interceptor on every service except AuthService.
func setupTestServer(t *testing.T, markMode rosca.MarkMode) *testClients {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authSvc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, logger)

	groups := NewGroupStore(store, store)
	requireAuth := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(authSvc))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(groups), requireAuth))
	mux.Handle(apiconnect.NewPayoutServiceHandler(NewPayoutService(groups, markMode), requireAuth))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(groups), requireAuth))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testClients{
		auth:   apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		payout: apiconnect.NewPayoutServiceClient(http.DefaultClient, server.URL),
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		store:  store,
	}
}

// testUser is a registered account and its bearer token.
type testUser struct {
	ID    string
	Token string
}

func (c *testClients) register(t *testing.T, name, email, phone string) testUser {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Phone:       phone,
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return testUser{ID: resp.Msg.User.ID, Token: resp.Msg.Token}
}

// as attaches the user's bearer token to msg.
func as[T any](u testUser, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+u.Token)
	return req
}

func (c *testClients) createGroup(t *testing.T, admin testUser, order models.PayoutOrder, maxMembers int) models.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), as(admin, &api.CreateGroupRequest{
		Name:               "Market Women",
		ContributionAmount: 50,
		Frequency:          string(models.FrequencyMonthly),
		StartDate:          time.Now().AddDate(0, -1, 0),
		PayoutOrder:        string(order),
		MaxMembers:         maxMembers,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// join submits a join request for u and has admin approve it.
func (c *testClients) join(t *testing.T, groupID string, admin, u testUser) models.Group {
	t.Helper()
	ctx := context.Background()
	sub, err := c.groups.SubmitJoinRequest(ctx, as(u, &api.SubmitJoinRequestRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("SubmitJoinRequest failed: %v", err)
	}
	resp, err := c.groups.ApproveJoinRequest(ctx, as(admin, &api.ApproveJoinRequestRequest{
		GroupID:   groupID,
		RequestID: sub.Msg.Request.ID,
	}))
	if err != nil {
		t.Fatalf("ApproveJoinRequest failed: %v", err)
	}
	return resp.Msg.Group
}

// assertCode checks the connect code and, when reason is set, the error reason metadata.
func assertCode(t *testing.T, err error, code connect.Code, reason string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", code)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != code {
		t.Fatalf("expected code %v, got %v (%v)", code, connectErr.Code(), err)
	}
	if reason != "" {
		if got := connectErr.Meta().Get(apperrors.MetaReason); got != reason {
			t.Errorf("expected reason %q, got %q", reason, got)
		}
	}
}
