package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/pkg/api"
)

func TestRegisterAndLogin(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ctx := context.Background()

	reg, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "ama@example.com",
		DisplayName: "Ama",
		Phone:       "+233200000001",
		Password:    "correct-horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" || reg.Msg.User.ID == "" || reg.Msg.User.Phone != "+233200000001" {
		t.Errorf("unexpected register response %+v", reg.Msg)
	}

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "ama@example.com", Password: "correct-horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("expected the registered user, got %s", login.Msg.User.ID)
	}

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "ama@example.com", Password: "wrong-horse"}))
	assertCode(t, err, connect.CodeUnauthenticated, "")
}

func TestRegister_Errors(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ctx := context.Background()
	c.register(t, "Ama", "ama@example.com", "")

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{
			name: "duplicate email",
			req:  &api.RegisterRequest{Email: "ama@example.com", DisplayName: "Ama", Password: "correct-horse"},
			code: connect.CodeAlreadyExists,
		},
		{
			name: "weak password",
			req:  &api.RegisterRequest{Email: "kofi@example.com", DisplayName: "Kofi", Password: "short"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "missing name",
			req:  &api.RegisterRequest{Email: "esi@example.com", Password: "correct-horse"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "malformed email",
			req:  &api.RegisterRequest{Email: "not-an-email", DisplayName: "Yaw", Password: "correct-horse"},
			code: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.auth.Register(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, tt.code, "")
		})
	}
}
