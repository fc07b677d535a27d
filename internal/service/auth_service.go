package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/auth"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/pkg/api"
	"github.com/mmynk/osusu/pkg/api/apiconnect"
)

// AuthService issues session tokens. It is the only service mounted without RequireAuth.
type AuthService struct {
	apiconnect.UnimplementedAuthServiceHandler
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{authenticator: authenticator, jwtManager: jwtManager, logger: logger}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Phone, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Registration rejected", "email", req.Msg.Email, "error", err)
		return nil, registrationError(err)
	}

	token, err := s.session(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Member registered", "user_id", user.ID, "has_phone", user.Phone != "")
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token}), nil
}

// Login exchanges an email and password for a session token. Every failure looks the same
// to the caller.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.Warn("Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.session(user)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Member logged in", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

func (s *AuthService) session(user *models.User) (string, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Token signing failed", "user_id", user.ID, "error", err)
		return "", connect.NewError(connect.CodeInternal, err)
	}
	return token, nil
}

func registrationError(err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrMissingName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		CreatedAt:   u.CreatedAt,
	}
}
