package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/middleware"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
)

var validate = validator.New()

// validateRequest checks the struct tags of a request message.
func validateRequest(msg any) error {
	if err := validate.Struct(msg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return toConnectError(apperrors.NewValidationError(fe.Field(), "failed on the '"+fe.Tag()+"' rule"))
		}
		return toConnectError(apperrors.NewValidationError("request", err.Error()))
	}
	return nil
}

// toConnectError maps an error to a connect error. Errors from the apperrors taxonomy carry
// their kind and reason in the response metadata.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}

	kind := apperrors.KindOf(err)
	var code connect.Code
	switch kind {
	case apperrors.KindValidation:
		code = connect.CodeInvalidArgument
	case apperrors.KindCapacity:
		code = connect.CodeResourceExhausted
	case apperrors.KindConflict:
		switch {
		case errors.Is(err, apperrors.ErrVersionConflict):
			code = connect.CodeAborted
		case errors.Is(err, apperrors.ErrOutOfTurn):
			code = connect.CodeFailedPrecondition
		default:
			code = connect.CodeAlreadyExists
		}
	case apperrors.KindAuthorization:
		code = connect.CodePermissionDenied
	case apperrors.KindNotFound:
		code = connect.CodeNotFound
	default:
		return connect.NewError(connect.CodeInternal, err)
	}

	connectErr := connect.NewError(code, err)
	connectErr.Meta().Set(apperrors.MetaKind, string(kind))
	connectErr.Meta().Set(apperrors.MetaReason, apperrors.ReasonOf(err))
	return connectErr
}

// requireCaller returns the authenticated caller.
func requireCaller(ctx context.Context) (models.UserRef, error) {
	user := middleware.GetUser(ctx)
	if user.ID == "" {
		return models.UserRef{}, connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return user, nil
}

// memberFor resolves the caller to their member entry, by ID or by phone for members the
// admin added from a contact list.
func memberFor(g *models.Group, caller models.UserRef) (models.Member, error) {
	m, ok := rosca.FindMember(g, caller)
	if !ok {
		return models.Member{}, apperrors.ErrNotMember
	}
	return m, nil
}

// adminFor resolves the caller and fails unless they are the group admin.
func adminFor(g *models.Group, caller models.UserRef) (models.Member, error) {
	m, err := memberFor(g, caller)
	if err != nil {
		return models.Member{}, apperrors.ErrNotAdmin
	}
	if m.Role != models.RoleAdmin {
		return models.Member{}, apperrors.ErrNotAdmin
	}
	return m, nil
}
