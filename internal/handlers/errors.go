package handlers

import (
	"errors"
	"net/http"

	"github.com/apartguide/apartguide/internal/services"
	apperrors "github.com/apartguide/apartguide/pkg/errors"
)

// serviceError converts well-known service sentinels into API errors so
// handlers stay free of status-code bookkeeping.
func serviceError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrTeamMemberNotFound),
		errors.Is(err, services.ErrPropertyNotFound),
		errors.Is(err, services.ErrTeamAssignmentNotFound),
		errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrInvitationNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials
	case errors.Is(err, services.ErrPropertyForbidden):
		return apperrors.ErrForbidden
	case errors.Is(err, services.ErrPasswordMismatch):
		return apperrors.NewBadRequest("passwords do not match")
	case errors.Is(err, services.ErrPasswordTooShort):
		return apperrors.NewBadRequest("password must be at least 6 characters")
	case errors.Is(err, services.ErrInvitationPassword):
		return apperrors.NewBadRequest("temporary password is incorrect")
	case errors.Is(err, services.ErrTeamMemberExists):
		return apperrors.New("TEAM_MEMBER_EXISTS", "A team member with this email already exists", http.StatusConflict)
	case errors.Is(err, services.ErrAccountEmailTaken),
		errors.Is(err, services.ErrEmailTaken):
		return apperrors.New("EMAIL_TAKEN", "An account with this email already exists", http.StatusConflict)
	case errors.Is(err, services.ErrTemplateNameTaken):
		return apperrors.New("TEMPLATE_NAME_TAKEN", "A template with this name already exists", http.StatusConflict)
	case errors.Is(err, services.ErrRoleInvalid):
		return apperrors.NewBadRequest("unknown role")
	case errors.Is(err, services.ErrLastSuperAdmin):
		return apperrors.New("LAST_SUPER_ADMIN", "Cannot demote the last super admin", http.StatusConflict)
	case errors.Is(err, services.ErrTeamRoleInvalid):
		return apperrors.NewBadRequest("unknown property team role")
	case errors.Is(err, services.ErrResetTokenInvalid):
		return apperrors.NewBadRequest("reset token is invalid or expired")
	default:
		return apperrors.ErrInternalServer
	}
}
