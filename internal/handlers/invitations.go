package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/apartguide/apartguide/internal/auth"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/errors"
	"github.com/apartguide/apartguide/pkg/response"
)

// InvitationHandler exposes invitation issuance for admins and the public
// lookup/verify/activate endpoints driving the activation screen.
type InvitationHandler struct {
	invitations *services.InvitationService
	sessions    *iauth.SessionService
}

func NewInvitationHandler(invitations *services.InvitationService, sessions *iauth.SessionService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations, sessions: sessions}
}

type issueInvitationRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Role      string `json:"role" validate:"max=100"`
	TeamType  string `json:"team_type" validate:"omitempty,oneof=cleaning service"`
}

// POST /api/team/invitations
func (h *InvitationHandler) Issue(c *gin.Context) {
	var req issueInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.Issue(requestContext(c), services.IssueInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		TeamType:  req.TeamType,
		CreatedBy: c.GetString(middleware.CtxUserIDKey),
	})
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	payload := gin.H{
		"invitation":  result.Invitation,
		"team_member": result.TeamMember,
	}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}

	response.Success(c, http.StatusCreated, payload)
}

// GET /api/team/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	pendingOnly := strings.EqualFold(c.Query("status"), "pending")

	invitations, err := h.invitations.List(requestContext(c), pendingOnly)
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, invitations)
}

// GET /api/auth/invitation?email=
func (h *InvitationHandler) Lookup(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		response.Error(c, errors.NewBadRequest("email is required"))
		return
	}

	invitation, err := h.invitations.Lookup(requestContext(c), email)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, invitation)
}

type verifyInvitationRequest struct {
	Email        string `json:"email" validate:"required,email"`
	TempPassword string `json:"temp_password" validate:"required"`
}

// POST /api/auth/invitation/verify
func (h *InvitationHandler) Verify(c *gin.Context) {
	var req verifyInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invitation, err := h.invitations.Verify(requestContext(c), req.Email, req.TempPassword)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"verified":   true,
		"first_name": invitation.FirstName,
		"last_name":  invitation.LastName,
	})
}

type activateInvitationRequest struct {
	Email        string `json:"email" validate:"required,email"`
	TempPassword string `json:"temp_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=6"`
}

// POST /api/auth/invitation/activate
func (h *InvitationHandler) Activate(c *gin.Context) {
	var req activateInvitationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invitations.Activate(requestContext(c), services.ActivateInput{
		Email:        req.Email,
		TempPassword: req.TempPassword,
		NewPassword:  req.NewPassword,
	})
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	pair, _, err := h.sessions.CreateSession(result.Account.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	payload := sessionPayload(pair, result.Profile)
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}

	response.Success(c, http.StatusOK, payload)
}
