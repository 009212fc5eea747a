package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/errors"
	"github.com/apartguide/apartguide/pkg/response"
)

// ProfilesHandler serves profile listing, self-service edits, and the
// super-admin role update.
type ProfilesHandler struct {
	profiles *services.ProfileService
}

func NewProfilesHandler(profiles *services.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles}
}

// GET /api/profiles
func (h *ProfilesHandler) List(c *gin.Context) {
	profiles, err := h.profiles.List(requestContext(c))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, profiles)
}

// GET /api/profiles/:id
func (h *ProfilesHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, profile)
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
}

// PATCH /api/profiles/me
func (h *ProfilesHandler) UpdateOwn(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	profile, err := h.profiles.Update(requestContext(c), userID, updates)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, profile)
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=super_admin admin team_member guest"`
}

// PATCH /api/profiles/:id/role
func (h *ProfilesHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	profile, err := h.profiles.UpdateRole(requestContext(c), c.Param("id"), req.Role)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, profile)
}
