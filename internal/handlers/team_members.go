package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/response"
)

// TeamMembersHandler manages the staff roster endpoints.
type TeamMembersHandler struct {
	members *services.TeamMemberService
}

func NewTeamMembersHandler(members *services.TeamMemberService) *TeamMembersHandler {
	return &TeamMembersHandler{members: members}
}

// GET /api/team/members
func (h *TeamMembersHandler) List(c *gin.Context) {
	members, err := h.members.List(requestContext(c), c.Query("team_type"))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, members)
}

// GET /api/team/members/:id
func (h *TeamMembersHandler) Get(c *gin.Context) {
	member, err := h.members.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, member)
}

type createTeamMemberRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"max=40"`
	Role      string `json:"role" validate:"max=100"`
	TeamType  string `json:"team_type" validate:"omitempty,oneof=cleaning service"`
}

// POST /api/team/members
func (h *TeamMembersHandler) Create(c *gin.Context) {
	var req createTeamMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member := &models.TeamMember{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		TeamType:  req.TeamType,
		CreatedBy: c.GetString(middleware.CtxUserIDKey),
	}
	if err := h.members.Create(requestContext(c), member); err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusCreated, member)
}

type updateTeamMemberRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
	Role      *string `json:"role" validate:"omitempty,max=100"`
	TeamType  *string `json:"team_type" validate:"omitempty,oneof=cleaning service"`
}

// PATCH /api/team/members/:id
func (h *TeamMembersHandler) Update(c *gin.Context) {
	var req updateTeamMemberRequest
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
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.TeamType != nil {
		updates["team_type"] = *req.TeamType
	}

	member, err := h.members.Update(requestContext(c), c.Param("id"), updates)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, member)
}

// DELETE /api/team/members/:id
func (h *TeamMembersHandler) Delete(c *gin.Context) {
	if err := h.members.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
