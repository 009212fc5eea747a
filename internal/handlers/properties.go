package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/response"
)

// PropertiesHandler manages rental units and their operational teams.
type PropertiesHandler struct {
	properties *services.PropertyService
}

func NewPropertiesHandler(properties *services.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{properties: properties}
}

// GET /api/properties
func (h *PropertiesHandler) List(c *gin.Context) {
	properties, err := h.properties.List(
		requestContext(c),
		c.GetString(middleware.CtxUserIDKey),
		middleware.RoleFromContext(c),
	)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, properties)
}

// GET /api/properties/:id
func (h *PropertiesHandler) Get(c *gin.Context) {
	property, err := h.properties.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, property)
}

type createPropertyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"max=300"`
	City    string `json:"city" validate:"max=100"`
	Country string `json:"country" validate:"max=100"`
}

// POST /api/properties
func (h *PropertiesHandler) Create(c *gin.Context) {
	var req createPropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	property := &models.Property{
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
		OwnerID: c.GetString(middleware.CtxUserIDKey),
	}
	if err := h.properties.Create(requestContext(c), property); err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusCreated, property)
}

type updatePropertyRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	City    *string `json:"city" validate:"omitempty,max=100"`
	Country *string `json:"country" validate:"omitempty,max=100"`
}

// PATCH /api/properties/:id
func (h *PropertiesHandler) Update(c *gin.Context) {
	var req updatePropertyRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}

	property, err := h.properties.Update(
		requestContext(c),
		c.Param("id"),
		c.GetString(middleware.CtxUserIDKey),
		middleware.RoleFromContext(c),
		updates,
	)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, property)
}

// DELETE /api/properties/:id
func (h *PropertiesHandler) Delete(c *gin.Context) {
	err := h.properties.Delete(
		requestContext(c),
		c.Param("id"),
		c.GetString(middleware.CtxUserIDKey),
		middleware.RoleFromContext(c),
	)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/properties/:id/team
func (h *PropertiesHandler) ListTeam(c *gin.Context) {
	team, err := h.properties.ListTeam(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, team)
}

type assignTeamMemberRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid4"`
	TeamRole string `json:"team_role" validate:"required,oneof=cleaning maintenance reception other"`
}

// POST /api/properties/:id/team
func (h *PropertiesHandler) AssignTeamMember(c *gin.Context) {
	var req assignTeamMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	assignment, err := h.properties.AssignTeamMember(
		requestContext(c),
		c.Param("id"),
		c.GetString(middleware.CtxUserIDKey),
		middleware.RoleFromContext(c),
		req.UserID,
		req.TeamRole,
	)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusCreated, assignment)
}

// DELETE /api/properties/:id/team/:userId
func (h *PropertiesHandler) RemoveTeamMember(c *gin.Context) {
	err := h.properties.RemoveTeamMember(
		requestContext(c),
		c.Param("id"),
		c.GetString(middleware.CtxUserIDKey),
		middleware.RoleFromContext(c),
		c.Param("userId"),
	)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
