package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/errors"
	"github.com/apartguide/apartguide/pkg/response"
)

// UsersHandler exposes the admin user provisioning endpoints.
type UsersHandler struct {
	accounts *services.AccountService
}

func NewUsersHandler(accounts *services.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accounts}
}

type createUserRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	FirstName    string `json:"first_name" validate:"max=100"`
	LastName     string `json:"last_name" validate:"max=100"`
	Role         string `json:"role" validate:"omitempty,oneof=super_admin admin team_member guest"`
	EmailConfirm bool   `json:"email_confirm"`
}

// POST /api/users
func (h *UsersHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, profile, err := h.accounts.CreateUser(requestContext(c), services.CreateUserInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		EmailConfirm: req.EmailConfirm,
	})
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"account": gin.H{"id": account.ID, "email": account.Email, "email_confirmed": account.EmailConfirmed},
		"profile": profile,
	})
}

type deleteUserRequest struct {
	UserID string `json:"user_id" validate:"omitempty,uuid4"`
	Email  string `json:"email" validate:"omitempty,email"`
}

// DELETE /api/users
func (h *UsersHandler) Delete(c *gin.Context) {
	var req deleteUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.UserID == "" && req.Email == "" {
		response.Error(c, errors.NewBadRequest("user_id or email is required"))
		return
	}

	if err := h.accounts.DeleteUser(requestContext(c), req.UserID, req.Email); err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type inviteUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=super_admin admin team_member guest"`
}

// POST /api/users/invite
func (h *UsersHandler) Invite(c *gin.Context) {
	var req inviteUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.accounts.InviteUser(requestContext(c), services.InviteUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	payload := gin.H{"profile": result.Profile, "password": result.TempPassword}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}

	response.Success(c, http.StatusCreated, payload)
}
