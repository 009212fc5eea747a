package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/apartguide/apartguide/internal/auth"
	"github.com/apartguide/apartguide/internal/middleware"
	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/errors"
	"github.com/apartguide/apartguide/pkg/response"
)

// AuthHandler manages authentication flows: registration, login, token
// refresh, logout, identity lookup, and the password reset endpoints.
type AuthHandler struct {
	accounts *services.AccountService
	profiles *services.ProfileService
	sessions *iauth.SessionService
	resets   *services.PasswordResetService
}

func NewAuthHandler(
	accounts *services.AccountService,
	profiles *services.ProfileService,
	sessions *iauth.SessionService,
	resets *services.PasswordResetService,
) *AuthHandler {
	return &AuthHandler{accounts: accounts, profiles: profiles, sessions: sessions, resets: resets}
}

type registerRequest struct {
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func sessionPayload(pair iauth.TokenPair, profile *models.Profile) gin.H {
	role := roles.Parse(profile.Role)
	return gin.H{
		"tokens":  tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
		"profile": profile,
		"flags":   roles.FlagsFor(role),
	}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, profile, err := h.accounts.Register(requestContext(c), services.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	pair, _, err := h.sessions.CreateSession(account.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusCreated, sessionPayload(pair, profile))
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, profile, err := h.accounts.Authenticate(requestContext(c), req.Email, req.Password, c.ClientIP())
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	pair, _, err := h.sessions.CreateSession(account.ID, iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	payload := sessionPayload(pair, profile)
	payload["needs_password_change"] = account.NeedsPasswordChange

	response.Success(c, http.StatusOK, payload)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, _, err := h.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(middleware.CtxSessionIDKey)
	if sid == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.sessions.RevokeSession(sid); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	account, err := h.accounts.GetAccount(requestContext(c), userID)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}
	profile, err := h.profiles.Get(requestContext(c), userID)
	if err != nil {
		response.Error(c, serviceError(err))
		return
	}

	role := roles.Parse(profile.Role)
	response.Success(c, http.StatusOK, gin.H{
		"profile":               profile,
		"flags":                 roles.FlagsFor(role),
		"email_confirmed":       account.EmailConfirmed,
		"needs_password_change": account.NeedsPasswordChange,
		"last_login_at":         account.LastLoginAt,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// Always succeed so the endpoint cannot be used to probe for accounts.
	if err := h.resets.Request(requestContext(c), req.Email); err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.resets.Reset(requestContext(c), req.Token, req.NewPassword); err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

type setPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// POST /api/auth/set-password
func (h *AuthHandler) SetPassword(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req setPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.accounts.SetPassword(requestContext(c), userID, req.NewPassword); err != nil {
		response.Error(c, serviceError(err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}

type checkEmailRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ExcludeID string `json:"exclude_id" validate:"omitempty,uuid4"`
}

// POST /api/auth/check-email
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req checkEmailRequest
	if !bindAndValidate(c, &req) {
		return
	}

	check, err := h.accounts.CheckEmailExists(requestContext(c), req.Email, req.ExcludeID)
	if err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, check)
}
