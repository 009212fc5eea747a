package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/api"
	iauth "github.com/apartguide/apartguide/internal/auth"
	sharedtestutil "github.com/apartguide/apartguide/internal/database/testutil"
	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/crypto"
	"github.com/apartguide/apartguide/pkg/mail"
	"github.com/apartguide/apartguide/pkg/response"
)

// CaptureMailer records outbound messages instead of delivering them.
type CaptureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *CaptureMailer) Send(_ context.Context, msg mail.Message) (mail.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return mail.Result{MessageID: "msg_capture"}, nil
}

// Sent returns a copy of the captured messages.
func (m *CaptureMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mail.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T      *testing.T
	DB     *gorm.DB
	Router *gin.Engine
	JWT    *iauth.JWTService
	Mailer *CaptureMailer
}

// NewEnv provisions a fresh handler test environment with migrations and seed data applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-suite-super-secret-key-32-bytes!!",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	sessionSvc, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{
		RefreshTokenTTL: 24 * time.Hour,
		RefreshLength:   48,
	})
	require.NoError(t, err)

	mailer := &CaptureMailer{}
	baseURL := "https://admin.apartguide.test"

	emailSvc, err := services.NewEmailService(db, mailer)
	require.NoError(t, err)
	accountSvc, err := services.NewAccountService(db, emailSvc, services.WithAccountBaseURL(baseURL))
	require.NoError(t, err)
	profileSvc, err := services.NewProfileService(db)
	require.NoError(t, err)
	invitationSvc, err := services.NewInvitationService(db, emailSvc, services.WithInvitationBaseURL(baseURL))
	require.NoError(t, err)
	memberSvc, err := services.NewTeamMemberService(db, accountSvc)
	require.NoError(t, err)
	propertySvc, err := services.NewPropertyService(db)
	require.NoError(t, err)
	resetSvc, err := services.NewPasswordResetService(db, emailSvc, services.WithResetBaseURL(baseURL))
	require.NoError(t, err)
	dashboardSvc, err := services.NewDashboardService(db, invitationSvc)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Deps{
		DB:          db,
		JWT:         jwtSvc,
		Sessions:    sessionSvc,
		Accounts:    accountSvc,
		Profiles:    profileSvc,
		Invitations: invitationSvc,
		TeamMembers: memberSvc,
		Properties:  propertySvc,
		Email:       emailSvc,
		Resets:      resetSvc,
		Dashboard:   dashboardSvc,
	})
	require.NoError(t, err)

	return &Env{
		T:      t,
		DB:     db,
		Router: router,
		JWT:    jwtSvc,
		Mailer: mailer,
	}
}

// CreateUser inserts an account plus profile with the given role and returns the account.
func (e *Env) CreateUser(role roles.Role, password string) *models.Account {
	e.T.Helper()

	email := string(role) + "-" + uuid.NewString() + "@example.com"
	hashed, err := crypto.HashPassword(password)
	require.NoError(e.T, err)

	account := &models.Account{
		Email:          email,
		Password:       hashed,
		EmailConfirmed: true,
	}
	require.NoError(e.T, e.DB.Create(account).Error)

	profile := &models.Profile{
		ID:        account.ID,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      string(role),
	}
	require.NoError(e.T, e.DB.Create(profile).Error)
	return account
}

// TokenPair mirrors the handler session response payload.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionPayload bundles the JSON response from the auth endpoints that issue sessions.
type SessionPayload struct {
	Tokens  TokenPair      `json:"tokens"`
	Profile models.Profile `json:"profile"`
	Flags   roles.Flags    `json:"flags"`
	Warning string         `json:"warning"`
}

// Login authenticates with email and password and returns the issued session payload.
func (e *Env) Login(email, password string) SessionPayload {
	e.T.Helper()

	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	w := e.Request(http.MethodPost, "/api/auth/login", payload, "")
	require.Equal(e.T, http.StatusOK, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var result SessionPayload
	DecodeInto(e.T, resp.Data, &result)
	require.NotEmpty(e.T, result.Tokens.AccessToken)
	require.NotEmpty(e.T, result.Tokens.RefreshToken)
	require.Equal(e.T, email, result.Profile.Email)

	return result
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
