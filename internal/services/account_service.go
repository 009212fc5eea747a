package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/pkg/crypto"
	"github.com/apartguide/apartguide/pkg/logger"
	"github.com/apartguide/apartguide/pkg/metrics"
)

var (
	// ErrAccountNotFound indicates no account matches the identifier.
	ErrAccountNotFound = errors.New("account: not found")
	// ErrAccountEmailTaken indicates an account already uses the email.
	ErrAccountEmailTaken = errors.New("account: email already registered")
	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrPasswordMismatch rejects registration when the confirmation differs.
	ErrPasswordMismatch = errors.New("account: passwords do not match")
)

// RegisterInput is the self-service signup payload.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// CreateUserInput provisions an account with an explicit role.
type CreateUserInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	Role         string
	EmailConfirm bool
}

// InviteUserInput provisions an account immediately with a temporary
// password and emails the activation link.
type InviteUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// InviteUserResult reports the provisioned identity, the one-time temporary
// password the invitee signs in with, and any email warning.
type InviteUserResult struct {
	Account      *models.Account
	Profile      *models.Profile
	TempPassword string
	Warning      string
}

// EmailCheck reports whether an email is already known and where.
type EmailCheck struct {
	Exists bool   `json:"exists"`
	Source string `json:"source,omitempty"`
}

// AccountOption customises AccountService behaviour.
type AccountOption func(*AccountService)

// WithAccountClock injects a custom clock primarily for testing.
func WithAccountClock(clock func() time.Time) AccountOption {
	return func(s *AccountService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithAccountBaseURL sets the public base URL used in emailed links.
func WithAccountBaseURL(base string) AccountOption {
	return func(s *AccountService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithAccountRand injects a deterministic random source for testing.
func WithAccountRand(r *rand.Rand) AccountOption {
	return func(s *AccountService) {
		if r != nil {
			s.rand = newLockedRand(r)
		}
	}
}

// AccountService owns account lifecycle: registration, login verification,
// admin provisioning and deletion, and the email existence check.
type AccountService struct {
	db      *gorm.DB
	email   *EmailService
	baseURL string
	now     func() time.Time
	rand    *lockedRand
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB, email *EmailService, opts ...AccountOption) (*AccountService, error) {
	if db == nil {
		return nil, errors.New("account service: db is required")
	}

	service := &AccountService{
		db:    db,
		email: email,
		now:   time.Now,
		rand:  newLockedRand(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Register creates a guest account and profile from the signup form. The
// password confirmation is checked before anything is written.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*models.Account, *models.Profile, error) {
	if input.Password != input.ConfirmPassword {
		return nil, nil, ErrPasswordMismatch
	}
	if len(input.Password) < minActivationPassword {
		return nil, nil, ErrPasswordTooShort
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, nil, errors.New("account service: email is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("account service: hash password: %w", err)
	}

	account := &models.Account{
		Email:    email,
		Password: hashed,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, nil, ErrAccountEmailTaken
		}
		return nil, nil, fmt.Errorf("account service: create account: %w", err)
	}

	profile := &models.Profile{
		ID:        account.ID,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      string(roles.Guest),
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, nil, fmt.Errorf("account service: create profile: %w", err)
	}

	return account, profile, nil
}

// Authenticate verifies credentials and stamps the login metadata.
func (s *AccountService) Authenticate(ctx context.Context, email, password, ip string) (*models.Account, *models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("account service: find account: %w", err)
	}

	if !crypto.VerifyPassword(account.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, nil, ErrInvalidCredentials
	}

	now := s.now()
	updates := map[string]any{
		"last_login_at": now,
		"last_login_ip": strings.TrimSpace(ip),
	}
	if err := s.db.WithContext(ctx).Model(&account).Updates(updates).Error; err != nil {
		logger.WithModule("accounts").Warn("failed to stamp login",
			zap.String("account_id", account.ID),
			zap.Error(err),
		)
	}
	account.LastLoginAt = &now

	profile, err := s.profileByID(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &account, profile, nil
}

// GetAccount fetches an account by identifier.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Take(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: get account: %w", err)
	}
	return &account, nil
}

// SetPassword replaces the account password and clears the forced-change flag.
func (s *AccountService) SetPassword(ctx context.Context, accountID, newPassword string) error {
	if len(newPassword) < minActivationPassword {
		return ErrPasswordTooShort
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("account service: hash password: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"password":              hashed,
			"needs_password_change": false,
		})
	if result.Error != nil {
		return fmt.Errorf("account service: set password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CreateUser provisions an account and profile with an explicit role.
func (s *AccountService) CreateUser(ctx context.Context, input CreateUserInput) (*models.Account, *models.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, nil, errors.New("account service: email is required")
	}
	if len(input.Password) < minActivationPassword {
		return nil, nil, ErrPasswordTooShort
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("account service: hash password: %w", err)
	}

	account := &models.Account{
		Email:          email,
		Password:       hashed,
		EmailConfirmed: input.EmailConfirm,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, nil, ErrAccountEmailTaken
		}
		return nil, nil, fmt.Errorf("account service: create account: %w", err)
	}

	profile := &models.Profile{
		ID:        account.ID,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      string(roles.Parse(input.Role)),
	}
	if err := s.upsertProfile(ctx, profile); err != nil {
		return nil, nil, err
	}

	return account, profile, nil
}

// InviteUser provisions an account immediately with a generated temporary
// password, upserts the profile, flips has_account on the matching team
// member rows, and emails the activation link. The email is a soft failure.
func (s *AccountService) InviteUser(ctx context.Context, input InviteUserInput) (*InviteUserResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, errors.New("account service: email is required")
	}

	tempPassword := generateTempPassword(s.rand)
	hashed, err := crypto.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("account service: hash password: %w", err)
	}

	account := &models.Account{
		Email:               email,
		Password:            hashed,
		EmailConfirmed:      true,
		NeedsPasswordChange: true,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAccountEmailTaken
		}
		return nil, fmt.Errorf("account service: create account: %w", err)
	}

	profile := &models.Profile{
		ID:        account.ID,
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      string(roles.Parse(input.Role)),
	}
	if err := s.upsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("email = ?", email).
		Update("has_account", true).Error; err != nil {
		logger.WithModule("accounts").Warn("failed to flag team member",
			zap.String("email", email),
			zap.Error(err),
		)
	}

	result := &InviteUserResult{Account: account, Profile: profile, TempPassword: tempPassword}

	if s.email != nil {
		if _, err := s.email.Send(ctx, SendInput{
			TemplateName: TemplateInvitation,
			To:           email,
			Data: map[string]string{
				"first_name":      profile.FirstName,
				"invitation_link": s.baseURL + "/auth/set-password",
			},
			UserID: &account.ID,
		}); err != nil {
			logger.WithModule("accounts").Warn("invite email failed",
				zap.String("email", email),
				zap.Error(err),
			)
			result.Warning = "account created but the email could not be sent"
		}
	}

	return result, nil
}

// DeleteUser removes the profile, property team assignments, and account for
// a user. The identifier may be an id or, failing that, an email address.
// Profile and team assignment failures are logged and skipped; only the
// account deletion itself aborts the operation.
func (s *AccountService) DeleteUser(ctx context.Context, userID, email string) error {
	userID = strings.TrimSpace(userID)
	email = strings.ToLower(strings.TrimSpace(email))

	if userID == "" {
		if email == "" {
			return errors.New("account service: user id or email is required")
		}
		var account models.Account
		err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("account service: resolve account: %w", err)
		}
		userID = account.ID
	}

	log := logger.WithModule("accounts")

	if err := s.db.WithContext(ctx).Delete(&models.Profile{}, "id = ?", userID).Error; err != nil {
		log.Warn("failed to delete profile", zap.String("user_id", userID), zap.Error(err))
	}
	if err := s.db.WithContext(ctx).Delete(&models.PropertyTeamMember{}, "user_id = ?", userID).Error; err != nil {
		log.Warn("failed to delete property team rows", zap.String("user_id", userID), zap.Error(err))
	}

	result := s.db.WithContext(ctx).Delete(&models.Account{}, "id = ?", userID)
	if result.Error != nil {
		return fmt.Errorf("account service: delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CheckEmailExists reports whether the email is already present in the team
// member list or the profiles table. excludeID skips a known row when
// editing an existing record.
func (s *AccountService) CheckEmailExists(ctx context.Context, email, excludeID string) (EmailCheck, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return EmailCheck{}, errors.New("account service: email is required")
	}
	excludeID = strings.TrimSpace(excludeID)

	memberQuery := s.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("email = ?", email)
	if excludeID != "" {
		memberQuery = memberQuery.Where("id <> ?", excludeID)
	}
	var members int64
	if err := memberQuery.Count(&members).Error; err != nil {
		return EmailCheck{}, fmt.Errorf("account service: check team members: %w", err)
	}
	if members > 0 {
		return EmailCheck{Exists: true, Source: "team_members"}, nil
	}

	profileQuery := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("email = ?", email)
	if excludeID != "" {
		profileQuery = profileQuery.Where("id <> ?", excludeID)
	}
	var profiles int64
	if err := profileQuery.Count(&profiles).Error; err != nil {
		return EmailCheck{}, fmt.Errorf("account service: check profiles: %w", err)
	}
	if profiles > 0 {
		return EmailCheck{Exists: true, Source: "profiles"}, nil
	}

	return EmailCheck{}, nil
}

func (s *AccountService) profileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Take(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account service: get profile: %w", err)
	}
	return &profile, nil
}

func (s *AccountService) upsertProfile(ctx context.Context, profile *models.Profile) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "role", "updated_at"}),
		}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("account service: upsert profile: %w", err)
	}
	return nil
}
