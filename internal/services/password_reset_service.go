package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/pkg/crypto"
	"github.com/apartguide/apartguide/pkg/logger"
)

const (
	defaultResetExpiry     = time.Hour
	defaultResetTokenBytes = 32
)

var (
	// ErrResetTokenInvalid covers unknown, expired, and already-used tokens.
	ErrResetTokenInvalid = errors.New("password reset: invalid or expired token")
)

// PasswordResetOption customises PasswordResetService behaviour.
type PasswordResetOption func(*PasswordResetService)

// WithResetBaseURL sets the public base URL used in reset links.
func WithResetBaseURL(base string) PasswordResetOption {
	return func(s *PasswordResetService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithResetExpiry overrides the token lifetime.
func WithResetExpiry(d time.Duration) PasswordResetOption {
	return func(s *PasswordResetService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithResetClock injects a custom clock primarily for testing.
func WithResetClock(clock func() time.Time) PasswordResetOption {
	return func(s *PasswordResetService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// PasswordResetService issues and consumes single-use reset tokens. Only the
// SHA-256 digest of a token is persisted.
type PasswordResetService struct {
	db      *gorm.DB
	email   *EmailService
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(db *gorm.DB, email *EmailService, opts ...PasswordResetOption) (*PasswordResetService, error) {
	if db == nil {
		return nil, errors.New("password reset service: db is required")
	}

	service := &PasswordResetService{
		db:     db,
		email:  email,
		expiry: defaultResetExpiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Request issues a reset token for the account behind the email and sends
// the reset email. Unknown emails return nil so the endpoint cannot be used
// to enumerate accounts.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	var account models.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("password reset service: find account: %w", err)
	}

	rawToken, err := crypto.GenerateToken(defaultResetTokenBytes)
	if err != nil {
		return fmt.Errorf("password reset service: generate token: %w", err)
	}

	// Only the newest token stays valid. Earlier unused tokens are dropped so
	// a re-requested reset invalidates any link still sitting in an inbox.
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL", account.ID).
		Delete(&models.PasswordResetToken{}).Error; err != nil {
		return fmt.Errorf("password reset service: invalidate previous tokens: %w", err)
	}

	token := &models.PasswordResetToken{
		UserID:    account.ID,
		TokenHash: hashResetToken(rawToken),
		ExpiresAt: s.now().Add(s.expiry),
	}
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("password reset service: store token: %w", err)
	}

	var firstName string
	var profile models.Profile
	if err := s.db.WithContext(ctx).Take(&profile, "id = ?", account.ID).Error; err == nil {
		firstName = profile.FirstName
	}

	if s.email != nil {
		if _, err := s.email.Send(ctx, SendInput{
			TemplateName: TemplatePasswordReset,
			To:           email,
			Data: map[string]string{
				"first_name": firstName,
				"reset_link": fmt.Sprintf("%s/auth/reset-password?token=%s", s.baseURL, rawToken),
			},
			UserID: &account.ID,
		}); err != nil {
			logger.WithModule("password-reset").Warn("reset email failed",
				zap.String("email", email),
				zap.Error(err),
			)
		}
	}

	return nil
}

// Reset consumes a token and sets the new account password.
func (s *PasswordResetService) Reset(ctx context.Context, rawToken, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrResetTokenInvalid
	}
	if len(newPassword) < minActivationPassword {
		return ErrPasswordTooShort
	}

	var token models.PasswordResetToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashResetToken(rawToken)).
		Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("password reset service: find token: %w", err)
	}

	now := s.now()
	if token.UsedAt != nil || token.ExpiresAt.Before(now) {
		return ErrResetTokenInvalid
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("password reset service: hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", token.UserID).
		Updates(map[string]any{
			"password":              hashed,
			"needs_password_change": false,
		}).Error; err != nil {
		return fmt.Errorf("password reset service: update password: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&token).
		Update("used_at", now).Error; err != nil {
		return fmt.Errorf("password reset service: mark used: %w", err)
	}

	return nil
}

// CleanupExpired removes spent and expired tokens.
func (s *PasswordResetService) CleanupExpired(ctx context.Context) (int64, error) {
	now := s.now()
	result := s.db.WithContext(ctx).
		Where("used_at IS NOT NULL OR expires_at < ?", now).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("password reset service: cleanup: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
