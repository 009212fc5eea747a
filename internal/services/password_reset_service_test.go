package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/pkg/crypto"
)

func newTestPasswordResetService(t *testing.T, db *gorm.DB, mailer *captureMailer, opts ...PasswordResetOption) *PasswordResetService {
	t.Helper()

	base := []PasswordResetOption{WithResetBaseURL("https://app.apartguide.test")}
	svc, err := NewPasswordResetService(db, newTestEmailService(t, db, mailer), append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func extractResetToken(t *testing.T, html string) string {
	t.Helper()

	idx := strings.Index(html, "reset-password?token=")
	require.GreaterOrEqual(t, idx, 0)
	rest := html[idx+len("reset-password?token="):]
	if cut := strings.IndexAny(rest, "\"<& "); cut >= 0 {
		rest = rest[:cut]
	}
	token, err := url.QueryUnescape(rest)
	require.NoError(t, err)
	return token
}

func TestPasswordResetFlow(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &captureMailer{}
	svc := newTestPasswordResetService(t, db, mailer)
	accounts := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	account, _, err := accounts.Register(ctx, RegisterInput{
		Email:           "forgot@example.com",
		Password:        "original-pass",
		ConfirmPassword: "original-pass",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Request(ctx, "forgot@example.com"))
	require.Len(t, mailer.sent, 1)

	token := extractResetToken(t, mailer.sent[0].HTML)
	require.NotEmpty(t, token)

	// Only the digest is stored.
	var stored models.PasswordResetToken
	require.NoError(t, db.Take(&stored, "user_id = ?", account.ID).Error)
	require.NotEqual(t, token, stored.TokenHash)

	require.NoError(t, svc.Reset(ctx, token, "brand-new-pass"))

	var reloaded models.Account
	require.NoError(t, db.Take(&reloaded, "id = ?", account.ID).Error)
	require.True(t, crypto.VerifyPassword(reloaded.Password, "brand-new-pass"))

	// Tokens are single use.
	require.ErrorIs(t, svc.Reset(ctx, token, "another-pass"), ErrResetTokenInvalid)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &captureMailer{}
	svc := newTestPasswordResetService(t, db, mailer)

	require.NoError(t, svc.Request(context.Background(), "nobody@example.com"))
	require.Empty(t, mailer.sent)

	var tokens int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).Count(&tokens).Error)
	require.Zero(t, tokens)
}

func TestPasswordResetRequestInvalidatesPreviousToken(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &captureMailer{}
	svc := newTestPasswordResetService(t, db, mailer)
	accounts := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	account, _, err := accounts.Register(ctx, RegisterInput{
		Email:           "twice@example.com",
		Password:        "first-pass-1",
		ConfirmPassword: "first-pass-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Request(ctx, "twice@example.com"))
	require.NoError(t, svc.Request(ctx, "twice@example.com"))
	require.Len(t, mailer.sent, 2)

	first := extractResetToken(t, mailer.sent[0].HTML)
	second := extractResetToken(t, mailer.sent[1].HTML)
	require.NotEqual(t, first, second)

	// Only the newest token survives.
	var tokens int64
	require.NoError(t, db.Model(&models.PasswordResetToken{}).
		Where("user_id = ?", account.ID).
		Count(&tokens).Error)
	require.EqualValues(t, 1, tokens)

	require.ErrorIs(t, svc.Reset(ctx, first, "replaced-pass-1"), ErrResetTokenInvalid)
	require.NoError(t, svc.Reset(ctx, second, "replaced-pass-1"))
}

func TestPasswordResetExpiredToken(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &captureMailer{}
	current := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc := newTestPasswordResetService(t, db, mailer,
		WithResetClock(func() time.Time { return current }),
		WithResetExpiry(time.Hour),
	)
	accounts := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	_, _, err := accounts.Register(ctx, RegisterInput{
		Email:           "late@example.com",
		Password:        "late-pass-1",
		ConfirmPassword: "late-pass-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Request(ctx, "late@example.com"))
	token := extractResetToken(t, mailer.sent[0].HTML)

	current = current.Add(2 * time.Hour)

	require.ErrorIs(t, svc.Reset(ctx, token, "whatever-pass"), ErrResetTokenInvalid)

	removed, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestPasswordResetBadToken(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestPasswordResetService(t, db, &captureMailer{})

	require.ErrorIs(t, svc.Reset(context.Background(), "bogus", "whatever-pass"), ErrResetTokenInvalid)
	require.ErrorIs(t, svc.Reset(context.Background(), "", "whatever-pass"), ErrResetTokenInvalid)
}
