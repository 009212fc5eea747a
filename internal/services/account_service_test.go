package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/pkg/crypto"
)

func newTestAccountService(t *testing.T, db *gorm.DB, mailer *captureMailer) *AccountService {
	t.Helper()

	svc, err := NewAccountService(db, newTestEmailService(t, db, mailer),
		WithAccountBaseURL("https://app.apartguide.test"),
	)
	require.NoError(t, err)
	return svc
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})

	_, _, err := svc.Register(context.Background(), RegisterInput{
		FirstName:       "Nina",
		Email:           "nina@example.com",
		Password:        "password-one",
		ConfirmPassword: "password-two",
	})
	require.ErrorIs(t, err, ErrPasswordMismatch)

	// Nothing may be written before the confirmation check.
	var accounts, profiles int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	require.Zero(t, accounts)
	require.Zero(t, profiles)
}

func TestRegisterCreatesGuestAccount(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})

	account, profile, err := svc.Register(context.Background(), RegisterInput{
		FirstName:       "Nina",
		LastName:        "Petrov",
		Email:           "Nina@Example.com",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "nina@example.com", account.Email)
	require.Equal(t, account.ID, profile.ID)
	require.Equal(t, "guest", profile.Role)
	require.True(t, crypto.VerifyPassword(account.Password, "secret-pass"))

	_, _, err = svc.Register(context.Background(), RegisterInput{
		Email:           "nina@example.com",
		Password:        "secret-pass",
		ConfirmPassword: "secret-pass",
	})
	require.ErrorIs(t, err, ErrAccountEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{
		Email:           "login@example.com",
		Password:        "correct-pass",
		ConfirmPassword: "correct-pass",
	})
	require.NoError(t, err)

	account, profile, err := svc.Authenticate(ctx, "login@example.com", "correct-pass", "192.0.2.1")
	require.NoError(t, err)
	require.NotNil(t, account.LastLoginAt)
	require.Equal(t, account.ID, profile.ID)

	_, _, err = svc.Authenticate(ctx, "login@example.com", "wrong-pass", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Authenticate(ctx, "ghost@example.com", "correct-pass", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetPassword(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	account, _, err := svc.Register(ctx, RegisterInput{
		Email:           "change@example.com",
		Password:        "before-pass",
		ConfirmPassword: "before-pass",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(account).Update("needs_password_change", true).Error)

	require.ErrorIs(t, svc.SetPassword(ctx, account.ID, "tiny"), ErrPasswordTooShort)
	require.NoError(t, svc.SetPassword(ctx, account.ID, "after-pass"))

	var reloaded models.Account
	require.NoError(t, db.Take(&reloaded, "id = ?", account.ID).Error)
	require.True(t, crypto.VerifyPassword(reloaded.Password, "after-pass"))
	require.False(t, reloaded.NeedsPasswordChange)
}

func TestCreateUserWithRole(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})

	account, profile, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:        "admin@example.com",
		Password:     "admin-pass",
		FirstName:    "Ad",
		LastName:     "Min",
		Role:         "admin",
		EmailConfirm: true,
	})
	require.NoError(t, err)
	require.True(t, account.EmailConfirmed)
	require.Equal(t, "admin", profile.Role)

	// Unknown roles fall back to guest.
	_, profile2, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "odd@example.com",
		Password: "odd-pass-1",
		Role:     "warlord",
	})
	require.NoError(t, err)
	require.Equal(t, "guest", profile2.Role)
}

func TestInviteUserProvisionsAccount(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAccountService(t, db, mailer)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.TeamMember{
		FirstName: "Tess", LastName: "Okafor", Email: "tess@example.com",
	}).Error)

	result, err := svc.InviteUser(ctx, InviteUserInput{
		Email:     "Tess@Example.com",
		FirstName: "Tess",
		LastName:  "Okafor",
		Role:      "team_member",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warning)
	require.True(t, result.Account.NeedsPasswordChange)
	require.True(t, result.Account.EmailConfirmed)
	require.Equal(t, "team_member", result.Profile.Role)

	// The caller gets the plaintext temporary password and it matches the
	// stored hash, otherwise the invitee could never sign in.
	require.Regexp(t, `^[a-z0-9]{10}[A-Z0-9]{2}!1$`, result.TempPassword)
	require.True(t, crypto.VerifyPassword(result.Account.Password, result.TempPassword))

	var member models.TeamMember
	require.NoError(t, db.Take(&member, "email = ?", "tess@example.com").Error)
	require.True(t, member.HasAccount)

	require.Len(t, mailer.sent, 1)
}

func TestDeleteUserCascades(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	account, profile, err := svc.Register(ctx, RegisterInput{
		Email:           "gone@example.com",
		Password:        "gone-pass",
		ConfirmPassword: "gone-pass",
	})
	require.NoError(t, err)

	owner := &models.Profile{ID: "11111111-1111-1111-1111-111111111111", Email: "owner@example.com", Role: "admin"}
	require.NoError(t, db.Create(owner).Error)
	property := &models.Property{Name: "Seaside Loft", OwnerID: owner.ID}
	require.NoError(t, db.Create(property).Error)
	require.NoError(t, db.Create(&models.PropertyTeamMember{
		PropertyID: property.ID,
		UserID:     profile.ID,
		TeamRole:   "cleaning",
	}).Error)

	// Resolve by email when the id is absent.
	require.NoError(t, svc.DeleteUser(ctx, "", "gone@example.com"))

	var accounts, profiles, assignments int64
	require.NoError(t, db.Model(&models.Account{}).Where("id = ?", account.ID).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", profile.ID).Count(&profiles).Error)
	require.NoError(t, db.Model(&models.PropertyTeamMember{}).Where("user_id = ?", profile.ID).Count(&assignments).Error)
	require.Zero(t, accounts)
	require.Zero(t, profiles)
	require.Zero(t, assignments)

	require.ErrorIs(t, svc.DeleteUser(ctx, "", "gone@example.com"), ErrAccountNotFound)
}

func TestCheckEmailExists(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newTestAccountService(t, db, &captureMailer{})
	ctx := context.Background()

	member := &models.TeamMember{FirstName: "A", LastName: "B", Email: "shared@example.com"}
	require.NoError(t, db.Create(member).Error)

	check, err := svc.CheckEmailExists(ctx, "shared@example.com", "")
	require.NoError(t, err)
	require.True(t, check.Exists)
	require.Equal(t, "team_members", check.Source)

	// Excluding the row hides it again.
	check, err = svc.CheckEmailExists(ctx, "shared@example.com", member.ID)
	require.NoError(t, err)
	require.False(t, check.Exists)

	require.NoError(t, db.Create(&models.Profile{
		ID:    "22222222-2222-2222-2222-222222222222",
		Email: "profiled@example.com",
		Role:  "guest",
	}).Error)

	check, err = svc.CheckEmailExists(ctx, "profiled@example.com", "")
	require.NoError(t, err)
	require.True(t, check.Exists)
	require.Equal(t, "profiles", check.Source)

	check, err = svc.CheckEmailExists(ctx, "unknown@example.com", "")
	require.NoError(t, err)
	require.False(t, check.Exists)
}
