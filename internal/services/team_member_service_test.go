package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
)

func newTestTeamMemberService(t *testing.T, db *gorm.DB) (*TeamMemberService, *AccountService) {
	t.Helper()

	accounts := newTestAccountService(t, db, &captureMailer{})
	svc, err := NewTeamMemberService(db, accounts)
	require.NoError(t, err)
	return svc, accounts
}

func TestTeamMemberCreateAndList(t *testing.T) {
	db := openServiceTestDB(t)
	svc, _ := newTestTeamMemberService(t, db)
	ctx := context.Background()

	member := &models.TeamMember{
		FirstName: "Rosa",
		LastName:  "Diaz",
		Email:     "Rosa@Example.com",
		TeamType:  "cleaning",
	}
	require.NoError(t, svc.Create(ctx, member))
	require.Equal(t, "rosa@example.com", member.Email)

	dup := &models.TeamMember{FirstName: "R", LastName: "D", Email: "rosa@example.com"}
	require.ErrorIs(t, svc.Create(ctx, dup), ErrTeamMemberExists)

	other := &models.TeamMember{FirstName: "Max", LastName: "Moll", Email: "max@example.com"}
	require.NoError(t, svc.Create(ctx, other))
	require.Equal(t, "service", other.TeamType)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	cleaning, err := svc.List(ctx, "cleaning")
	require.NoError(t, err)
	require.Len(t, cleaning, 1)
	require.Equal(t, "rosa@example.com", cleaning[0].Email)
}

func TestTeamMemberUpdate(t *testing.T) {
	db := openServiceTestDB(t)
	svc, _ := newTestTeamMemberService(t, db)
	ctx := context.Background()

	member := &models.TeamMember{FirstName: "Eli", LastName: "Tan", Email: "eli@example.com"}
	require.NoError(t, svc.Create(ctx, member))

	updated, err := svc.Update(ctx, member.ID, map[string]any{
		"phone": "+34 600 000 000",
		"role":  "Front desk",
	})
	require.NoError(t, err)
	require.Equal(t, "+34 600 000 000", updated.Phone)
	require.Equal(t, "Front desk", updated.Role)

	_, err = svc.Update(ctx, "missing-id", map[string]any{"phone": "x"})
	require.ErrorIs(t, err, ErrTeamMemberNotFound)
}

func TestTeamMemberDeleteWithAccount(t *testing.T) {
	db := openServiceTestDB(t)
	svc, accounts := newTestTeamMemberService(t, db)
	ctx := context.Background()

	member := &models.TeamMember{FirstName: "Kay", LastName: "Osei", Email: "kay@example.com"}
	require.NoError(t, svc.Create(ctx, member))

	_, err := accounts.InviteUser(ctx, InviteUserInput{
		Email: "kay@example.com", FirstName: "Kay", Role: "team_member",
	})
	require.NoError(t, err)

	// InviteUser flips has_account on the roster row.
	reloaded, err := svc.Get(ctx, member.ID)
	require.NoError(t, err)
	require.True(t, reloaded.HasAccount)

	require.NoError(t, svc.Delete(ctx, member.ID))

	var remainingAccounts int64
	require.NoError(t, db.Model(&models.Account{}).Where("email = ?", "kay@example.com").Count(&remainingAccounts).Error)
	require.Zero(t, remainingAccounts)

	_, err = svc.Get(ctx, member.ID)
	require.ErrorIs(t, err, ErrTeamMemberNotFound)
}

func TestTeamMemberDeleteWithoutAccount(t *testing.T) {
	db := openServiceTestDB(t)
	svc, accounts := newTestTeamMemberService(t, db)
	ctx := context.Background()

	// Unrelated account that must survive the roster deletion.
	_, _, err := accounts.Register(ctx, RegisterInput{
		Email:           "bystander@example.com",
		Password:        "bystander",
		ConfirmPassword: "bystander",
	})
	require.NoError(t, err)

	member := &models.TeamMember{FirstName: "Lea", LastName: "Nys", Email: "lea@example.com"}
	require.NoError(t, svc.Create(ctx, member))

	require.NoError(t, svc.Delete(ctx, member.ID))

	var accountCount int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accountCount).Error)
	require.EqualValues(t, 1, accountCount)
}
