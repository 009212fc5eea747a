package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apartguide/apartguide/internal/models"
)

func TestDashboardSummary(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &captureMailer{}
	invitations := newTestInvitationService(t, db, mailer)
	svc, err := NewDashboardService(db, invitations)
	require.NoError(t, err)
	ctx := context.Background()

	owner := createTestProfile(t, db, "counts@example.com", "admin")
	require.NoError(t, db.Create(&models.Property{Name: "One", OwnerID: owner.ID}).Error)
	require.NoError(t, db.Create(&models.Property{Name: "Two", OwnerID: owner.ID}).Error)

	// Issuing an invitation adds a team member, a pending invitation, and a sent email.
	_, err = invitations.Issue(ctx, IssueInput{Email: "staff@example.com", FirstName: "Stef"})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, summary.Properties)
	require.EqualValues(t, 1, summary.TeamMembers)
	require.EqualValues(t, 1, summary.PendingInvitations)
	require.EqualValues(t, 1, summary.EmailsSent)
}
