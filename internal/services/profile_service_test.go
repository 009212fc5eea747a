package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileUpdateIgnoresRole(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewProfileService(db)
	require.NoError(t, err)
	ctx := context.Background()

	profile := createTestProfile(t, db, "edit@example.com", "team_member")

	updated, err := svc.Update(ctx, profile.ID, map[string]any{
		"first_name": "Edited",
		"role":       "super_admin",
	})
	require.NoError(t, err)
	require.Equal(t, "Edited", updated.FirstName)
	require.Equal(t, "team_member", updated.Role)
}

func TestProfileUpdateRole(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewProfileService(db)
	require.NoError(t, err)
	ctx := context.Background()

	profile := createTestProfile(t, db, "promote@example.com", "guest")

	updated, err := svc.UpdateRole(ctx, profile.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, "admin", updated.Role)

	_, err = svc.UpdateRole(ctx, profile.ID, "emperor")
	require.ErrorIs(t, err, ErrRoleInvalid)

	_, err = svc.UpdateRole(ctx, "missing", "admin")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileUpdateRoleKeepsLastSuperAdmin(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewProfileService(db)
	require.NoError(t, err)
	ctx := context.Background()

	only := createTestProfile(t, db, "root@example.com", "super_admin")

	_, err = svc.UpdateRole(ctx, only.ID, "admin")
	require.ErrorIs(t, err, ErrLastSuperAdmin)

	role, err := svc.Role(ctx, only.ID)
	require.NoError(t, err)
	require.Equal(t, "super_admin", string(role))

	// With a second super admin in place the demotion goes through.
	createTestProfile(t, db, "backup@example.com", "super_admin")

	updated, err := svc.UpdateRole(ctx, only.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, "admin", updated.Role)
}

func TestProfileRoleLookup(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewProfileService(db)
	require.NoError(t, err)
	ctx := context.Background()

	profile := createTestProfile(t, db, "who@example.com", "super_admin")

	role, err := svc.Role(ctx, profile.ID)
	require.NoError(t, err)
	require.Equal(t, "super_admin", string(role))

	_, err = svc.Role(ctx, "missing")
	require.ErrorIs(t, err, ErrProfileNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
