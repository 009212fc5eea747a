package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/roles"
)

var (
	// ErrProfileNotFound indicates no profile matches the identifier.
	ErrProfileNotFound = errors.New("profile: not found")
	// ErrRoleInvalid rejects unknown permission roles.
	ErrRoleInvalid = errors.New("profile: invalid role")
	// ErrLastSuperAdmin blocks demoting the only remaining super admin.
	ErrLastSuperAdmin = errors.New("profile: cannot demote the last super admin")
)

// ProfileService reads and updates the dashboard identity records.
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService constructs a ProfileService.
func NewProfileService(db *gorm.DB) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	return &ProfileService{db: db}, nil
}

// List returns all profiles ordered by creation time.
func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("profile service: list: %w", err)
	}
	return profiles, nil
}

// Get fetches a profile by identifier.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Take(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile service: get: %w", err)
	}
	return &profile, nil
}

// Role returns the permission role attached to a profile.
func (s *ProfileService) Role(ctx context.Context, id string) (roles.Role, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return roles.Guest, err
	}
	return roles.Parse(profile.Role), nil
}

// Update applies partial display changes to a profile. The role cannot be
// changed through this path.
func (s *ProfileService) Update(ctx context.Context, id string, updates map[string]any) (*models.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	delete(updates, "role")
	delete(updates, "id")
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("profile service: update: %w", err)
		}
	}
	return s.Get(ctx, id)
}

// UpdateRole changes the permission role on a profile. Demoting the last
// remaining super admin is rejected so the dashboard cannot lock itself out.
func (s *ProfileService) UpdateRole(ctx context.Context, id, role string) (*models.Profile, error) {
	r := roles.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, ErrRoleInvalid
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if roles.Parse(current.Role) == roles.SuperAdmin && r != roles.SuperAdmin {
		var admins int64
		if err := s.db.WithContext(ctx).
			Model(&models.Profile{}).
			Where("role = ?", string(roles.SuperAdmin)).
			Count(&admins).Error; err != nil {
			return nil, fmt.Errorf("profile service: count super admins: %w", err)
		}
		if admins <= 1 {
			return nil, ErrLastSuperAdmin
		}
	}

	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Update("role", string(r))
	if result.Error != nil {
		return nil, fmt.Errorf("profile service: update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return s.Get(ctx, id)
}
