package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
)

// ErrTeamMemberNotFound indicates no team member matches the identifier.
var ErrTeamMemberNotFound = errors.New("team member: not found")

// TeamMemberService manages the operational staff roster.
type TeamMemberService struct {
	db       *gorm.DB
	accounts *AccountService
}

// NewTeamMemberService constructs a TeamMemberService. The account service is
// used to tear down login identities when removing members that have one.
func NewTeamMemberService(db *gorm.DB, accounts *AccountService) (*TeamMemberService, error) {
	if db == nil {
		return nil, errors.New("team member service: db is required")
	}
	if accounts == nil {
		return nil, errors.New("team member service: account service is required")
	}
	return &TeamMemberService{db: db, accounts: accounts}, nil
}

// List returns all team members, optionally filtered by team type.
func (s *TeamMemberService) List(ctx context.Context, teamType string) ([]models.TeamMember, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if teamType = strings.TrimSpace(teamType); teamType != "" {
		query = query.Where("team_type = ?", teamType)
	}

	var members []models.TeamMember
	if err := query.Find(&members).Error; err != nil {
		return nil, fmt.Errorf("team member service: list: %w", err)
	}
	return members, nil
}

// Get fetches a single team member.
func (s *TeamMemberService) Get(ctx context.Context, id string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := s.db.WithContext(ctx).Take(&member, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team member service: get: %w", err)
	}
	return &member, nil
}

// Create stores a roster entry without issuing an invitation.
func (s *TeamMemberService) Create(ctx context.Context, member *models.TeamMember) error {
	if member == nil {
		return errors.New("team member service: member is required")
	}
	member.Email = strings.ToLower(strings.TrimSpace(member.Email))
	if member.Email == "" {
		return errors.New("team member service: email is required")
	}
	member.TeamType = normaliseTeamType(member.TeamType)

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("email = ?", member.Email).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("team member service: check email: %w", err)
	}
	if existing > 0 {
		return ErrTeamMemberExists
	}

	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("team member service: create: %w", err)
	}
	return nil
}

// Update applies partial changes to a team member.
func (s *TeamMemberService) Update(ctx context.Context, id string, updates map[string]any) (*models.TeamMember, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if email, ok := updates["email"].(string); ok {
		updates["email"] = strings.ToLower(strings.TrimSpace(email))
	}
	if teamType, ok := updates["team_type"].(string); ok {
		updates["team_type"] = normaliseTeamType(teamType)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(member).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("team member service: update: %w", err)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a team member. When the member has an activated account the
// account (profile, property assignments, credentials) is deleted through
// the same path the admin delete-user endpoint uses; without one only the
// roster row is removed.
func (s *TeamMemberService) Delete(ctx context.Context, id string) error {
	member, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if member.HasAccount {
		if err := s.accounts.DeleteUser(ctx, "", member.Email); err != nil && !errors.Is(err, ErrAccountNotFound) {
			return fmt.Errorf("team member service: delete account: %w", err)
		}
	}

	result := s.db.WithContext(ctx).Delete(&models.TeamMember{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("team member service: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}

// Count reports the roster size.
func (s *TeamMemberService) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.TeamMember{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("team member service: count: %w", err)
	}
	return count, nil
}
