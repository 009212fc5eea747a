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
	// ErrPropertyNotFound indicates no property matches the identifier.
	ErrPropertyNotFound = errors.New("property: not found")
	// ErrPropertyForbidden rejects mutations by anyone but the owner or a super admin.
	ErrPropertyForbidden = errors.New("property: not owned by caller")
	// ErrTeamRoleInvalid rejects unknown property team roles.
	ErrTeamRoleInvalid = errors.New("property: invalid team role")
	// ErrTeamAssignmentNotFound indicates the profile is not on the property team.
	ErrTeamAssignmentNotFound = errors.New("property: team assignment not found")
)

// Property team roles.
var propertyTeamRoles = []string{"cleaning", "maintenance", "reception", "other"}

// PropertyService manages rental units and their operational teams.
type PropertyService struct {
	db *gorm.DB
}

// NewPropertyService constructs a PropertyService.
func NewPropertyService(db *gorm.DB) (*PropertyService, error) {
	if db == nil {
		return nil, errors.New("property service: db is required")
	}
	return &PropertyService{db: db}, nil
}

// List returns properties visible to the caller. Super admins see everything;
// everyone else sees properties they own or are assigned to.
func (s *PropertyService) List(ctx context.Context, callerID string, callerRole roles.Role) ([]models.Property, error) {
	query := s.db.WithContext(ctx).Preload("Owner").Order("created_at DESC")
	if callerRole != roles.SuperAdmin {
		query = query.Where(
			"owner_id = ? OR id IN (?)",
			callerID,
			s.db.Model(&models.PropertyTeamMember{}).Select("property_id").Where("user_id = ?", callerID),
		)
	}

	var properties []models.Property
	if err := query.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("property service: list: %w", err)
	}
	return properties, nil
}

// Get fetches a property with its owner and team preloaded.
func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Team.User").
		Take(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("property service: get: %w", err)
	}
	return &property, nil
}

// Create stores a property owned by the caller.
func (s *PropertyService) Create(ctx context.Context, property *models.Property) error {
	if property == nil {
		return errors.New("property service: property is required")
	}
	property.Name = strings.TrimSpace(property.Name)
	if property.Name == "" {
		return errors.New("property service: name is required")
	}
	if strings.TrimSpace(property.OwnerID) == "" {
		return errors.New("property service: owner is required")
	}

	if err := s.db.WithContext(ctx).Create(property).Error; err != nil {
		return fmt.Errorf("property service: create: %w", err)
	}
	return nil
}

// Update applies partial changes after an ownership check.
func (s *PropertyService) Update(ctx context.Context, id, callerID string, callerRole roles.Role, updates map[string]any) (*models.Property, error) {
	property, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(property, callerID, callerRole); err != nil {
		return nil, err
	}

	delete(updates, "owner_id")
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(property).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("property service: update: %w", err)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a property and its team assignments.
func (s *PropertyService) Delete(ctx context.Context, id, callerID string, callerRole roles.Role) error {
	property, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(property, callerID, callerRole); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.PropertyTeamMember{}, "property_id = ?", id).Error; err != nil {
		return fmt.Errorf("property service: delete team rows: %w", err)
	}
	if err := s.db.WithContext(ctx).Delete(&models.Property{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("property service: delete: %w", err)
	}
	return nil
}

// AssignTeamMember puts a profile on the property team with a role.
func (s *PropertyService) AssignTeamMember(ctx context.Context, propertyID, callerID string, callerRole roles.Role, userID, teamRole string) (*models.PropertyTeamMember, error) {
	property, err := s.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(property, callerID, callerRole); err != nil {
		return nil, err
	}

	teamRole = strings.ToLower(strings.TrimSpace(teamRole))
	if !containsString(propertyTeamRoles, teamRole) {
		return nil, ErrTeamRoleInvalid
	}

	assignment := &models.PropertyTeamMember{
		PropertyID: propertyID,
		UserID:     strings.TrimSpace(userID),
		TeamRole:   teamRole,
	}
	if err := s.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("property service: assign: %w", err)
	}
	return assignment, nil
}

// RemoveTeamMember takes a profile off the property team.
func (s *PropertyService) RemoveTeamMember(ctx context.Context, propertyID, callerID string, callerRole roles.Role, userID string) error {
	property, err := s.Get(ctx, propertyID)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(property, callerID, callerRole); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Delete(&models.PropertyTeamMember{}, "property_id = ? AND user_id = ?", propertyID, userID)
	if result.Error != nil {
		return fmt.Errorf("property service: remove assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTeamAssignmentNotFound
	}
	return nil
}

// ListTeam returns the team assignments for a property.
func (s *PropertyService) ListTeam(ctx context.Context, propertyID string) ([]models.PropertyTeamMember, error) {
	if _, err := s.Get(ctx, propertyID); err != nil {
		return nil, err
	}

	var team []models.PropertyTeamMember
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("property_id = ?", propertyID).
		Find(&team).Error
	if err != nil {
		return nil, fmt.Errorf("property service: list team: %w", err)
	}
	return team, nil
}

// Count reports the number of properties.
func (s *PropertyService) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Property{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("property service: count: %w", err)
	}
	return count, nil
}

func (s *PropertyService) authorizeMutation(property *models.Property, callerID string, callerRole roles.Role) error {
	if callerRole == roles.SuperAdmin {
		return nil
	}
	if property.OwnerID == callerID {
		return nil
	}
	return ErrPropertyForbidden
}
