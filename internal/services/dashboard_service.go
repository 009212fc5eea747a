package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
)

// DashboardSummary carries the live counts shown on the admin landing page.
type DashboardSummary struct {
	Properties         int64 `json:"properties"`
	TeamMembers        int64 `json:"team_members"`
	PendingInvitations int64 `json:"pending_invitations"`
	EmailsSent         int64 `json:"emails_sent"`
}

// DashboardService aggregates counts across the domain tables.
type DashboardService struct {
	db          *gorm.DB
	invitations *InvitationService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(db *gorm.DB, invitations *InvitationService) (*DashboardService, error) {
	if db == nil {
		return nil, errors.New("dashboard service: db is required")
	}
	if invitations == nil {
		return nil, errors.New("dashboard service: invitation service is required")
	}
	return &DashboardService{db: db, invitations: invitations}, nil
}

// Summary computes the dashboard counters.
func (s *DashboardService) Summary(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary

	if err := s.db.WithContext(ctx).Model(&models.Property{}).Count(&summary.Properties).Error; err != nil {
		return summary, fmt.Errorf("dashboard service: count properties: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.TeamMember{}).Count(&summary.TeamMembers).Error; err != nil {
		return summary, fmt.Errorf("dashboard service: count team members: %w", err)
	}

	pending, err := s.invitations.CountPending(ctx)
	if err != nil {
		return summary, err
	}
	summary.PendingInvitations = pending

	if err := s.db.WithContext(ctx).
		Model(&models.EmailLog{}).
		Where("status = ?", models.EmailStatusSent).
		Count(&summary.EmailsSent).Error; err != nil {
		return summary, fmt.Errorf("dashboard service: count emails: %w", err)
	}

	return summary, nil
}
