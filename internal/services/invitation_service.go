package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/internal/roles"
	"github.com/apartguide/apartguide/pkg/crypto"
	"github.com/apartguide/apartguide/pkg/logger"
	"github.com/apartguide/apartguide/pkg/metrics"
)

const (
	defaultInvitationExpiry = 7 * 24 * time.Hour
	minActivationPassword   = 6

	tempPasswordLower = "abcdefghijklmnopqrstuvwxyz0123456789"
	tempPasswordUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	// ErrTeamMemberExists indicates the email already belongs to a team member.
	ErrTeamMemberExists = errors.New("invitation: team member already exists")
	// ErrInvitationNotFound indicates no pending invitation matches the email.
	ErrInvitationNotFound = errors.New("invitation: not found")
	// ErrInvitationPassword signals a temporary password mismatch.
	ErrInvitationPassword = errors.New("invitation: invalid temporary password")
	// ErrPasswordTooShort rejects activation passwords under the minimum length.
	ErrPasswordTooShort = errors.New("invitation: password must be at least 6 characters")
	// ErrEmailTaken indicates an account already exists for the email.
	ErrEmailTaken = errors.New("invitation: account already exists")
)

// IssueInput describes a new team member invitation.
type IssueInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
	TeamType  string
	CreatedBy string
}

// IssueResult reports the created rows plus a warning when the notification
// email could not be delivered. The invitation stands either way.
type IssueResult struct {
	Invitation *models.Invitation
	TeamMember *models.TeamMember
	Warning    string
}

// ActivateInput carries the two-step activation form payload.
type ActivateInput struct {
	Email        string
	TempPassword string
	NewPassword  string
}

// ActivateResult returns the identity created by a successful activation.
type ActivateResult struct {
	Account *models.Account
	Profile *models.Profile
	Warning string
}

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationBaseURL sets the public base URL used in activation links.
func WithInvitationBaseURL(base string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithInvitationExpiry overrides the invitation lifetime.
func WithInvitationExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInvitationClock injects a custom clock primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInvitationRand injects a deterministic random source for testing.
func WithInvitationRand(r *rand.Rand) InvitationOption {
	return func(s *InvitationService) {
		if r != nil {
			s.rand = newLockedRand(r)
		}
	}
}

// InvitationService manages the full lifecycle of team member invitations:
// issuance, lookup, temporary password verification, and account activation.
type InvitationService struct {
	db      *gorm.DB
	email   *EmailService
	baseURL string
	expiry  time.Duration
	now     func() time.Time
	rand    *lockedRand
}

// lockedRand serialises access to a shared math/rand source so concurrent
// invite requests can draw from it safely.
type lockedRand struct {
	mu  sync.Mutex
	src *rand.Rand
}

func newLockedRand(src *rand.Rand) *lockedRand {
	return &lockedRand{src: src}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

// NewInvitationService constructs an InvitationService.
func NewInvitationService(db *gorm.DB, email *EmailService, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if email == nil {
		return nil, errors.New("invitation service: email service is required")
	}

	service := &InvitationService{
		db:     db,
		email:  email,
		expiry: defaultInvitationExpiry,
		now:    time.Now,
		rand:   newLockedRand(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Issue creates a team member record and a pending invitation, then sends
// the invitation email. Email delivery failure is a soft failure: earlier
// writes stand and the result carries a warning instead.
func (s *InvitationService) Issue(ctx context.Context, input IssueInput) (*IssueResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, errors.New("invitation service: email is required")
	}

	var existing int64
	if err := s.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("email = ?", email).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("invitation service: check team member: %w", err)
	}
	if existing > 0 {
		return nil, ErrTeamMemberExists
	}

	member := &models.TeamMember{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Role:      strings.TrimSpace(input.Role),
		TeamType:  normaliseTeamType(input.TeamType),
		CreatedBy: strings.TrimSpace(input.CreatedBy),
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, fmt.Errorf("invitation service: create team member: %w", err)
	}

	invitation := &models.Invitation{
		Email:        email,
		FirstName:    member.FirstName,
		LastName:     member.LastName,
		Role:         invitationRole(input.Role),
		TeamType:     member.TeamType,
		TempPassword: generateTempPassword(s.rand),
		ExpiresAt:    s.now().Add(s.expiry),
	}
	if err := s.db.WithContext(ctx).Create(invitation).Error; err != nil {
		return nil, fmt.Errorf("invitation service: create invitation: %w", err)
	}

	metrics.InvitationsIssued.Inc()

	result := &IssueResult{Invitation: invitation, TeamMember: member}

	if _, err := s.email.Send(ctx, SendInput{
		TemplateName: TemplateInvitation,
		To:           email,
		Data: map[string]string{
			"first_name":      member.FirstName,
			"invitation_link": s.ActivationLink(email),
		},
	}); err != nil {
		logger.WithModule("invitations").Warn("invitation email failed",
			zap.String("email", email),
			zap.Error(err),
		)
		result.Warning = "invitation created but the email could not be sent"
	}

	return result, nil
}

// ActivationLink builds the public activation URL for an invited email.
func (s *InvitationService) ActivationLink(email string) string {
	return fmt.Sprintf("%s/auth/invitation?email=%s", s.baseURL, url.QueryEscape(email))
}

// Lookup fetches the pending, unexpired invitation for an email address.
func (s *InvitationService) Lookup(ctx context.Context, email string) (*models.Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrInvitationNotFound
	}

	var invitation models.Invitation
	err := s.db.WithContext(ctx).
		Where("email = ? AND used = ? AND expires_at > ?", email, false, s.now()).
		Take(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: lookup: %w", err)
	}
	return &invitation, nil
}

// Verify checks the submitted temporary password against the stored value.
// The comparison is plain string equality; nothing is persisted.
func (s *InvitationService) Verify(ctx context.Context, email, tempPassword string) (*models.Invitation, error) {
	invitation, err := s.Lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if invitation.TempPassword != tempPassword {
		return nil, ErrInvitationPassword
	}
	return invitation, nil
}

// Activate converts a pending invitation into an account and profile. The
// sub-steps run sequentially without a wrapping transaction; a failure midway
// leaves earlier writes in place.
func (s *InvitationService) Activate(ctx context.Context, input ActivateInput) (*ActivateResult, error) {
	invitation, err := s.Verify(ctx, input.Email, input.TempPassword)
	if err != nil {
		return nil, err
	}
	if len(input.NewPassword) < minActivationPassword {
		return nil, ErrPasswordTooShort
	}

	hashed, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("invitation service: hash password: %w", err)
	}

	account := &models.Account{
		Email:          invitation.Email,
		Password:       hashed,
		EmailConfirmed: true,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("invitation service: create account: %w", err)
	}

	profile := &models.Profile{
		ID:        account.ID,
		Email:     invitation.Email,
		FirstName: invitation.FirstName,
		LastName:  invitation.LastName,
		Role:      invitation.Role,
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("invitation service: create profile: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", invitation.ID).
		Update("used", true).Error; err != nil {
		return nil, fmt.Errorf("invitation service: mark used: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("email = ?", invitation.Email).
		Update("has_account", true).Error; err != nil {
		return nil, fmt.Errorf("invitation service: flag team member: %w", err)
	}

	metrics.InvitationsActivated.Inc()

	result := &ActivateResult{Account: account, Profile: profile}

	if _, err := s.email.Send(ctx, SendInput{
		TemplateName: TemplateWelcome,
		To:           invitation.Email,
		Data: map[string]string{
			"first_name": invitation.FirstName,
			"login_link": s.baseURL + "/auth/login",
		},
		UserID: &account.ID,
	}); err != nil {
		logger.WithModule("invitations").Warn("welcome email failed",
			zap.String("email", invitation.Email),
			zap.Error(err),
		)
		result.Warning = "account activated but the welcome email could not be sent"
	}

	return result, nil
}

// List returns invitations newest first, optionally restricted to pending ones.
func (s *InvitationService) List(ctx context.Context, pendingOnly bool) ([]models.Invitation, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if pendingOnly {
		query = query.Where("used = ? AND expires_at > ?", false, s.now())
	}

	var invitations []models.Invitation
	if err := query.Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("invitation service: list: %w", err)
	}
	return invitations, nil
}

// CountPending reports the number of open invitations.
func (s *InvitationService) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("used = ? AND expires_at > ?", false, s.now()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("invitation service: count pending: %w", err)
	}
	return count, nil
}

// CleanupExpired removes used invitations and ones past expiry beyond the
// retention window.
func (s *InvitationService) CleanupExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("(used = ? AND updated_at < ?) OR expires_at < ?", true, cutoff, cutoff).
		Delete(&models.Invitation{})
	if result.Error != nil {
		return 0, fmt.Errorf("invitation service: cleanup: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// generateTempPassword builds the 14 character temporary password: ten
// pseudo-random lowercase base-36 characters, two uppercase base-36
// characters, and the fixed suffix "!1". Deliberately not cryptographically
// strong; the value is short-lived and single-use.
func generateTempPassword(r *lockedRand) string {
	var b strings.Builder
	b.Grow(14)
	for i := 0; i < 10; i++ {
		b.WriteByte(tempPasswordLower[r.Intn(len(tempPasswordLower))])
	}
	for i := 0; i < 2; i++ {
		b.WriteByte(tempPasswordUpper[r.Intn(len(tempPasswordUpper))])
	}
	b.WriteString("!1")
	return b.String()
}

func normaliseTeamType(teamType string) string {
	switch strings.ToLower(strings.TrimSpace(teamType)) {
	case "cleaning":
		return "cleaning"
	default:
		return "service"
	}
}

// invitationRole maps the free-text job role onto a permission role. Only
// recognised permission roles pass through; everything else becomes a
// team_member account on activation.
func invitationRole(role string) string {
	r := roles.Role(strings.TrimSpace(role))
	if r.Valid() {
		return string(r)
	}
	return string(roles.TeamMember)
}
