package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
	"github.com/apartguide/apartguide/pkg/logger"
	"github.com/apartguide/apartguide/pkg/mail"
	"github.com/apartguide/apartguide/pkg/metrics"
)

// Template names seeded at startup.
const (
	TemplateInvitation    = "invitation"
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "password_reset"
)

var (
	// ErrTemplateNotFound indicates no email template matches the requested name.
	ErrTemplateNotFound = errors.New("email: template not found")
	// ErrTemplateNameTaken indicates a template with the same name already exists.
	ErrTemplateNameTaken = errors.New("email: template name already in use")
)

// SendInput describes a templated email dispatch.
type SendInput struct {
	TemplateName string
	To           string
	Data         map[string]string

	// Optional associations recorded on the log row.
	UserID     *string
	PropertyID *string
}

// EmailService renders templates, dispatches them through the configured
// mailer, and records every attempt in email_logs.
type EmailService struct {
	db     *gorm.DB
	mailer mail.Mailer
	from   string
	now    func() time.Time
}

// EmailOption customises EmailService behaviour.
type EmailOption func(*EmailService)

// WithEmailClock injects a custom clock primarily for testing.
func WithEmailClock(clock func() time.Time) EmailOption {
	return func(s *EmailService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithEmailFrom overrides the default sender address.
func WithEmailFrom(from string) EmailOption {
	return func(s *EmailService) {
		s.from = strings.TrimSpace(from)
	}
}

// NewEmailService constructs an EmailService with the provided dependencies.
func NewEmailService(db *gorm.DB, mailer mail.Mailer, opts ...EmailOption) (*EmailService, error) {
	if db == nil {
		return nil, errors.New("email service: db is required")
	}

	service := &EmailService{
		db:     db,
		mailer: mailer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// RenderTemplate substitutes {{key}} placeholders with their literal values.
// Keys absent from data are left verbatim in the output.
func RenderTemplate(body string, data map[string]string) string {
	for key, value := range data {
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	return body
}

// Send loads the named template, renders it, dispatches the result, and
// writes an email_logs row recording the outcome.
func (s *EmailService) Send(ctx context.Context, input SendInput) (*models.EmailLog, error) {
	to := strings.ToLower(strings.TrimSpace(input.To))
	if to == "" {
		return nil, errors.New("email service: recipient is required")
	}

	log := &models.EmailLog{
		TemplateName: input.TemplateName,
		Recipient:    to,
		Status:       models.EmailStatusFailed,
		UserID:       input.UserID,
		PropertyID:   input.PropertyID,
	}

	template, err := s.GetTemplateByName(ctx, input.TemplateName)
	if err != nil {
		log.ProviderResponse = datatypes.JSONMap{"error": err.Error()}
		s.writeLog(ctx, log, input.TemplateName)
		return log, err
	}

	subject := RenderTemplate(template.Subject, input.Data)
	body := RenderTemplate(template.Body, input.Data)
	log.Subject = subject

	result, sendErr := s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    body,
	})
	if sendErr != nil {
		log.ProviderResponse = datatypes.JSONMap{"error": sendErr.Error()}
		s.writeLog(ctx, log, input.TemplateName)
		return log, fmt.Errorf("email service: send %q to %s: %w", input.TemplateName, to, sendErr)
	}

	log.Status = models.EmailStatusSent
	log.ProviderResponse = providerResponse(result)
	s.writeLog(ctx, log, input.TemplateName)
	return log, nil
}

// writeLog persists the log row. Logging failures must not mask the delivery
// outcome, so they are only reported through the application log.
func (s *EmailService) writeLog(ctx context.Context, log *models.EmailLog, template string) {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		logger.WithModule("email").Warn("failed to record email log",
			zap.String("template", template),
			zap.String("recipient", log.Recipient),
			zap.Error(err),
		)
	}
	metrics.EmailsSent.WithLabelValues(template, log.Status).Inc()
}

func providerResponse(result mail.Result) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range result.Detail {
		out[k] = v
	}
	if result.MessageID != "" {
		out["id"] = result.MessageID
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// GetTemplateByName fetches a template by its unique name.
func (s *EmailService) GetTemplateByName(ctx context.Context, name string) (*models.EmailTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTemplateNotFound
	}

	var template models.EmailTemplate
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("email service: load template: %w", err)
	}
	return &template, nil
}

// GetTemplate fetches a template by identifier.
func (s *EmailService) GetTemplate(ctx context.Context, id string) (*models.EmailTemplate, error) {
	var template models.EmailTemplate
	err := s.db.WithContext(ctx).Take(&template, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("email service: load template: %w", err)
	}
	return &template, nil
}

// ListTemplates returns all templates ordered by name.
func (s *EmailService) ListTemplates(ctx context.Context) ([]models.EmailTemplate, error) {
	var templates []models.EmailTemplate
	if err := s.db.WithContext(ctx).Order("name").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("email service: list templates: %w", err)
	}
	return templates, nil
}

// CreateTemplate stores a new template.
func (s *EmailService) CreateTemplate(ctx context.Context, template *models.EmailTemplate) error {
	if template == nil {
		return errors.New("email service: template is required")
	}
	template.Name = strings.TrimSpace(template.Name)
	if template.Name == "" {
		return errors.New("email service: template name is required")
	}

	if err := s.db.WithContext(ctx).Create(template).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrTemplateNameTaken
		}
		return fmt.Errorf("email service: create template: %w", err)
	}
	return nil
}

// UpdateTemplate modifies the subject and body (and optionally the name).
func (s *EmailService) UpdateTemplate(ctx context.Context, id string, updates map[string]any) (*models.EmailTemplate, error) {
	template, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(template).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrTemplateNameTaken
			}
			return nil, fmt.Errorf("email service: update template: %w", err)
		}
	}
	return s.GetTemplate(ctx, id)
}

// DeleteTemplate removes a template.
func (s *EmailService) DeleteTemplate(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.EmailTemplate{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("email service: delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// ListLogs returns email logs newest first with basic paging.
func (s *EmailService) ListLogs(ctx context.Context, page, perPage int) ([]models.EmailLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.EmailLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("email service: count logs: %w", err)
	}

	var logs []models.EmailLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("email service: list logs: %w", err)
	}
	return logs, total, nil
}

// CleanupLogs removes log rows older than the retention window.
func (s *EmailService) CleanupLogs(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-retention)
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.EmailLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("email service: cleanup logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
