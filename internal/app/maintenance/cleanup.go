package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	iauth "github.com/apartguide/apartguide/internal/auth"
	"github.com/apartguide/apartguide/internal/services"
	"github.com/apartguide/apartguide/pkg/logger"
)

const (
	defaultEmailLogRetention   = 90 * 24 * time.Hour
	defaultInvitationRetention = 30 * 24 * time.Hour
	defaultSessionSpec         = "@hourly"
	defaultTokenSpec           = "@daily"
	defaultEmailLogSpec        = "@daily"
)

// Cleaner coordinates background maintenance: purging expired sessions,
// stale invitations, consumed reset tokens, and old email logs. Any nil
// dependency results in the corresponding job being skipped.
type Cleaner struct {
	sessions    *iauth.SessionService
	invitations *services.InvitationService
	resets      *services.PasswordResetService
	email       *services.EmailService
	cron        *cron.Cron
	log         *zap.Logger

	emailLogRetention   time.Duration
	invitationRetention time.Duration

	sessionSchedule  string
	tokenSchedule    string
	emailLogSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithEmailLogRetention adjusts how long delivery logs are kept.
func WithEmailLogRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.emailLogRetention = retention
		}
	}
}

// WithInvitationRetention adjusts how long used or expired invitations are kept.
func WithInvitationRetention(retention time.Duration) Option {
	return func(cleaner *Cleaner) {
		if retention > 0 {
			cleaner.invitationRetention = retention
		}
	}
}

// WithSessionSchedule overrides the cron specification for session cleanup.
func WithSessionSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.sessionSchedule = spec
		}
	}
}

// WithTokenSchedule overrides the cron specification for invitation and reset token cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// WithEmailLogSchedule overrides the cron specification for email log retention enforcement.
func WithEmailLogSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.emailLogSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults.
func NewCleaner(
	sessions *iauth.SessionService,
	invitations *services.InvitationService,
	resets *services.PasswordResetService,
	email *services.EmailService,
	opts ...Option,
) *Cleaner {
	cleaner := &Cleaner{
		sessions:            sessions,
		invitations:         invitations,
		resets:              resets,
		email:               email,
		emailLogRetention:   defaultEmailLogRetention,
		invitationRetention: defaultInvitationRetention,
		sessionSchedule:     defaultSessionSpec,
		tokenSchedule:       defaultTokenSpec,
		emailLogSchedule:    defaultEmailLogSpec,
		log:                 logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.sessions != nil {
		if _, err := c.cron.AddFunc(c.sessionSchedule, func() {
			if _, err := c.sessions.CleanupExpired(context.Background()); err != nil {
				c.log.Warn("session cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.invitations != nil || c.resets != nil {
		if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
			ctx := context.Background()
			if c.invitations != nil {
				if _, err := c.invitations.CleanupExpired(ctx, c.invitationRetention); err != nil {
					c.log.Warn("invitation cleanup failed", zap.Error(err))
				}
			}
			if c.resets != nil {
				if _, err := c.resets.CleanupExpired(ctx); err != nil {
					c.log.Warn("reset token cleanup failed", zap.Error(err))
				}
			}
		}); err != nil {
			return err
		}
	}

	if c.email != nil && c.emailLogRetention > 0 {
		if _, err := c.cron.AddFunc(c.emailLogSchedule, func() {
			if _, err := c.email.CleanupLogs(context.Background(), c.emailLogRetention); err != nil {
				c.log.Warn("email log cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used
// in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.sessions != nil {
		if _, err := c.sessions.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.invitations != nil {
		if _, err := c.invitations.CleanupExpired(ctx, c.invitationRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.resets != nil {
		if _, err := c.resets.CleanupExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.email != nil && c.emailLogRetention > 0 {
		if _, err := c.email.CleanupLogs(ctx, c.emailLogRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
