package services

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/database/testutil"
	"github.com/apartguide/apartguide/pkg/mail"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedData())
}

// captureMailer records outbound messages and can be primed to fail.
type captureMailer struct {
	sent []mail.Message
	fail error
}

func (m *captureMailer) Send(ctx context.Context, msg mail.Message) (mail.Result, error) {
	if m.fail != nil {
		return mail.Result{}, m.fail
	}
	m.sent = append(m.sent, msg)
	id := fmt.Sprintf("msg_%d", len(m.sent))
	return mail.Result{MessageID: id, Detail: map[string]any{"id": id}}, nil
}

func newTestEmailService(t *testing.T, db *gorm.DB, mailer mail.Mailer) *EmailService {
	t.Helper()
	svc, err := NewEmailService(db, mailer, WithEmailFrom("ApartGuide <no-reply@apartguide.app>"))
	if err != nil {
		t.Fatalf("new email service: %v", err)
	}
	return svc
}
