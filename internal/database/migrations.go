package database

import (
	"gorm.io/gorm"

	"github.com/apartguide/apartguide/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Profile{},
		&models.Property{},
		&models.PropertyTeamMember{},
		&models.TeamMember{},
		&models.Invitation{},
		&models.EmailTemplate{},
		&models.EmailLog{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.CacheEntry{},
	)
}

// SeedData inserts the default email templates used by the invitation,
// welcome, and password reset flows. Existing templates are left untouched.
func SeedData(db *gorm.DB) error {
	templates := []models.EmailTemplate{
		{
			Name:    "invitation",
			Subject: "You have been invited to ApartGuide",
			Body: "<p>Hello {{first_name}},</p>" +
				"<p>You have been invited to join the ApartGuide team. " +
				"Open the link below and use your temporary password to activate your account:</p>" +
				"<p><a href=\"{{invitation_link}}\">{{invitation_link}}</a></p>" +
				"<p>If you did not expect this email, you can ignore it.</p>",
		},
		{
			Name:    "welcome",
			Subject: "Welcome to ApartGuide",
			Body: "<p>Hello {{first_name}},</p>" +
				"<p>Your account is ready. You can sign in here:</p>" +
				"<p><a href=\"{{login_link}}\">{{login_link}}</a></p>",
		},
		{
			Name:    "password_reset",
			Subject: "Reset your ApartGuide password",
			Body: "<p>Hello,</p>" +
				"<p>We received a request to reset your password. " +
				"Use the link below within one hour:</p>" +
				"<p><a href=\"{{reset_link}}\">{{reset_link}}</a></p>" +
				"<p>If you did not request this, no action is needed.</p>",
		},
	}

	for _, tpl := range templates {
		if err := db.Where(models.EmailTemplate{Name: tpl.Name}).
			Attrs(tpl).
			FirstOrCreate(&models.EmailTemplate{}).Error; err != nil {
			return err
		}
	}

	return nil
}
