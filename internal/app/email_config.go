package app

import "github.com/apartguide/apartguide/pkg/mail"

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// APISettings converts EmailConfig to the hosted provider representation.
func (c EmailConfig) APISettings() mail.APISettings {
	return mail.APISettings{
		Enabled: c.API.Enabled,
		BaseURL: c.API.BaseURL,
		APIKey:  c.API.APIKey,
	}
}

// Mailer builds the configured outbound transport. The API provider takes
// precedence over SMTP when both are enabled.
func (c EmailConfig) Mailer() (mail.Mailer, error) {
	if c.API.Enabled {
		return mail.NewAPIMailer(c.APISettings())
	}
	return mail.NewSMTPMailer(c.SMTPSettings())
}
