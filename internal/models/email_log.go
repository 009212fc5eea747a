package models

import "gorm.io/datatypes"

// Email log delivery statuses.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// EmailLog records every outbound template email together with the delivery
// provider's response payload.
type EmailLog struct {
	BaseModel

	TemplateName     string            `gorm:"index" json:"template_name"`
	Recipient        string            `gorm:"not null;index" json:"recipient"`
	Subject          string            `json:"subject"`
	Status           string            `gorm:"not null;index" json:"status"`
	ProviderResponse datatypes.JSONMap `json:"provider_response"`

	UserID     *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	PropertyID *string `gorm:"type:uuid;index" json:"property_id,omitempty"`
}
