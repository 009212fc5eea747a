package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the identity-linked user record shown around the dashboard.
// Its ID matches the account ID; rows are created alongside the account and
// removed with it.
type Profile struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string `gorm:"index;not null" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
	Role      string `gorm:"not null;default:guest;index" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate keeps the zero role aligned with the signup default.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.Role == "" {
		p.Role = "guest"
	}
	return nil
}
