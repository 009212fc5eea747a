package models

import "time"

// Invitation is a time-boxed, single-use credential bootstrap record for
// activating a team member's account. The temporary password is stored as
// plaintext and compared verbatim during activation; expiry and usage are
// filtered at fetch time.
type Invitation struct {
	BaseModel

	Email     string `gorm:"not null;index" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `gorm:"not null;default:team_member" json:"role"`
	TeamType  string `gorm:"not null;default:service" json:"team_type"`

	TempPassword string    `gorm:"not null" json:"-"`
	Used         bool      `gorm:"default:false;index" json:"used"`
	ExpiresAt    time.Time `gorm:"index" json:"expires_at"`
}
