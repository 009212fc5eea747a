package models

// TeamMember is an operational staff record. It exists independently of a
// login identity; HasAccount flips once the person activates an invitation.
type TeamMember struct {
	BaseModel

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"not null;index" json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	TeamType  string `gorm:"not null;default:service" json:"team_type"`

	HasAccount bool   `gorm:"default:false" json:"has_account"`
	CreatedBy  string `gorm:"type:uuid" json:"created_by"`
}
