package models

// PropertyTeamMember assigns a profile to a property with an operational role
// (cleaning, maintenance, reception, other).
type PropertyTeamMember struct {
	BaseModel

	PropertyID string `gorm:"type:uuid;not null;index" json:"property_id"`
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	TeamRole   string `gorm:"not null" json:"team_role"`

	User     *Profile  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Property *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

// TableName keeps the join table under its historical name.
func (PropertyTeamMember) TableName() string { return "property_team" }
