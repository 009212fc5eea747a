package models

// Property is a short-term rental unit managed through the dashboard.
type Property struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`

	OwnerID string   `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner   *Profile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	Team []PropertyTeamMember `gorm:"foreignKey:PropertyID" json:"team,omitempty"`
}
