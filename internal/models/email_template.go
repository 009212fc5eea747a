package models

// EmailTemplate holds an HTML email body and subject with {{key}}
// placeholders substituted at send time.
type EmailTemplate struct {
	BaseModel

	Name    string `gorm:"uniqueIndex;not null" json:"name"`
	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`
}
