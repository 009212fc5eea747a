package models

import "time"

// CacheEntry backs the database cache store used when redis is not
// configured. Rows past ExpiresAt are treated as absent and lazily removed.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     []byte    `gorm:"type:blob"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
