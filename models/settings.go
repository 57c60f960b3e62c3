package models

import "time"

// DefaultCurrency is applied when a user has no settings row yet.
const DefaultCurrency = "EUR"

// Settings holds per-user preferences (one-to-one with User).
type Settings struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"userId"`
	DefaultCurrency  string    `gorm:"size:3;not null;default:EUR" json:"defaultCurrency"`
	FirstDayOfMonth  int       `gorm:"not null;default:1" json:"firstDayOfMonth"`
	Locale           string    `gorm:"size:32;not null;default:en-US" json:"locale"`
	ShowDeletedMedia bool      `gorm:"default:false" json:"showDeletedMedia"`
}
