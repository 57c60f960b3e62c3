package models

import (
	"time"
)

// User owns every other record in the system. All resource queries filter
// by the owning user's id.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Username       string     `gorm:"size:255;not null;unique" json:"username"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	Settings       *Settings  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Accounts       []Account  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Categories     []Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
