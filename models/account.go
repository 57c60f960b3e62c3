package models

import "time"

// Account is a user-defined money source (bank account, wallet, card).
// Name uniqueness per user is case-insensitive and enforced by a raw
// unique index on (user_id, lower(name)).
type Account struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	UserID     uint      `gorm:"index;not null" json:"userId"`
	Name       string    `gorm:"size:50;not null" json:"name"`
	IsArchived bool      `gorm:"default:false;index" json:"isArchived"`
	// "order" is reserved in SQL, so the column is renamed.
	Order int `gorm:"column:display_order;default:0" json:"order"`
}
