package models

import "time"

// Category classifies transactions. Categories form a tree per user via
// ParentID. The slug is derived from the name and, together with
// (user, parent, transactionType), uniquely identifies a sibling: the
// unique index on (user_id, COALESCE(parent_id,0), transaction_type, slug)
// rejects duplicate sibling names of the same type.
type Category struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	UserID          uint       `gorm:"index;not null" json:"userId"`
	Name            string     `gorm:"size:50;not null" json:"name"`
	Slug            string     `gorm:"size:60;not null;index" json:"slug"`
	TransactionType string     `gorm:"size:16;not null;index" json:"transactionType"`
	ParentID        *uint      `gorm:"index" json:"parent,omitempty"`
	Parent          *Category  `gorm:"foreignKey:ParentID" json:"parentCategory,omitempty"`
	Children        []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Description     string     `gorm:"size:250" json:"description"`
	IsArchived      bool       `gorm:"default:false;index" json:"isArchived"`
	Order           int        `gorm:"column:display_order;default:0" json:"order"`
}
