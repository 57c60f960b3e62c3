package models

import "time"

// Attachment is an uploaded receipt file belonging to a user, optionally
// linked to a transaction. SuggestedAmount is filled by the OCR scan (in
// the smallest currency unit); Scanned marks the scan as done even when no
// amount was found. Failed entries are kept so they can be reviewed.
type Attachment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	UserID          uint      `gorm:"index;not null;uniqueIndex:idx_attachments_user_file" json:"userId"`
	FileName        string    `gorm:"size:255;not null;uniqueIndex:idx_attachments_user_file" json:"fileName"`
	StorePath       string    `gorm:"size:512" json:"storePath"`
	ContentType     string    `gorm:"size:128" json:"contentType"`
	TransactionID   *uint     `gorm:"index" json:"transactionId,omitempty"`
	SuggestedAmount int64     `json:"suggestedAmount"`
	Scanned         bool      `gorm:"default:false;index" json:"scanned"`
	Failed          bool      `gorm:"default:false" json:"failed"`
	FailedReason    string    `gorm:"size:255" json:"failedReason,omitempty"`
}
