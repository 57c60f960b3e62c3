package models

import "time"

// Transaction type and status enums.
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"

	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
)

// TransactionTypes and TransactionStatuses are the allowed enum values,
// in the order they are documented.
var (
	TransactionTypes    = []string{TransactionTypeIncome, TransactionTypeExpense}
	TransactionStatuses = []string{TransactionStatusPending, TransactionStatusCompleted}
)

// Transaction is a single income or expense record. Amount is stored as an
// integer count of the smallest currency unit (cents, pence); the decimal
// representation is computed at the serialization boundary, never stored.
type Transaction struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	UserID          uint       `gorm:"not null;index:idx_transactions_user_date,priority:1" json:"userId"`
	Type            string     `gorm:"size:16;not null;index" json:"type"`
	Date            time.Time  `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	ReminderDate    *time.Time `json:"reminderDate,omitempty"`
	Amount          int64      `gorm:"not null" json:"amount"`
	Status          string     `gorm:"size:16;not null;index" json:"status"`
	Note            string     `gorm:"size:50;not null" json:"note"`
	Facility        string     `gorm:"size:50" json:"facility"`
	Description     string     `gorm:"size:500" json:"description"`
	ReceiptTaken    bool       `gorm:"default:false" json:"receiptTaken"`
	IsInstallment   bool       `gorm:"default:false" json:"isInstallment"`
	IsReadyToDeduct bool       `gorm:"default:true" json:"isReadyToDeduct"`
	Attachments     []string   `gorm:"serializer:json;type:text" json:"attachments"`
	Website         string     `gorm:"size:512" json:"website"`
	AccountID       *uint      `gorm:"index" json:"account,omitempty"`
	Account         *Account   `gorm:"foreignKey:AccountID" json:"accountDetail,omitempty"`
	CategoryID      uint       `gorm:"not null;index" json:"category"`
	Category        *Category  `gorm:"foreignKey:CategoryID" json:"categoryDetail,omitempty"`
}

// TransactionPreloads lists the related records resolved for display:
// the account and the category with its parent.
func TransactionPreloads() []string {
	return []string{"Account", "Category", "Category.Parent"}
}
