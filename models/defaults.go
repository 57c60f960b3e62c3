package models

import (
	"errors"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type defaultCategory struct {
	key             string
	name            string
	transactionType string
	parentKey       string
	order           int
}

var defaultMainCategories = []defaultCategory{
	{key: "salary", name: "Salary", transactionType: TransactionTypeIncome, order: 0},
	{key: "other-income", name: "Other Income", transactionType: TransactionTypeIncome, order: 1},
	{key: "necessities", name: "Necessities", transactionType: TransactionTypeExpense, order: 0},
	{key: "wants", name: "Wants", transactionType: TransactionTypeExpense, order: 1},
	{key: "savings", name: "Savings", transactionType: TransactionTypeExpense, order: 2},
}

var defaultSubCategories = []defaultCategory{
	{name: "Rent", transactionType: TransactionTypeExpense, parentKey: "necessities", order: 0},
	{name: "Groceries", transactionType: TransactionTypeExpense, parentKey: "necessities", order: 1},
	{name: "Utilities", transactionType: TransactionTypeExpense, parentKey: "necessities", order: 2},
	{name: "Transport", transactionType: TransactionTypeExpense, parentKey: "necessities", order: 3},
	{name: "Dining Out", transactionType: TransactionTypeExpense, parentKey: "wants", order: 0},
	{name: "Entertainment", transactionType: TransactionTypeExpense, parentKey: "wants", order: 1},
	{name: "Subscriptions", transactionType: TransactionTypeExpense, parentKey: "wants", order: 2},
	{name: "Emergency Fund", transactionType: TransactionTypeExpense, parentKey: "savings", order: 0},
	{name: "Investments", transactionType: TransactionTypeExpense, parentKey: "savings", order: 1},
}

// CreateUserDefaults provisions the settings row and the default category
// tree for a newly registered user. It never reseeds a user that already
// has categories, so calling it again is harmless.
func CreateUserDefaults(db *gorm.DB, userID uint) error {
	var settings Settings
	err := db.Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = Settings{
			UserID:          userID,
			DefaultCurrency: DefaultCurrency,
			FirstDayOfMonth: 1,
			Locale:          "en-US",
		}
		if err := db.Create(&settings).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&Category{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	keyToID := make(map[string]uint, len(defaultMainCategories))
	for _, mc := range defaultMainCategories {
		cat := Category{
			UserID:          userID,
			Name:            mc.name,
			Slug:            slug.Make(mc.name),
			TransactionType: mc.transactionType,
			Order:           mc.order,
		}
		if err := db.Create(&cat).Error; err != nil {
			return err
		}
		keyToID[mc.key] = cat.ID
	}
	for _, sc := range defaultSubCategories {
		parentID := keyToID[sc.parentKey]
		cat := Category{
			UserID:          userID,
			Name:            sc.name,
			Slug:            slug.Make(sc.name),
			TransactionType: sc.transactionType,
			ParentID:        &parentID,
			Order:           sc.order,
		}
		if err := db.Create(&cat).Error; err != nil {
			return err
		}
	}
	return nil
}
