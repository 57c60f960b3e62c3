package main

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finbook/models"
	"finbook/pkg/listquery"
	"finbook/pkg/money"
	"finbook/pkg/reports"
)

var transactionListDef = listquery.Definition{
	Fields: map[string]string{
		"type":            "type",
		"status":          "status",
		"amount":          "amount",
		"date":            "date",
		"dueDate":         "due_date",
		"reminderDate":    "reminder_date",
		"note":            "note",
		"facility":        "facility",
		"receiptTaken":    "receipt_taken",
		"isInstallment":   "is_installment",
		"isReadyToDeduct": "is_ready_to_deduct",
		"account":         "account_id",
		"category":        "category_id",
		"website":         "website",
		"createdAt":       "created_at",
	},
	Text: map[string]bool{
		"type":     true,
		"status":   true,
		"note":     true,
		"facility": true,
		"website":  true,
	},
}

var websiteRE = regexp.MustCompile(`^https?://\S+$`)

// userCurrency returns the user's configured currency, falling back to the
// default when no settings row exists yet.
func userCurrency(userID uint) string {
	var settings models.Settings
	if err := db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return models.DefaultCurrency
	}
	return settings.DefaultCurrency
}

func listTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	q := listquery.Parse(c.Request.URL.Query(), transactionListDef)
	tx := db.Model(&models.Transaction{}).Where("user_id = ?", user.ID)
	env, items, err := listquery.Run[models.Transaction](tx, q, models.TransactionPreloads()...)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	if items != nil {
		currency := userCurrency(user.ID)
		views := make([]reports.TransactionView, 0, len(items))
		for _, t := range items {
			views = append(views, reports.NewTransactionView(t, currency))
		}
		env.Data = views
	}
	c.JSON(http.StatusOK, env)
}

// transactionRequest is shared by create and update; every field is a
// pointer so partial updates can tell absent from zero.
type transactionRequest struct {
	Type            *string          `json:"type"`
	Date            *time.Time       `json:"date"`
	DueDate         *time.Time       `json:"dueDate"`
	ReminderDate    *time.Time       `json:"reminderDate"`
	Amount          *decimal.Decimal `json:"amount"`
	Status          *string          `json:"status"`
	Note            *string          `json:"note" binding:"omitempty,max=50"`
	Facility        *string          `json:"facility" binding:"omitempty,max=50"`
	Description     *string          `json:"description" binding:"omitempty,max=500"`
	ReceiptTaken    *bool            `json:"receiptTaken"`
	IsInstallment   *bool            `json:"isInstallment"`
	IsReadyToDeduct *bool            `json:"isReadyToDeduct"`
	Attachments     *[]string        `json:"attachments"`
	Website         *string          `json:"website" binding:"omitempty,max=512"`
	Account         *uint            `json:"account"`
	Category        *uint            `json:"category"`
}

func (r *transactionRequest) validateEnums(c *gin.Context) bool {
	if r.Type != nil && !slices.Contains(models.TransactionTypes, *r.Type) {
		respondError(c, http.StatusBadRequest, "type must be income or expense")
		return false
	}
	if r.Status != nil && !slices.Contains(models.TransactionStatuses, *r.Status) {
		respondError(c, http.StatusBadRequest, "status must be pending or completed")
		return false
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		respondError(c, http.StatusBadRequest, "amount cannot be negative")
		return false
	}
	if r.Website != nil && *r.Website != "" && !websiteRE.MatchString(*r.Website) {
		respondError(c, http.StatusBadRequest, "website must be a valid http(s) URL")
		return false
	}
	return true
}

// verifyTransactionRefs checks that any referenced category or account
// exists and belongs to the user.
func verifyTransactionRefs(c *gin.Context, userID uint, categoryID, accountID *uint) bool {
	if categoryID != nil {
		var category models.Category
		if err := db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
			respondError(c, http.StatusNotFound, fmt.Sprintf("category with id %d not found", *categoryID))
			return false
		}
	}
	if accountID != nil && *accountID != 0 {
		var account models.Account
		if err := db.Where("id = ? AND user_id = ?", *accountID, userID).First(&account).Error; err != nil {
			respondError(c, http.StatusNotFound, fmt.Sprintf("account with id %d not found", *accountID))
			return false
		}
	}
	return true
}

func createTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Type == nil || req.Date == nil || req.Amount == nil || req.Status == nil || req.Note == nil || req.Category == nil {
		respondError(c, http.StatusBadRequest, "type, date, amount, status, note and category are required")
		return
	}
	if !req.validateEnums(c) {
		return
	}
	if !verifyTransactionRefs(c, user.ID, req.Category, req.Account) {
		return
	}
	currency := userCurrency(user.ID)
	transaction := models.Transaction{
		UserID:          user.ID,
		Type:            *req.Type,
		Date:            *req.Date,
		DueDate:         req.DueDate,
		ReminderDate:    req.ReminderDate,
		Amount:          money.ToSmallestUnit(*req.Amount, currency),
		Status:          *req.Status,
		Note:            *req.Note,
		CategoryID:      *req.Category,
		Attachments:     []string{},
		IsReadyToDeduct: true,
	}
	if req.Facility != nil {
		transaction.Facility = *req.Facility
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.ReceiptTaken != nil {
		transaction.ReceiptTaken = *req.ReceiptTaken
	}
	if req.IsInstallment != nil {
		transaction.IsInstallment = *req.IsInstallment
	}
	if req.IsReadyToDeduct != nil {
		transaction.IsReadyToDeduct = *req.IsReadyToDeduct
	}
	if req.Attachments != nil {
		transaction.Attachments = *req.Attachments
	}
	if req.Website != nil {
		transaction.Website = *req.Website
	}
	if req.Account != nil && *req.Account != 0 {
		transaction.AccountID = req.Account
	}
	if err := db.Create(&transaction).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create transaction")
		return
	}
	reloadTx := db.Preload(models.TransactionPreloads()[0])
	for _, p := range models.TransactionPreloads()[1:] {
		reloadTx = reloadTx.Preload(p)
	}
	if err := reloadTx.First(&transaction, transaction.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load transaction")
		return
	}
	respondCreated(c, reports.NewTransactionView(transaction, currency))
}

func getTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "transaction not found")
		return
	}
	tx := db.Where("id = ? AND user_id = ?", id, user.ID)
	for _, p := range models.TransactionPreloads() {
		tx = tx.Preload(p)
	}
	var transaction models.Transaction
	if err := tx.First(&transaction).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("transaction with id %d not found", id))
		return
	}
	respondOK(c, reports.NewTransactionView(transaction, userCurrency(user.ID)))
}

func updateTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "transaction not found")
		return
	}
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&transaction).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("transaction with id %d not found", id))
		return
	}
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.validateEnums(c) {
		return
	}
	if !verifyTransactionRefs(c, user.ID, req.Category, req.Account) {
		return
	}
	currency := userCurrency(user.ID)
	if req.Type != nil {
		transaction.Type = *req.Type
	}
	if req.Date != nil {
		transaction.Date = *req.Date
	}
	if req.DueDate != nil {
		transaction.DueDate = req.DueDate
	}
	if req.ReminderDate != nil {
		transaction.ReminderDate = req.ReminderDate
	}
	if req.Amount != nil {
		transaction.Amount = money.ToSmallestUnit(*req.Amount, currency)
	}
	if req.Status != nil {
		transaction.Status = *req.Status
	}
	if req.Note != nil {
		transaction.Note = *req.Note
	}
	if req.Facility != nil {
		transaction.Facility = *req.Facility
	}
	if req.Description != nil {
		transaction.Description = *req.Description
	}
	if req.ReceiptTaken != nil {
		transaction.ReceiptTaken = *req.ReceiptTaken
	}
	if req.IsInstallment != nil {
		transaction.IsInstallment = *req.IsInstallment
	}
	if req.IsReadyToDeduct != nil {
		transaction.IsReadyToDeduct = *req.IsReadyToDeduct
	}
	if req.Attachments != nil {
		transaction.Attachments = *req.Attachments
	}
	if req.Website != nil {
		transaction.Website = *req.Website
	}
	if req.Category != nil {
		transaction.CategoryID = *req.Category
	}
	if req.Account != nil {
		if *req.Account == 0 {
			transaction.AccountID = nil
		} else {
			transaction.AccountID = req.Account
		}
	}
	if err := db.Save(&transaction).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update transaction")
		return
	}
	tx := db.Preload(models.TransactionPreloads()[0])
	for _, p := range models.TransactionPreloads()[1:] {
		tx = tx.Preload(p)
	}
	if err := tx.First(&transaction, transaction.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load transaction")
		return
	}
	respondOK(c, reports.NewTransactionView(transaction, currency))
}

func deleteTransactionHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "transaction not found")
		return
	}
	res := db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Transaction{})
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, fmt.Sprintf("transaction with id %d not found", id))
		return
	}
	respondOK(c, gin.H{})
}

// yearParam reads the year query parameter, defaulting to the current year.
func yearParam(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return time.Now().UTC().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || !reports.ValidYear(year) {
		respondError(c, http.StatusBadRequest, "Invalid year parameter")
		return 0, false
	}
	return year, true
}

func monthlyTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	year, ok := yearParam(c)
	if !ok {
		return
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	tx := db.Where("user_id = ? AND date >= ? AND date < ?", user.ID, from, to).Order("date ASC")
	for _, p := range models.TransactionPreloads() {
		tx = tx.Preload(p)
	}
	var txs []models.Transaction
	if err := tx.Find(&txs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load transactions")
		return
	}
	months := reports.Monthly(txs, userCurrency(user.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(months), "data": months})
}

func summaryTransactionsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	tx := db.Model(&models.Transaction{}).Where("user_id = ?", user.ID)
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || !reports.ValidYear(year) {
			respondError(c, http.StatusBadRequest, "Invalid year parameter")
			return
		}
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		tx = tx.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
	}
	var rows []reports.TypeStatusTotal
	err := tx.Select("type, status, COALESCE(SUM(amount), 0) AS total").
		Group("type, status").
		Scan(&rows).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to summarize transactions")
		return
	}
	respondOK(c, reports.Summarize(rows, userCurrency(user.ID)))
}
