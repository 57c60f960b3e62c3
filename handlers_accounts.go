package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finbook/models"
	"finbook/pkg/listquery"
)

var accountListDef = listquery.Definition{
	Fields: map[string]string{
		"name":       "name",
		"isArchived": "is_archived",
		"order":      "display_order",
		"createdAt":  "created_at",
	},
	Text: map[string]bool{
		"name": true,
	},
}

func listAccountsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	q := listquery.Parse(c.Request.URL.Query(), accountListDef)
	tx := db.Model(&models.Account{}).Where("user_id = ?", user.ID)
	env, _, err := listquery.Run[models.Account](tx, q)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, env)
}

func createAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	var req struct {
		Name  string `json:"name" binding:"required,max=50"`
		Order int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	account := models.Account{
		UserID: user.ID,
		Name:   strings.TrimSpace(req.Name),
		Order:  req.Order,
	}
	if account.Name == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	if err := db.Create(&account).Error; err != nil {
		if isUniqueConstraintError(err) {
			respondError(c, http.StatusConflict, "an account with this name already exists")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create account")
		return
	}
	respondCreated(c, account)
}

func getAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}
	var account models.Account
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&account).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("account with id %d not found", id))
		return
	}
	respondOK(c, account)
}

func updateAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}
	var account models.Account
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&account).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("account with id %d not found", id))
		return
	}
	var req struct {
		Name       *string `json:"name" binding:"omitempty,max=50"`
		IsArchived *bool   `json:"isArchived"`
		Order      *int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(c, http.StatusBadRequest, "name cannot be empty")
			return
		}
		account.Name = name
	}
	if req.IsArchived != nil {
		account.IsArchived = *req.IsArchived
	}
	if req.Order != nil {
		account.Order = *req.Order
	}
	if err := db.Save(&account).Error; err != nil {
		if isUniqueConstraintError(err) {
			respondError(c, http.StatusConflict, "an account with this name already exists")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update account")
		return
	}
	respondOK(c, account)
}

func archiveAccountHandler(c *gin.Context)   { setAccountArchived(c, true) }
func unarchiveAccountHandler(c *gin.Context) { setAccountArchived(c, false) }

func setAccountArchived(c *gin.Context, archived bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}
	res := db.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_archived", archived)
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "failed to update account")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, fmt.Sprintf("account with id %d not found", id))
		return
	}
	var account models.Account
	if err := db.First(&account, id).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load account")
		return
	}
	respondOK(c, account)
}

func deleteAccountHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "account not found")
		return
	}
	res := db.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Account{})
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete account")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, fmt.Sprintf("account with id %d not found", id))
		return
	}
	respondOK(c, gin.H{})
}
