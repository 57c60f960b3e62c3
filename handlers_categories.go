package main

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"

	"finbook/models"
	"finbook/pkg/listquery"
)

var categoryListDef = listquery.Definition{
	Fields: map[string]string{
		"name":            "name",
		"slug":            "slug",
		"transactionType": "transaction_type",
		"parent":          "parent_id",
		"isArchived":      "is_archived",
		"order":           "display_order",
		"createdAt":       "created_at",
	},
	Text: map[string]bool{
		"name":            true,
		"slug":            true,
		"transactionType": true,
	},
}

func listCategoriesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	q := listquery.Parse(c.Request.URL.Query(), categoryListDef)
	tx := db.Model(&models.Category{}).Where("user_id = ?", user.ID)
	env, _, err := listquery.Run[models.Category](tx, q, "Parent")
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list categories")
		return
	}
	c.JSON(http.StatusOK, env)
}

// verifyParentCategory checks that the referenced parent exists and belongs
// to the user. Sub-categories only go one level deep, so a parent must
// itself be a main category.
func verifyParentCategory(c *gin.Context, userID, parentID uint) (*models.Category, bool) {
	var parent models.Category
	if err := db.Where("id = ? AND user_id = ?", parentID, userID).First(&parent).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("category with id %d not found", parentID))
		return nil, false
	}
	if parent.ParentID != nil {
		respondError(c, http.StatusBadRequest, "parent must be a main category")
		return nil, false
	}
	return &parent, true
}

func createCategoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	var req struct {
		Name            string `json:"name" binding:"required,max=50"`
		TransactionType string `json:"transactionType" binding:"required"`
		Parent          *uint  `json:"parent"`
		Description     string `json:"description" binding:"omitempty,max=250"`
		Order           int    `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !slices.Contains(models.TransactionTypes, req.TransactionType) {
		respondError(c, http.StatusBadRequest, "transactionType must be income or expense")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}
	category := models.Category{
		UserID:          user.ID,
		Name:            name,
		Slug:            slug.Make(name),
		TransactionType: req.TransactionType,
		Description:     req.Description,
		Order:           req.Order,
	}
	if req.Parent != nil && *req.Parent != 0 {
		parent, ok := verifyParentCategory(c, user.ID, *req.Parent)
		if !ok {
			return
		}
		category.ParentID = &parent.ID
	}
	if err := db.Create(&category).Error; err != nil {
		if isUniqueConstraintError(err) {
			respondError(c, http.StatusConflict, "a category with this name already exists at this level")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create category")
		return
	}
	respondCreated(c, category)
}

func getCategoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "category not found")
		return
	}
	var category models.Category
	if err := db.Preload("Parent").Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("category with id %d not found", id))
		return
	}
	respondOK(c, category)
}

func updateCategoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "category not found")
		return
	}
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("category with id %d not found", id))
		return
	}
	var req struct {
		Name            *string `json:"name" binding:"omitempty,max=50"`
		TransactionType *string `json:"transactionType"`
		Parent          *uint   `json:"parent"`
		Description     *string `json:"description" binding:"omitempty,max=250"`
		IsArchived      *bool   `json:"isArchived"`
		Order           *int    `json:"order"`
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
		category.Name = name
		category.Slug = slug.Make(name)
	}
	if req.TransactionType != nil {
		if !slices.Contains(models.TransactionTypes, *req.TransactionType) {
			respondError(c, http.StatusBadRequest, "transactionType must be income or expense")
			return
		}
		category.TransactionType = *req.TransactionType
	}
	if req.Parent != nil {
		if *req.Parent == 0 {
			category.ParentID = nil
		} else {
			parent, ok := verifyParentCategory(c, user.ID, *req.Parent)
			if !ok {
				return
			}
			if parent.ID == category.ID {
				respondError(c, http.StatusBadRequest, "a category cannot be its own parent")
				return
			}
			category.ParentID = &parent.ID
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsArchived != nil {
		category.IsArchived = *req.IsArchived
	}
	if req.Order != nil {
		category.Order = *req.Order
	}
	if err := db.Save(&category).Error; err != nil {
		if isUniqueConstraintError(err) {
			respondError(c, http.StatusConflict, "a category with this name already exists at this level")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update category")
		return
	}
	respondOK(c, category)
}

func archiveCategoryHandler(c *gin.Context)   { setCategoryArchived(c, true) }
func unarchiveCategoryHandler(c *gin.Context) { setCategoryArchived(c, false) }

func setCategoryArchived(c *gin.Context, archived bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "category not found")
		return
	}
	res := db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("is_archived", archived)
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "failed to update category")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, fmt.Sprintf("category with id %d not found", id))
		return
	}
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load category")
		return
	}
	respondOK(c, category)
}

func deleteCategoryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "category not found")
		return
	}
	// ownership first: a foreign id must look absent, never reveal state
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("category with id %d not found", id))
		return
	}
	var count int64
	if err := db.Model(&models.Category{}).Where("parent_id = ?", category.ID).Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete category")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "cannot delete a category that has sub-categories")
		return
	}
	if err := db.Delete(&category).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete category")
		return
	}
	respondOK(c, gin.H{})
}
