package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finbook/models"
	"finbook/pkg/money"
)

func getSettingsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	var settings models.Settings
	err := db.Where(models.Settings{UserID: user.ID}).
		Attrs(models.Settings{DefaultCurrency: models.DefaultCurrency, FirstDayOfMonth: 1, Locale: "en-US"}).
		FirstOrCreate(&settings).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	respondOK(c, settings)
}

func updateSettingsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	var settings models.Settings
	err := db.Where(models.Settings{UserID: user.ID}).
		Attrs(models.Settings{DefaultCurrency: models.DefaultCurrency, FirstDayOfMonth: 1, Locale: "en-US"}).
		FirstOrCreate(&settings).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	var req struct {
		DefaultCurrency  *string `json:"defaultCurrency"`
		FirstDayOfMonth  *int    `json:"firstDayOfMonth"`
		Locale           *string `json:"locale" binding:"omitempty,max=20"`
		ShowDeletedMedia *bool   `json:"showDeletedMedia"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.DefaultCurrency != nil {
		if !money.Supported(*req.DefaultCurrency) {
			respondError(c, http.StatusBadRequest, "unsupported currency")
			return
		}
		settings.DefaultCurrency = *req.DefaultCurrency
	}
	if req.FirstDayOfMonth != nil {
		if *req.FirstDayOfMonth < 1 || *req.FirstDayOfMonth > 28 {
			respondError(c, http.StatusBadRequest, "firstDayOfMonth must be between 1 and 28")
			return
		}
		settings.FirstDayOfMonth = *req.FirstDayOfMonth
	}
	if req.Locale != nil {
		settings.Locale = *req.Locale
	}
	if req.ShowDeletedMedia != nil {
		settings.ShowDeletedMedia = *req.ShowDeletedMedia
	}
	if err := db.Save(&settings).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update settings")
		return
	}
	respondOK(c, settings)
}
