package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"finbook/models"
	"finbook/pkg/listquery"
	"finbook/pkg/receipt"
)

const maxUploadBytes = 5 << 20

var attachmentListDef = listquery.Definition{
	Fields: map[string]string{
		"fileName":    "file_name",
		"transaction": "transaction_id",
		"scanned":     "scanned",
		"failed":      "failed",
		"createdAt":   "created_at",
	},
	Text: map[string]bool{
		"fileName": true,
	},
}

func listAttachmentsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	q := listquery.Parse(c.Request.URL.Query(), attachmentListDef)
	tx := db.Model(&models.Attachment{}).Where("user_id = ?", user.ID)
	env, _, err := listquery.Run[models.Attachment](tx, q)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list attachments")
		return
	}
	c.JSON(http.StatusOK, env)
}

func getAttachmentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		respondError(c, http.StatusNotFound, "attachment not found")
		return
	}
	var attachment models.Attachment
	if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&attachment).Error; err != nil {
		respondError(c, http.StatusNotFound, fmt.Sprintf("attachment with id %d not found", id))
		return
	}
	respondOK(c, attachment)
}

func uploadAttachmentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "user not found")
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respondError(c, http.StatusBadRequest, "file exceeds the 5MB upload limit")
		return
	}

	var transaction *models.Transaction
	if raw := c.PostForm("transaction_id"); raw != "" {
		txID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || txID == 0 {
			respondError(c, http.StatusBadRequest, "invalid transaction_id")
			return
		}
		var t models.Transaction
		if err := db.Where("id = ? AND user_id = ?", txID, user.ID).First(&t).Error; err != nil {
			respondError(c, http.StatusNotFound, fmt.Sprintf("transaction with id %d not found", txID))
			return
		}
		transaction = &t
	}

	storedName := uuid.NewString() + "_" + filepath.Base(fileHeader.Filename)
	destPath := filepath.Join(uploadBaseDir(), storedName)
	if err := c.SaveUploadedFile(fileHeader, destPath); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	attachment := models.Attachment{
		UserID:      user.ID,
		FileName:    filepath.Base(fileHeader.Filename),
		StorePath:   storedName,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if transaction != nil {
		attachment.TransactionID = &transaction.ID
	}

	// scan inline; a failure here is not fatal, the watcher retries later
	if units, _, err := receipt.ExtractAmount(destPath, userCurrency(user.ID)); err == nil {
		attachment.SuggestedAmount = units
		attachment.Scanned = true
	} else if errors.Is(err, receipt.ErrNoAmount) {
		attachment.Scanned = true
	} else {
		logger.Warn().Err(err).Str("file", storedName).Msg("receipt scan failed, leaving for watcher")
	}

	if err := db.Create(&attachment).Error; err != nil {
		// don't leave the stored file orphaned
		_ = os.Remove(destPath)
		if isUniqueConstraintError(err) {
			respondError(c, http.StatusConflict, "an attachment with this file name already exists")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to save attachment")
		return
	}

	if transaction != nil {
		transaction.ReceiptTaken = true
		transaction.Attachments = append(transaction.Attachments, storedName)
		if err := db.Save(transaction).Error; err != nil {
			logger.Warn().Err(err).Uint("transaction", transaction.ID).Msg("failed to link attachment to transaction")
		}
	}

	respondCreated(c, attachment)
}
