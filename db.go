package main

import (
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"finbook/models"
)

var db *gorm.DB

func initDB() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Fatal().Msg("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres database")
	}

	// Control schema migrations with env DB_AUTO_MIGRATE (default true).
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		for _, m := range []any{
			&models.User{},
			&models.Settings{},
			&models.Account{},
			&models.Category{},
			&models.Transaction{},
			&models.Attachment{},
			&models.RefreshToken{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				logger.Warn().Err(err).Msgf("migration warning (%T)", m)
			}
		}
		ensureUniqueIndexes()
	}

	ensureUploadBase()
}

// ensureUniqueIndexes creates the uniqueness constraints AutoMigrate cannot
// express: case-insensitive account names per user and the category sibling
// key. The store index, not application code, is the final arbiter when
// concurrent creations race on the same key.
func ensureUniqueIndexes() {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_user_lower_name
			ON accounts (user_id, lower(name))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_sibling_slug
			ON categories (user_id, COALESCE(parent_id, 0), transaction_type, slug)`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			logger.Warn().Err(err).Msg("index creation warning")
		}
	}
}

// ensureUploadBase creates the base directory for attachment files.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", base).Msg("failed to create upload base dir")
	}
}

// uploadBaseDir returns the base directory for stored attachments (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}
