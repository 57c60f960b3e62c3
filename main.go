package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)

func main() {
	// Load ./.env if present before reading vars; existing env wins.
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change" // development fallback
	}
	jwtSecret = []byte(secret)

	// Support a lightweight migrate command: `./finbook migrate`
	// It runs AutoMigrate plus the raw unique indexes and exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		logger.Info().Msg("migration completed")
		return
	}

	initDB()

	r := gin.Default()

	setupRoutes(r)

	addr := ":" + getEnv("PORT", "8081")
	logger.Info().Str("addr", addr).Msg("listening")
	if err := r.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
