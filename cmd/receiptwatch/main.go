// Command receiptwatch scans stored receipt images for attachments that have
// not been OCR-scanned yet and fills in their suggested amounts. With -watch
// it keeps running and picks up files as they land in the upload directory.
package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"finbook/models"
	"finbook/pkg/receipt"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var db *gorm.DB

var verbose bool

func main() {
	_ = godotenv.Load()

	defaultDir := os.Getenv("UPLOAD_BASE")
	if defaultDir == "" {
		defaultDir = "uploads"
	}
	dirFlag := flag.String("dir", defaultDir, "upload directory holding receipt images")
	watch := flag.Bool("watch", false, "keep watching the directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		logger.Fatal().Msg("DB_DSN must be set")
	}
	var err error
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	pending := loadPending()
	logger.Info().Int("pending", len(pending)).Int("workers", effectiveWorkers(*workers)).Msg("scanning attachments")
	runWorkerPool(*dirFlag, pending, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, effectiveWorkers(*workers)); err != nil {
			logger.Fatal().Err(err).Msg("watch failed")
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(ev *zerolog.Event, msg string) {
	if verbose {
		ev.Msg(msg)
	} else {
		ev.Discard()
	}
}

// loadPending fetches attachments that were never scanned and did not fail.
func loadPending() []models.Attachment {
	var out []models.Attachment
	if err := db.Where("scanned = ? AND failed = ?", false, false).Find(&out).Error; err != nil {
		logger.Error().Err(err).Msg("failed to load pending attachments")
	}
	return out
}

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

// runWorkerPool fans the initial batch out over workers; with extra channels
// it keeps the workers alive and relays watch events into the pool.
func runWorkerPool(dir string, initial []models.Attachment, workers int, extraCh ...<-chan string) {
	attCh := make(chan models.Attachment, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for att := range attCh {
				processAttachment(dir, att)
			}
		}()
	}
	go func() {
		for _, a := range initial {
			attCh <- a
		}
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for name := range c {
					var att models.Attachment
					err := db.Where("store_path = ? AND scanned = ? AND failed = ?", name, false, false).
						First(&att).Error
					if err != nil {
						logV(logger.Debug().Str("file", name), "no pending attachment for file")
						continue
					}
					attCh <- att
				}
			}(ch)
		}
		if len(extraCh) == 0 {
			close(attCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processAttachment runs the OCR scan for one attachment and records the
// outcome. A missing amount still counts as scanned; other errors mark the
// row failed so it is not retried forever.
func processAttachment(dir string, att models.Attachment) {
	currency := ownerCurrency(att.UserID)
	path := filepath.Join(dir, att.StorePath)

	units, raw, err := receipt.ExtractAmount(path, currency)
	switch {
	case err == nil:
		att.SuggestedAmount = units
		att.Scanned = true
		logger.Info().Uint("attachment", att.ID).Int64("amount", units).Str("raw", raw).Msg("scanned")
	case errors.Is(err, receipt.ErrNoAmount):
		att.Scanned = true
		logV(logger.Debug().Uint("attachment", att.ID), "no amount found")
	default:
		att.Failed = true
		att.FailedReason = err.Error()
		logger.Warn().Err(err).Uint("attachment", att.ID).Msg("scan failed")
	}
	if err := db.Save(&att).Error; err != nil {
		logger.Error().Err(err).Uint("attachment", att.ID).Msg("failed to save scan result")
	}
}

func ownerCurrency(userID uint) string {
	var settings models.Settings
	if err := db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return models.DefaultCurrency
	}
	return settings.DefaultCurrency
}

func watchDirectory(dir string, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info().Str("dir", dir).Msg("watching for new receipts")

	fileCh := make(chan string, 256)
	go func() {
		// debounce so half-written files settle before they are scanned
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				logger.Warn().Err(err).Msg("watch error")
			}
		}
	}()

	go runWorkerPool(dir, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}
