// Command seed imports or deletes the demo dataset, mirroring the -i/-d
// flags of the original data seeder. The demo user is created with its
// default settings and category tree so the API is usable immediately.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"finbook/models"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 || (os.Args[1] != "-i" && os.Args[1] != "-d") {
		fmt.Fprintln(os.Stderr, "usage: seed -i (import demo data) | -d (delete all data)")
		os.Exit(2)
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN is required")
		os.Exit(1)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to connect:", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "-i":
		if err := importDemoUser(db); err != nil {
			fmt.Fprintln(os.Stderr, "import failed:", err)
			os.Exit(1)
		}
		fmt.Println("demo data imported")
	case "-d":
		if err := deleteAll(db); err != nil {
			fmt.Fprintln(os.Stderr, "delete failed:", err)
			os.Exit(1)
		}
		fmt.Println("all data deleted")
	}
}

func importDemoUser(db *gorm.DB) error {
	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		username = "demo"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		hash, herr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if herr != nil {
			return herr
		}
		user = models.User{Username: username, HashedPassword: hash}
		if cerr := db.Create(&user).Error; cerr != nil {
			return cerr
		}
	} else if err != nil {
		return err
	}
	return models.CreateUserDefaults(db, user.ID)
}

func deleteAll(db *gorm.DB) error {
	// sub-categories reference their parent row, so they go first
	if err := db.Where("parent_id IS NOT NULL").Delete(&models.Category{}).Error; err != nil {
		return err
	}
	// children before parents to respect foreign keys
	ordered := []any{
		&models.Attachment{},
		&models.Transaction{},
		&models.Category{},
		&models.Account{},
		&models.Settings{},
		&models.RefreshToken{},
		&models.User{},
	}
	for _, m := range ordered {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}
