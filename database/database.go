package database

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"benefits-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=benefits port=5432 sslmode=disable"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Benefit{},
		&models.Redemption{},
		&models.RefreshToken{},
	)
}

// CreateDefaultAdmin seeds an admin account so a fresh deployment is usable.
func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminEmployeeID, _ := strconv.Atoi(os.Getenv("ADMIN_EMPLOYEE_ID"))

	if adminEmail == "" {
		adminEmail = "admin@benefits.local"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}
	if adminEmployeeID == 0 {
		adminEmployeeID = 1
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		// Admin already exists
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:    adminEmployeeID,
		Email:     adminEmail,
		Password:  string(hashedPassword),
		Role:      "admin",
		FirstName: "Admin",
		LastName:  "User",
		IsActive:  true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Default admin created: %s", adminEmail)
	return nil
}
