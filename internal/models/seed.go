package models

import (
	"fmt"
	"os"

	"faktura/internal/rbac"

	"golang.org/x/crypto/bcrypt"

	console "faktura/internal/utils/logger"

	"gorm.io/gorm"
)

var log = console.New("SEEDER")

// CreateAdminFromEnv bootstraps the first business and its admin user.
// The permission matrix itself is static process configuration in the
// rbac package and is never seeded to the database.
func CreateAdminFromEnv(db *gorm.DB) error {
	var count int64
	db.Model(&User{}).Where("role = ?", rbac.RoleAdmin).Count(&count)
	log.Info("Admin count: %d", count)
	if count > 0 {
		return nil
	}

	email, ok := os.LookupEnv("ADMIN_EMAIL")
	if !ok {
		return fmt.Errorf("ADMIN_EMAIL not set")
	}

	password, ok := os.LookupEnv("ADMIN_PASSWORD")
	if !ok {
		return fmt.Errorf("ADMIN_PASSWORD not set")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	name, ok := os.LookupEnv("ADMIN_NAME")
	if !ok {
		return fmt.Errorf("ADMIN_NAME not set")
	}

	businessName, ok := os.LookupEnv("ADMIN_BUSINESS_NAME")
	if !ok {
		return fmt.Errorf("ADMIN_BUSINESS_NAME not set")
	}

	business := Business{
		Name: businessName,
	}

	if err := db.Create(&business).Error; err != nil {
		return fmt.Errorf("failed to create business: %v", err)
	}

	user := User{
		FirstName:  name,
		LastName:   "",
		Email:      email,
		Role:       rbac.RoleAdmin,
		Password:   string(hashedPassword),
		BusinessID: business.ID,
	}

	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %v", err)
	}

	return nil
}
