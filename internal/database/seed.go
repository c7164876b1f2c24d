package database

import (
	"fmt"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdmin creates the configured admin account when no user exists
// with that email. Without signup this is how the first login works.
func EnsureAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.App.AdminEmail == "" || cfg.App.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ?", cfg.App.AdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.App.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	admin := models.User{
		ID:           uuid.NewString(),
		Email:        cfg.App.AdminEmail,
		PasswordHash: string(hash),
		Name:         "Administrator",
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
