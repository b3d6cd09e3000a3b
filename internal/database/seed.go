package database

import (
	"errors"

	"roti-erp/internal/auth"
	"roti-erp/internal/config"
	"roti-erp/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the first SUPER_ADMIN when the users table is empty.
func Seed(db *gorm.DB, cfg config.DBConfig, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.SeedPassword == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required to seed the first user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        cfg.SeedEmail,
		PasswordHash: string(hash),
		Role:         string(auth.RoleSuperAdmin),
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("Seeded administrator account", zap.String("email", admin.Email))
	return nil
}
