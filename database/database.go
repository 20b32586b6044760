package database

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"wellness-ops-backend/config"
	"wellness-ops-backend/models"
	"wellness-ops-backend/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig, development bool) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	level := logger.Warn
	if development {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Ensure PostgreSQL has gen_random_uuid() available (pgcrypto extension).
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	return nil
}

// CreateDefaultAdmin seeds the bootstrap administrator. It reports whether a
// new account was created; an existing account with the same email or
// username is left untouched.
func CreateDefaultAdmin(db *gorm.DB, cfg config.AdminConfig, log *slog.Logger) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	username := strings.ToLower(strings.TrimSpace(cfg.Username))
	if email == "" || cfg.Password == "" {
		return false, errors.New("admin email and password are required")
	}

	query := db.Model(&models.User{}).Where("LOWER(email) = ?", email)
	if username != "" {
		query = query.Or("LOWER(username) = ?", username)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hashed, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return false, err
	}

	admin := models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
		FullName:     cfg.Name,
		Status:       models.StatusActive,
	}
	if username != "" {
		admin.Username = &username
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}

	if log != nil {
		log.Info("default admin created", "email", email)
	}
	return true, nil
}
