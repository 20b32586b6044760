package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"wellness-ops-backend/models"
	"wellness-ops-backend/notifications"
	"wellness-ops-backend/utils"

	"gorm.io/gorm"
)

// OTPTTL is how long an issued code stays valid.
const OTPTTL = 10 * time.Minute

const otpDigits = 6

// OTPSender delivers a reset code to an admin.
type OTPSender interface {
	SendOTP(ctx context.Context, to, name, code string) notifications.Result
}

// OTPService runs the admin password-reset flow.
type OTPService struct {
	DB     *gorm.DB
	Sender OTPSender
	Now    Clock
	Log    *slog.Logger
}

func NewOTPService(db *gorm.DB, sender OTPSender, log *slog.Logger) *OTPService {
	return &OTPService{DB: db, Sender: sender, Log: log}
}

// OTPIssue describes a freshly issued code. Code is set only when email
// delivery failed and the caller has to hand the code over directly.
type OTPIssue struct {
	Email     string
	ExpiresAt time.Time
	Delivery  notifications.Result
	Code      string
}

func (s *OTPService) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// Request resolves identifier (email or username), replaces any previous
// code for that email and sends the new one.
func (s *OTPService) Request(ctx context.Context, identifier string) (*OTPIssue, error) {
	user, err := FindUserByIdentifier(ctx, s.DB, identifier)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RoleAdmin {
		return nil, detail(ErrForbidden, "Password reset via OTP is only available for admin accounts")
	}

	code, err := generateSecureOTP(otpDigits)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	now := s.Now.now()
	record := models.OTPRecord{
		Email:     user.Email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(OTPTTL),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", user.Email).Delete(&models.OTPRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	issue := &OTPIssue{Email: user.Email, ExpiresAt: record.ExpiresAt}
	if s.Sender != nil {
		issue.Delivery = s.Sender.SendOTP(ctx, user.Email, user.FullName, code)
	} else {
		issue.Delivery = notifications.Result{Status: notifications.StatusDisabled}
	}
	if !issue.Delivery.Delivered() {
		s.logger().Warn("otp email not delivered, returning code to caller",
			"email", user.Email, "status", issue.Delivery.Status, "error", issue.Delivery.Error())
		issue.Code = code
	}
	return issue, nil
}

// Verify checks the code without consuming it.
func (s *OTPService) Verify(ctx context.Context, identifier, code string) error {
	_, err := s.liveRecord(s.DB.WithContext(ctx), identifier, code)
	return err
}

// ChangePassword validates the code, sets the new password on the user the
// code was issued for and marks the code used.
func (s *OTPService) ChangePassword(ctx context.Context, identifier, code, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < utils.MinPasswordLength {
		return detail(ErrValidation, fmt.Sprintf("Password must be at least %d characters", utils.MinPasswordLength))
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.liveRecord(tx, identifier, code)
		if err != nil {
			return err
		}

		res := tx.Model(&models.User{}).Where("email = ?", record.Email).Update("password_hash", hash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return detail(ErrNotFound, "User not found")
		}
		return tx.Model(&models.OTPRecord{}).Where("id = ?", record.ID).Update("used", true).Error
	})
}

// Purge removes used and expired codes.
func (s *OTPService) Purge(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("used = ? OR expires_at < ?", true, s.Now.now()).
		Delete(&models.OTPRecord{})
	return res.RowsAffected, res.Error
}

func (s *OTPService) liveRecord(tx *gorm.DB, identifier, code string) (*models.OTPRecord, error) {
	email, err := s.resolveEmail(tx, identifier)
	if err != nil {
		return nil, err
	}

	var record models.OTPRecord
	err = tx.Where("email = ? AND code = ? AND used = ?", email, strings.TrimSpace(code), false).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredOTP
		}
		return nil, err
	}
	if record.Expired(s.Now.now()) {
		return nil, ErrInvalidOrExpiredOTP
	}
	return &record, nil
}

// resolveEmail maps a username alias to its email; emails pass through normalised.
func (s *OTPService) resolveEmail(tx *gorm.DB, identifier string) (string, error) {
	id := NormalizeIdentifier(identifier)
	if strings.Contains(id, "@") {
		return id, nil
	}
	var user models.User
	if err := tx.Select("email").Where("username = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidOrExpiredOTP
		}
		return "", err
	}
	return user.Email, nil
}

// NormalizeIdentifier trims and lower-cases a login identifier.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// FindUserByIdentifier looks up an active user by email or username alias.
func FindUserByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*models.User, error) {
	id := NormalizeIdentifier(identifier)
	if id == "" {
		return nil, detail(ErrValidation, "Email or username is required")
	}

	var user models.User
	err := db.WithContext(ctx).
		Where("(email = ? OR username = ?) AND status = ?", id, id, models.StatusActive).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detail(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

// generateSecureOTP draws each digit from crypto/rand.
func generateSecureOTP(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(n.String())
	}
	return b.String(), nil
}
