package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"not null;index" json:"email"`
	Code      string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`
}

func (OTPRecord) TableName() string {
	return "otp_records"
}

func (o *OTPRecord) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Expired reports whether now is past the expiry instant.
func (o *OTPRecord) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
