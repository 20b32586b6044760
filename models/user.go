package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleTherapist = "therapist"
)

// Lifecycle status shared by users, properties and therapists.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

type User struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	Username           *string    `gorm:"uniqueIndex" json:"username,omitempty"`
	Phone              string     `json:"phone"`
	PasswordHash       string     `gorm:"not null" json:"-"`
	Role               string     `gorm:"not null;default:therapist" json:"role"` // admin, therapist
	FullName           string     `json:"full_name"`
	AssignedPropertyID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_property_id,omitempty"`
	Status             string     `gorm:"not null;default:active;index" json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
