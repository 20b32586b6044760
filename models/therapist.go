package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Therapist is the staff profile linked 1:1 to a User. Its Status mirrors the
// linked user's status.
type Therapist struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FullName           string     `gorm:"not null" json:"full_name"`
	Email              string     `gorm:"not null" json:"email"`
	Phone              string     `json:"phone"`
	Username           string     `json:"username,omitempty"`
	DateOfBirth        string     `json:"date_of_birth,omitempty"`
	ExperienceYears    float64    `json:"experience_years"`
	SalaryExpectation  *float64   `json:"salary_expectation,omitempty"`
	Address            string     `json:"address,omitempty"`
	BankDetails        string     `json:"bank_details,omitempty"`
	IDProofURL         string     `json:"id_proof_url,omitempty"`
	ProfilePhotoURL    string     `json:"profile_photo_url,omitempty"`
	AssignedPropertyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"assigned_property_id"`
	MonthlyTarget      float64    `gorm:"default:0" json:"monthly_target"`
	Status             string     `gorm:"not null;default:active;index" json:"status"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (t *Therapist) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	return nil
}
