package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance holds at most one row per therapist per calendar date (YYYY-MM-DD).
type Attendance struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TherapistID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_therapist_date" json:"therapist_id"`
	PropertyID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"property_id"`
	Date         string     `gorm:"not null;uniqueIndex:idx_attendance_therapist_date" json:"date"`
	CheckInTime  *time.Time `json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	GPSLocation  string     `json:"gps_location,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Attendance) TableName() string {
	return "attendance"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
