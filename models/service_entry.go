package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReceivedByHotel    = "hotel"
	ReceivedByBusiness = "business"

	PaymentModeCash = "cash"
	PaymentModeUPI  = "upi"
	PaymentModeCard = "card"
)

// ServiceEntry is a billable therapy session. It is locked on creation; only
// the notification status columns change afterwards.
type ServiceEntry struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TherapistID       uuid.UUID `gorm:"type:uuid;not null;index" json:"therapist_id"`
	PropertyID        uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	CustomerName      string    `gorm:"not null" json:"customer_name"`
	CustomerPhone     string    `gorm:"not null;index" json:"customer_phone"`
	CustomerEmail     string    `json:"customer_email,omitempty"`
	TherapyType       string    `gorm:"not null" json:"therapy_type"`
	TherapyDuration   string    `json:"therapy_duration"`
	BasePrice         float64   `gorm:"not null" json:"base_price"`
	GSTAmount         float64   `gorm:"not null" json:"gst_amount"`
	TotalAmount       float64   `gorm:"not null" json:"total_amount"`
	PaymentReceivedBy string    `gorm:"not null" json:"payment_received_by"`
	PaymentMode       string    `json:"payment_mode,omitempty"`
	Date              string    `gorm:"not null;index" json:"date"`
	Time              string    `json:"time"`
	Locked            bool      `gorm:"default:true" json:"locked"`
	WhatsAppStatus    string    `gorm:"column:whatsapp_status" json:"whatsapp_status,omitempty"`
	WhatsAppMessageID string    `gorm:"column:whatsapp_message_id" json:"whatsapp_message_id,omitempty"`
	EmailStatus       string    `json:"email_status,omitempty"`
	EmailMessageID    string    `json:"email_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (ServiceEntry) TableName() string {
	return "service_entries"
}

func (s *ServiceEntry) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Locked = true
	return nil
}
