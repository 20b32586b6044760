package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonthlyClosing is the persisted settlement of one property for one month.
type MonthlyClosing struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PropertyID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_closing_property_month" json:"property_id"`
	Month                  int        `gorm:"not null;uniqueIndex:idx_closing_property_month" json:"month"`
	Year                   int        `gorm:"not null;uniqueIndex:idx_closing_property_month" json:"year"`
	TotalBaseSales         float64    `json:"total_base_sales"`
	TotalGST               float64    `json:"total_gst"`
	RevenueSharePercentage float64    `json:"revenue_share_percentage"`
	HotelShare             float64    `json:"hotel_share"`
	BusinessShare          float64    `json:"business_share"`
	HotelReceived          float64    `json:"hotel_received"`
	BusinessReceived       float64    `json:"business_received"`
	SettlementBalance      float64    `json:"settlement_balance"`
	Locked                 bool       `gorm:"default:false" json:"locked"`
	ApprovedBy             *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt             *time.Time `json:"approved_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (m *MonthlyClosing) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IncentiveRecord is the persisted incentive of one therapist for one month.
type IncentiveRecord struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TherapistID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_incentive_therapist_month" json:"therapist_id"`
	Month              int        `gorm:"not null;uniqueIndex:idx_incentive_therapist_month" json:"month"`
	Year               int        `gorm:"not null;uniqueIndex:idx_incentive_therapist_month" json:"year"`
	Target             float64    `json:"target"`
	Threshold          float64    `json:"threshold"`
	ActualSales        float64    `json:"actual_sales"`
	ProgressPercentage float64    `json:"progress_percentage"`
	ExcessAmount       float64    `json:"excess_amount"`
	IncentiveEarned    float64    `json:"incentive_earned"`
	Approved           bool       `gorm:"default:false" json:"approved"`
	ApprovedBy         *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (i *IncentiveRecord) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&Therapist{},
		&Attendance{},
		&ServiceEntry{},
		&Expense{},
		&OTPRecord{},
		&MonthlyClosing{},
		&IncentiveRecord{},
	}
}
