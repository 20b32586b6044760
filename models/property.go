package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OwnershipOwned   = "owned"
	OwnershipPartner = "partner"

	PaymentCycleMonthly  = "monthly"
	PaymentCycleBiweekly = "biweekly"
)

// Property is a hotel or spa where services are delivered. Partner properties
// receive RevenueSharePercentage of base sales; owned properties carry no share.
type Property struct {
	ID                     uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	HotelName              string     `gorm:"not null;index" json:"hotel_name"`
	Location               string     `json:"location"`
	GSTNumber              string     `json:"gst_number"`
	OwnershipType          string     `gorm:"not null;default:partner" json:"ownership_type"`
	RevenueSharePercentage *float64   `json:"revenue_share_percentage"`
	ContractStartDate      string     `json:"contract_start_date,omitempty"`
	PaymentCycle           string     `gorm:"not null;default:monthly" json:"payment_cycle"`
	ContactPerson          string     `json:"contact_person,omitempty"`
	ContactNumber          string     `json:"contact_number,omitempty"`
	Active                 bool       `gorm:"default:true" json:"active"`
	Status                 string     `gorm:"not null;default:active;index" json:"status"`
	ArchivedAt             *time.Time `json:"archived_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return nil
}

// SharePercentage returns the partner share, or 0 for owned properties.
func (p *Property) SharePercentage() float64 {
	if p.RevenueSharePercentage == nil {
		return 0
	}
	return *p.RevenueSharePercentage
}
