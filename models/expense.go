package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ExpenseSalary       = "salary"
	ExpenseLivingCost   = "living_cost"
	ExpenseMarketing    = "marketing"
	ExpenseDisposables  = "disposables"
	ExpenseOilAromatics = "oil_aromatics"
	ExpenseEssentials   = "essentials"
	ExpenseBillBooks    = "bill_books"
	ExpenseOther        = "other"

	ExpenseRecurring = "recurring"
	ExpenseOneOff    = "one-off"
)

var ExpenseTypes = []string{
	ExpenseSalary, ExpenseLivingCost, ExpenseMarketing, ExpenseDisposables,
	ExpenseOilAromatics, ExpenseEssentials, ExpenseBillBooks, ExpenseOther,
}

// Expense with a nil PropertyID is a shared cost across all properties.
type Expense struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PropertyID  *uuid.UUID `gorm:"type:uuid;index" json:"property_id"`
	ExpenseType string     `gorm:"not null;index" json:"expense_type"`
	Category    string     `gorm:"not null" json:"category"`
	Amount      float64    `gorm:"not null" json:"amount"`
	Description string     `json:"description,omitempty"`
	Date        string     `gorm:"not null;index" json:"date"`
	TherapistID *uuid.UUID `gorm:"type:uuid" json:"therapist_id,omitempty"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
