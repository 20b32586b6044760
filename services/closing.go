package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClosingService persists monthly settlements and incentives.
type ClosingService struct {
	DB  *gorm.DB
	Now Clock
	Log *slog.Logger
}

func NewClosingService(db *gorm.DB, log *slog.Logger) *ClosingService {
	return &ClosingService{DB: db, Log: log}
}

type ClosingReport struct {
	Month      int                      `json:"month"`
	Year       int                      `json:"year"`
	Closings   []models.MonthlyClosing  `json:"closings"`
	Incentives []models.IncentiveRecord `json:"incentives"`
	Skipped    int                      `json:"skipped"`
}

// ValidateMonth rejects months outside 1..12 and implausible years.
func ValidateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return detail(ErrValidation, "month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return detail(ErrValidation, "year is out of range")
	}
	return nil
}

// ClosePreviousMonth closes the calendar month before now.
func (s *ClosingService) ClosePreviousMonth(ctx context.Context) (*ClosingReport, error) {
	prev := finance.MonthOf(s.Now.now()).AddMonths(-1)
	return s.Close(ctx, prev.Year, prev.Month)
}

// Close computes the settlement for every active property and the incentive
// for every active therapist for the month. Locked closings and approved
// incentives are left untouched.
func (s *ClosingService) Close(ctx context.Context, year, month int) (*ClosingReport, error) {
	if err := ValidateMonth(year, month); err != nil {
		return nil, err
	}
	key := finance.MonthKey{Year: year, Month: month}
	report := &ClosingReport{Month: month, Year: year}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var properties []models.Property
		if err := tx.Where("status = ?", models.StatusActive).Order("hotel_name ASC").Find(&properties).Error; err != nil {
			return err
		}
		for _, p := range properties {
			closing, skipped, err := s.closeProperty(ctx, tx, p, key)
			if err != nil {
				return fmt.Errorf("close property %s: %w", p.ID, err)
			}
			if skipped {
				report.Skipped++
				continue
			}
			report.Closings = append(report.Closings, *closing)
		}

		var therapists []models.Therapist
		if err := tx.Where("status = ?", models.StatusActive).Order("full_name ASC").Find(&therapists).Error; err != nil {
			return err
		}
		for _, t := range therapists {
			record, skipped, err := s.closeTherapist(ctx, tx, t, key)
			if err != nil {
				return fmt.Errorf("close therapist %s: %w", t.ID, err)
			}
			if skipped {
				report.Skipped++
				continue
			}
			report.Incentives = append(report.Incentives, *record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Log != nil {
		s.Log.Info("monthly closing completed",
			"year", year, "month", month,
			"closings", len(report.Closings), "incentives", len(report.Incentives), "skipped", report.Skipped)
	}
	return report, nil
}

func (s *ClosingService) closeProperty(ctx context.Context, tx *gorm.DB, p models.Property, key finance.MonthKey) (*models.MonthlyClosing, bool, error) {
	var closing models.MonthlyClosing
	err := tx.Where("property_id = ? AND month = ? AND year = ?", p.ID, key.Month, key.Year).First(&closing).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if exists && closing.Locked {
		return nil, true, nil
	}

	entries, err := MonthEntries(ctx, tx, "property_id", p.ID, key)
	if err != nil {
		return nil, false, err
	}
	st := finance.ComputeSettlement(p.SharePercentage(), finance.EntriesFrom(entries))

	closing.PropertyID = p.ID
	closing.Month = key.Month
	closing.Year = key.Year
	closing.TotalBaseSales = st.TotalBaseSales
	closing.TotalGST = st.TotalGST
	closing.RevenueSharePercentage = st.RevenueSharePercentage
	closing.HotelShare = st.HotelShare
	closing.BusinessShare = st.BusinessShare
	closing.HotelReceived = st.HotelReceived
	closing.BusinessReceived = st.BusinessReceived
	closing.SettlementBalance = st.SettlementBalance

	if exists {
		err = tx.Save(&closing).Error
	} else {
		err = tx.Create(&closing).Error
	}
	return &closing, false, err
}

func (s *ClosingService) closeTherapist(ctx context.Context, tx *gorm.DB, t models.Therapist, key finance.MonthKey) (*models.IncentiveRecord, bool, error) {
	var record models.IncentiveRecord
	err := tx.Where("therapist_id = ? AND month = ? AND year = ?", t.ID, key.Month, key.Year).First(&record).Error
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if exists && record.Approved {
		return nil, true, nil
	}

	entries, err := MonthEntries(ctx, tx, "therapist_id", t.ID, key)
	if err != nil {
		return nil, false, err
	}
	inc := finance.IncentiveFromEntries(t.MonthlyTarget, finance.EntriesFrom(entries))

	record.TherapistID = t.ID
	record.Month = key.Month
	record.Year = key.Year
	record.Target = inc.Target
	record.Threshold = inc.Threshold
	record.ActualSales = inc.ActualSales
	record.ProgressPercentage = inc.ProgressPercentage
	record.ExcessAmount = inc.ExcessAmount
	record.IncentiveEarned = inc.IncentiveEarned

	if exists {
		err = tx.Save(&record).Error
	} else {
		err = tx.Create(&record).Error
	}
	return &record, false, err
}

// ApproveClosing locks a closing so later runs leave it alone.
func (s *ClosingService) ApproveClosing(ctx context.Context, id, approver uuid.UUID) (*models.MonthlyClosing, error) {
	db := s.DB.WithContext(ctx)
	var closing models.MonthlyClosing
	if err := db.First(&closing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detail(ErrNotFound, "Closing not found")
		}
		return nil, err
	}
	if closing.Locked {
		return nil, detail(ErrConflict, "Closing is already approved")
	}

	now := s.Now.now()
	err := db.Model(&closing).Updates(map[string]interface{}{
		"locked":      true,
		"approved_by": approver,
		"approved_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	closing.Locked = true
	closing.ApprovedBy = &approver
	closing.ApprovedAt = &now
	return &closing, nil
}

// ApproveIncentive marks an incentive record approved for payout.
func (s *ClosingService) ApproveIncentive(ctx context.Context, id, approver uuid.UUID) (*models.IncentiveRecord, error) {
	db := s.DB.WithContext(ctx)
	var record models.IncentiveRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detail(ErrNotFound, "Incentive record not found")
		}
		return nil, err
	}
	if record.Approved {
		return nil, detail(ErrConflict, "Incentive is already approved")
	}

	now := s.Now.now()
	err := db.Model(&record).Updates(map[string]interface{}{
		"approved":    true,
		"approved_by": approver,
		"approved_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	record.Approved = true
	record.ApprovedBy = &approver
	record.ApprovedAt = &now
	return &record, nil
}
