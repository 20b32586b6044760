package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellness-ops-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeleteOutcome reports what a permanent delete request actually did.
type DeleteOutcome string

const (
	OutcomeDeleted  DeleteOutcome = "deleted"
	OutcomeArchived DeleteOutcome = "archived"
)

// ArchiveService moves properties and therapists between active and archived.
type ArchiveService struct {
	DB  *gorm.DB
	Now Clock
}

func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{DB: db}
}

func (s *ArchiveService) loadProperty(tx *gorm.DB, id uuid.UUID) (*models.Property, error) {
	var property models.Property
	if err := tx.First(&property, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detail(ErrNotFound, "Property not found")
		}
		return nil, err
	}
	return &property, nil
}

func (s *ArchiveService) loadTherapist(tx *gorm.DB, id uuid.UUID) (*models.Therapist, error) {
	var therapist models.Therapist
	if err := tx.First(&therapist, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, detail(ErrNotFound, "Therapist not found")
		}
		return nil, err
	}
	return &therapist, nil
}

// ArchiveProperty archives the property and every active therapist assigned to
// it, together with their user accounts. It returns the number of therapists archived.
func (s *ArchiveService) ArchiveProperty(ctx context.Context, id uuid.UUID) (*models.Property, int, error) {
	var property *models.Property
	cascaded := 0

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		property, err = s.loadProperty(tx, id)
		if err != nil {
			return err
		}
		if property.Status == models.StatusArchived {
			return detail(ErrConflict, "Property is already archived")
		}

		now := s.Now.now()
		if err := archiveProperty(tx, property, now); err != nil {
			return err
		}

		var therapists []models.Therapist
		if err := tx.Where("assigned_property_id = ? AND status = ?", id, models.StatusActive).Find(&therapists).Error; err != nil {
			return err
		}
		for i := range therapists {
			if err := archiveTherapist(tx, &therapists[i], now); err != nil {
				return err
			}
		}
		cascaded = len(therapists)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return property, cascaded, nil
}

// RestoreProperty reactivates an archived property. Its therapists stay archived.
func (s *ArchiveService) RestoreProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	db := s.DB.WithContext(ctx)
	property, err := s.loadProperty(db, id)
	if err != nil {
		return nil, err
	}
	if property.Status != models.StatusArchived {
		return nil, detail(ErrConflict, "Property is not archived")
	}

	err = db.Model(property).Updates(map[string]interface{}{
		"status":      models.StatusActive,
		"active":      true,
		"archived_at": nil,
	}).Error
	if err != nil {
		return nil, err
	}
	property.Status = models.StatusActive
	property.Active = true
	property.ArchivedAt = nil
	return property, nil
}

// DeleteProperty is the permanent delete path. It refuses while active
// therapists are assigned, archives instead when any history references the
// property, and hard-deletes otherwise.
func (s *ArchiveService) DeleteProperty(ctx context.Context, id uuid.UUID) (DeleteOutcome, error) {
	var outcome DeleteOutcome

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.loadProperty(tx, id)
		if err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.Therapist{}).
			Where("assigned_property_id = ? AND status = ?", id, models.StatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return detail(ErrConflict, fmt.Sprintf("Cannot delete property with %d active therapist(s) assigned", active))
		}

		referenced, err := propertyReferenced(tx, id)
		if err != nil {
			return err
		}
		if referenced {
			outcome = OutcomeArchived
			if property.Status == models.StatusArchived {
				return nil
			}
			return archiveProperty(tx, property, s.Now.now())
		}

		outcome = OutcomeDeleted
		return tx.Delete(property).Error
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// ArchiveTherapist archives the therapist profile and its linked user.
func (s *ArchiveService) ArchiveTherapist(ctx context.Context, id uuid.UUID) (*models.Therapist, error) {
	var therapist *models.Therapist
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		therapist, err = s.loadTherapist(tx, id)
		if err != nil {
			return err
		}
		if therapist.Status == models.StatusArchived {
			return detail(ErrConflict, "Therapist is already archived")
		}
		return archiveTherapist(tx, therapist, s.Now.now())
	})
	if err != nil {
		return nil, err
	}
	return therapist, nil
}

// RestoreTherapist reactivates the therapist and its user. The assigned
// property is left as it is.
func (s *ArchiveService) RestoreTherapist(ctx context.Context, id uuid.UUID) (*models.Therapist, error) {
	var therapist *models.Therapist
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		therapist, err = s.loadTherapist(tx, id)
		if err != nil {
			return err
		}
		if therapist.Status != models.StatusArchived {
			return detail(ErrConflict, "Therapist is not archived")
		}

		restore := map[string]interface{}{"status": models.StatusActive, "archived_at": nil}
		if err := tx.Model(&models.Therapist{}).Where("id = ?", therapist.ID).Updates(restore).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", therapist.UserID).Updates(restore).Error; err != nil {
			return err
		}
		therapist.Status = models.StatusActive
		therapist.ArchivedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	return therapist, nil
}

func archiveProperty(tx *gorm.DB, property *models.Property, now time.Time) error {
	err := tx.Model(&models.Property{}).Where("id = ?", property.ID).Updates(map[string]interface{}{
		"status":      models.StatusArchived,
		"active":      false,
		"archived_at": now,
	}).Error
	if err != nil {
		return err
	}
	property.Status = models.StatusArchived
	property.Active = false
	property.ArchivedAt = &now
	return nil
}

func archiveTherapist(tx *gorm.DB, therapist *models.Therapist, now time.Time) error {
	archived := map[string]interface{}{"status": models.StatusArchived, "archived_at": now}
	if err := tx.Model(&models.Therapist{}).Where("id = ?", therapist.ID).Updates(archived).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.User{}).Where("id = ?", therapist.UserID).Updates(archived).Error; err != nil {
		return err
	}
	therapist.Status = models.StatusArchived
	therapist.ArchivedAt = &now
	return nil
}

// propertyReferenced reports whether any therapist or historical record points at the property.
func propertyReferenced(tx *gorm.DB, id uuid.UUID) (bool, error) {
	checks := []struct {
		model  interface{}
		column string
	}{
		{&models.Therapist{}, "assigned_property_id"},
		{&models.ServiceEntry{}, "property_id"},
		{&models.Attendance{}, "property_id"},
		{&models.Expense{}, "property_id"},
		{&models.MonthlyClosing{}, "property_id"},
	}
	for _, c := range checks {
		var n int64
		if err := tx.Model(c.model).Where(c.column+" = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
