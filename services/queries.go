package services

import (
	"context"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonthEntries loads service entries whose date starts with the month's
// "YYYY-MM" prefix, filtered by column = id when column is set.
func MonthEntries(ctx context.Context, db *gorm.DB, column string, id uuid.UUID, month finance.MonthKey) ([]models.ServiceEntry, error) {
	q := db.WithContext(ctx).Where("date LIKE ?", month.Prefix()+"%")
	if column != "" {
		q = q.Where(column+" = ?", id)
	}
	var entries []models.ServiceEntry
	err := q.Order("created_at ASC").Find(&entries).Error
	return entries, err
}
