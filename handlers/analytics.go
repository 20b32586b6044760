package handlers

import (
	"net/http"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalyticsHandler struct {
	DB  *gorm.DB
	Now Clock
}

func (h *AnalyticsHandler) entries(q *gorm.DB, propertyID *uuid.UUID) ([]finance.Entry, error) {
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	var services []models.ServiceEntry
	if err := q.Order("created_at ASC").Find(&services).Error; err != nil {
		return nil, err
	}
	return finance.EntriesFrom(services), nil
}

// GetDashboard aggregates every service entry, optionally for one property.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	propertyID, ok := optionalUUIDQuery(c, "property_id")
	if !ok {
		return
	}

	entries, err := h.entries(h.DB.WithContext(c.Request.Context()), propertyID)
	if err != nil {
		respondError(c, err, "Failed to fetch services")
		return
	}
	c.JSON(http.StatusOK, finance.ComputeDashboard(entries))
}

// GetForecast predicts the current month's revenue from the six before it.
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	propertyID, ok := optionalUUIDQuery(c, "property_id")
	if !ok {
		return
	}

	current := finance.MonthOf(h.Now.now())
	months := finance.PrecedingMonths(current, finance.ForecastWindow)

	q := h.DB.WithContext(c.Request.Context()).
		Where("date >= ? AND date < ?", months[0].Prefix(), current.Prefix())
	entries, err := h.entries(q, propertyID)
	if err != nil {
		respondError(c, err, "Failed to fetch services")
		return
	}

	c.JSON(http.StatusOK, finance.BuildForecast(current, finance.Bucket(months, entries)))
}
