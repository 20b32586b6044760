package handlers

import (
	"net/http"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/models"
	"wellness-ops-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RevenueHandler struct {
	DB  *gorm.DB
	Now Clock
}

type propertyRevenueResponse struct {
	PropertyName string `json:"property_name"`
	Month        int    `json:"month"`
	Year         int    `json:"year"`
	finance.Settlement
	SettlementNote string `json:"settlement_note"`
}

// GetPropertyRevenue settles one property's month between hotel and business.
func (h *RevenueHandler) GetPropertyRevenue(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	key, ok := monthQuery(c, h.Now)
	if !ok {
		return
	}

	var property models.Property
	if err := h.DB.First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	entries, err := services.MonthEntries(c.Request.Context(), h.DB, "property_id", property.ID, key)
	if err != nil {
		respondError(c, err, "Failed to fetch services")
		return
	}

	c.JSON(http.StatusOK, propertyRevenueResponse{
		PropertyName:   property.HotelName,
		Month:          key.Month,
		Year:           key.Year,
		Settlement:     finance.ComputeSettlement(property.SharePercentage(), finance.EntriesFrom(entries)),
		SettlementNote: finance.SettlementNote,
	})
}
