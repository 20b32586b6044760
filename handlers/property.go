package handlers

import (
	"errors"
	"net/http"

	"wellness-ops-backend/models"
	"wellness-ops-backend/services"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PropertyHandler struct {
	DB      *gorm.DB
	Archive *services.ArchiveService
}

type propertyRequest struct {
	HotelName              *string  `json:"hotel_name"`
	Location               *string  `json:"location"`
	GSTNumber              *string  `json:"gst_number"`
	OwnershipType          *string  `json:"ownership_type" binding:"omitempty,oneof=owned partner"`
	RevenueSharePercentage *float64 `json:"revenue_share_percentage"`
	ContractStartDate      *string  `json:"contract_start_date" binding:"omitempty,isodate"`
	PaymentCycle           *string  `json:"payment_cycle" binding:"omitempty,oneof=monthly biweekly"`
	ContactPerson          *string  `json:"contact_person"`
	ContactNumber          *string  `json:"contact_number"`
}

// apply merges the request onto p. An owned property never keeps a share.
func (r *propertyRequest) apply(p *models.Property) error {
	if r.HotelName != nil {
		p.HotelName = *r.HotelName
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	if r.GSTNumber != nil {
		p.GSTNumber = *r.GSTNumber
	}
	if r.OwnershipType != nil {
		p.OwnershipType = *r.OwnershipType
	}
	if r.ContractStartDate != nil {
		p.ContractStartDate = *r.ContractStartDate
	}
	if r.PaymentCycle != nil {
		p.PaymentCycle = *r.PaymentCycle
	}
	if r.ContactPerson != nil {
		p.ContactPerson = *r.ContactPerson
	}
	if r.ContactNumber != nil {
		p.ContactNumber = *r.ContactNumber
	}

	if p.OwnershipType == models.OwnershipOwned {
		if r.RevenueSharePercentage != nil {
			return errors.New("owned properties cannot have a revenue share percentage")
		}
		p.RevenueSharePercentage = nil
	} else if r.RevenueSharePercentage != nil {
		share := *r.RevenueSharePercentage
		p.RevenueSharePercentage = &share
	}
	return validateProperty(p)
}

// validateProperty checks the ownership and share invariant on a merged record.
func validateProperty(p *models.Property) error {
	if p.HotelName == "" {
		return errors.New("hotel_name is required")
	}
	switch p.OwnershipType {
	case models.OwnershipOwned:
		if p.RevenueSharePercentage != nil {
			return errors.New("owned properties cannot have a revenue share percentage")
		}
	case models.OwnershipPartner:
		if p.RevenueSharePercentage == nil {
			return errors.New("revenue_share_percentage is required for partner properties")
		}
		if share := *p.RevenueSharePercentage; share < 0 || share > 100 {
			return errors.New("revenue_share_percentage must be between 0 and 100")
		}
	default:
		return errors.New("ownership_type must be one of: owned, partner")
	}
	return nil
}

func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	property := models.Property{
		OwnershipType: models.OwnershipPartner,
		PaymentCycle:  models.PaymentCycleMonthly,
		Active:        true,
		Status:        models.StatusActive,
	}
	if err := req.apply(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.DB.Create(&property).Error; err != nil {
		respondError(c, err, "Failed to create property")
		return
	}
	c.JSON(http.StatusCreated, property)
}

func (h *PropertyHandler) GetProperties(c *gin.Context) {
	var properties []models.Property
	q := activeOnly(h.DB.WithContext(c.Request.Context()), c)
	if err := q.Order("hotel_name ASC").Find(&properties).Error; err != nil {
		respondError(c, err, "Failed to fetch properties")
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var property models.Property
	if err := h.DB.First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var property models.Property
	if err := h.DB.First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	if err := req.apply(&property); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Select("*") so a share cleared to nil is written too.
	if err := h.DB.Model(&property).Select("*").Omit("id", "created_at").Updates(&property).Error; err != nil {
		respondError(c, err, "Failed to update property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property updated successfully", "property": property})
}

// ArchiveProperty archives the property and cascades to its active therapists.
func (h *PropertyHandler) ArchiveProperty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	property, cascaded, err := h.Archive.ArchiveProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to archive property")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             "Property archived successfully",
		"property":            property,
		"therapists_archived": cascaded,
	})
}

func (h *PropertyHandler) RestoreProperty(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	property, err := h.Archive.RestoreProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to restore property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Property restored successfully", "property": property})
}

func (h *PropertyHandler) DeletePropertyPermanent(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.Archive.DeleteProperty(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to delete property")
		return
	}

	msg := "Property deleted permanently"
	if outcome == services.OutcomeArchived {
		msg = "Property has historical records and was archived instead"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "outcome": outcome})
}
