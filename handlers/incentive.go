package handlers

import (
	"net/http"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/middleware"
	"wellness-ops-backend/models"
	"wellness-ops-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncentiveHandler struct {
	DB      *gorm.DB
	Closing *services.ClosingService
	Now     Clock
}

type incentiveResponse struct {
	TherapistID   uuid.UUID `json:"therapist_id"`
	TherapistName string    `json:"therapist_name"`
	PropertyID    uuid.UUID `json:"property_id"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	finance.Incentive
}

func (h *IncentiveHandler) compute(c *gin.Context, t *models.Therapist, key finance.MonthKey) (*incentiveResponse, error) {
	entries, err := services.MonthEntries(c.Request.Context(), h.DB, "therapist_id", t.ID, key)
	if err != nil {
		return nil, err
	}
	return &incentiveResponse{
		TherapistID:   t.ID,
		TherapistName: t.FullName,
		PropertyID:    t.AssignedPropertyID,
		Month:         key.Month,
		Year:          key.Year,
		Incentive:     finance.IncentiveFromEntries(t.MonthlyTarget, finance.EntriesFrom(entries)),
	}, nil
}

// GetMyIncentive computes the caller's live incentive for the month.
func (h *IncentiveHandler) GetMyIncentive(c *gin.Context) {
	key, ok := monthQuery(c, h.Now)
	if !ok {
		return
	}
	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}

	resp, err := h.compute(c, therapist, key)
	if err != nil {
		respondError(c, err, "Failed to compute incentive")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetIncentives computes the live incentive of every active therapist.
func (h *IncentiveHandler) GetIncentives(c *gin.Context) {
	key, ok := monthQuery(c, h.Now)
	if !ok {
		return
	}

	var therapists []models.Therapist
	if err := h.DB.Where("status = ?", models.StatusActive).Order("full_name ASC").Find(&therapists).Error; err != nil {
		respondError(c, err, "Failed to fetch therapists")
		return
	}

	out := make([]incentiveResponse, 0, len(therapists))
	for i := range therapists {
		resp, err := h.compute(c, &therapists[i], key)
		if err != nil {
			respondError(c, err, "Failed to compute incentives")
			return
		}
		out = append(out, *resp)
	}
	c.JSON(http.StatusOK, gin.H{"month": key.Month, "year": key.Year, "incentives": out})
}

// GetIncentiveRecords lists the persisted incentives of a closed month.
func (h *IncentiveHandler) GetIncentiveRecords(c *gin.Context) {
	key, ok := monthQuery(c, h.Now)
	if !ok {
		return
	}

	var records []models.IncentiveRecord
	if err := h.DB.Where("month = ? AND year = ?", key.Month, key.Year).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		respondError(c, err, "Failed to fetch incentive records")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *IncentiveHandler) ApproveIncentiveRecord(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	approver, _ := middleware.CurrentUserID(c)

	record, err := h.Closing.ApproveIncentive(c.Request.Context(), id, approver)
	if err != nil {
		respondError(c, err, "Failed to approve incentive")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Incentive approved", "incentive": record})
}
