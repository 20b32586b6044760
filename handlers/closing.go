package handlers

import (
	"net/http"

	"wellness-ops-backend/middleware"
	"wellness-ops-backend/models"
	"wellness-ops-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ClosingHandler struct {
	DB      *gorm.DB
	Closing *services.ClosingService
	Now     Clock
}

// RunClosing closes ?month&year, defaulting to the previous month.
func (h *ClosingHandler) RunClosing(c *gin.Context) {
	var (
		report *services.ClosingReport
		err    error
	)
	if c.Query("month") == "" && c.Query("year") == "" {
		report, err = h.Closing.ClosePreviousMonth(c.Request.Context())
	} else {
		key, ok := monthQuery(c, h.Now)
		if !ok {
			return
		}
		report, err = h.Closing.Close(c.Request.Context(), key.Year, key.Month)
	}
	if err != nil {
		respondError(c, err, "Failed to run monthly closing")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ClosingHandler) GetClosings(c *gin.Context) {
	key, ok := monthQuery(c, h.Now)
	if !ok {
		return
	}

	var closings []models.MonthlyClosing
	if err := h.DB.Where("month = ? AND year = ?", key.Month, key.Year).
		Order("created_at ASC").
		Find(&closings).Error; err != nil {
		respondError(c, err, "Failed to fetch closings")
		return
	}
	c.JSON(http.StatusOK, closings)
}

func (h *ClosingHandler) ApproveClosing(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	approver, _ := middleware.CurrentUserID(c)

	closing, err := h.Closing.ApproveClosing(c.Request.Context(), id, approver)
	if err != nil {
		respondError(c, err, "Failed to approve closing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Closing approved and locked", "closing": closing})
}
