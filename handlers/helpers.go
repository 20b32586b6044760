package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/middleware"
	"wellness-ops-backend/models"
	"wellness-ops-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clock returns the current instant. A nil Clock reads the wall clock in UTC.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func (c Clock) today() string {
	return c.now().Format("2006-01-02")
}

// uuidParam parses a path parameter, writing a 400 on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional query parameter.
func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &id, true
}

// monthQuery reads ?month&year, defaulting each to the current month.
func monthQuery(c *gin.Context, clock Clock) (finance.MonthKey, bool) {
	key := finance.MonthOf(clock.now())
	if raw := c.Query("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month"})
			return key, false
		}
		key.Month = m
	}
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return key, false
		}
		key.Year = y
	}
	if err := services.ValidateMonth(key.Year, key.Month); err != nil {
		respondError(c, err, "Invalid month")
		return key, false
	}
	return key, true
}

func includeArchived(c *gin.Context) bool {
	return c.Query("include_archived") == "true"
}

func activeOnly(q *gorm.DB, c *gin.Context) *gorm.DB {
	if includeArchived(c) {
		return q
	}
	return q.Where("status = ?", models.StatusActive)
}

// currentTherapist loads the caller's therapist profile, writing 401/404 on failure.
func currentTherapist(c *gin.Context, db *gorm.DB) (*models.Therapist, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	var therapist models.Therapist
	if err := db.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&therapist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Therapist profile not found"})
			return nil, false
		}
		respondError(c, err, "Failed to fetch therapist profile")
		return nil, false
	}
	return &therapist, true
}

// dateRange applies optional inclusive date_from/date_to filters on column.
func dateRange(q *gorm.DB, c *gin.Context, column string) *gorm.DB {
	if from := c.Query("date_from"); from != "" {
		q = q.Where(column+" >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		q = q.Where(column+" <= ?", to)
	}
	return q
}
