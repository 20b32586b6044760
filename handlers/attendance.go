package handlers

import (
	"errors"
	"net/http"

	"wellness-ops-backend/models"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const myAttendanceLimit = 100

type AttendanceHandler struct {
	DB  *gorm.DB
	Now Clock
}

// todayRecord loads the caller's attendance row for today, or nil.
func (h *AttendanceHandler) todayRecord(tx *gorm.DB, therapist *models.Therapist, date string) (*models.Attendance, error) {
	var record models.Attendance
	err := tx.Where("therapist_id = ? AND date = ?", therapist.ID, date).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req struct {
		GPSLocation string `json:"gps_location"`
	}
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
			return
		}
	}

	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}
	if therapist.Status != models.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Archived therapists cannot check in"})
		return
	}

	now := h.Now.now()
	today := now.Format(utils.DateLayout)
	existing, err := h.todayRecord(h.DB, therapist, today)
	if err != nil {
		respondError(c, err, "Failed to check in")
		return
	}
	if existing != nil && existing.CheckInTime != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already checked in today"})
		return
	}

	record := models.Attendance{
		TherapistID: therapist.ID,
		PropertyID:  therapist.AssignedPropertyID,
		Date:        today,
		CheckInTime: &now,
		GPSLocation: req.GPSLocation,
	}
	if existing != nil {
		record = *existing
		record.CheckInTime = &now
		record.GPSLocation = req.GPSLocation
		err = h.DB.Save(&record).Error
	} else {
		err = h.DB.Create(&record).Error
	}
	if err != nil {
		respondError(c, err, "Failed to check in")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Checked in successfully", "time": now, "attendance": record})
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}
	if therapist.Status != models.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Archived therapists cannot check out"})
		return
	}

	now := h.Now.now()
	record, err := h.todayRecord(h.DB, therapist, now.Format(utils.DateLayout))
	if err != nil {
		respondError(c, err, "Failed to check out")
		return
	}
	if record == nil || record.CheckInTime == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No check-in found for today"})
		return
	}
	if record.CheckOutTime != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already checked out"})
		return
	}

	if err := h.DB.Model(record).Update("check_out_time", now).Error; err != nil {
		respondError(c, err, "Failed to check out")
		return
	}
	record.CheckOutTime = &now

	c.JSON(http.StatusOK, gin.H{"message": "Checked out successfully", "time": now, "attendance": record})
}

func (h *AttendanceHandler) GetMyAttendance(c *gin.Context) {
	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}

	var records []models.Attendance
	if err := h.DB.Where("therapist_id = ?", therapist.ID).
		Order("date DESC").
		Limit(myAttendanceLimit).
		Find(&records).Error; err != nil {
		respondError(c, err, "Failed to fetch attendance")
		return
	}
	c.JSON(http.StatusOK, records)
}

type dailyAttendanceRow struct {
	TherapistID string             `json:"therapist_id"`
	FullName    string             `json:"full_name"`
	PropertyID  string             `json:"property_id"`
	Attendance  *models.Attendance `json:"attendance,omitempty"`
}

// GetDailyAttendance splits active therapists by whether they checked in on the date.
func (h *AttendanceHandler) GetDailyAttendance(c *gin.Context) {
	date := c.DefaultQuery("date", h.Now.today())
	if !utils.IsDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be a valid date (YYYY-MM-DD)"})
		return
	}
	propertyID, ok := optionalUUIDQuery(c, "property_id")
	if !ok {
		return
	}

	tq := h.DB.Where("status = ?", models.StatusActive)
	aq := h.DB.Where("date = ?", date)
	if propertyID != nil {
		tq = tq.Where("assigned_property_id = ?", *propertyID)
		aq = aq.Where("property_id = ?", *propertyID)
	}

	var therapists []models.Therapist
	if err := tq.Order("full_name ASC").Find(&therapists).Error; err != nil {
		respondError(c, err, "Failed to fetch therapists")
		return
	}
	var records []models.Attendance
	if err := aq.Find(&records).Error; err != nil {
		respondError(c, err, "Failed to fetch attendance")
		return
	}

	byTherapist := make(map[string]*models.Attendance, len(records))
	for i := range records {
		if records[i].CheckInTime != nil {
			byTherapist[records[i].TherapistID.String()] = &records[i]
		}
	}

	checkedIn := []dailyAttendanceRow{}
	notCheckedIn := []dailyAttendanceRow{}
	for _, t := range therapists {
		row := dailyAttendanceRow{
			TherapistID: t.ID.String(),
			FullName:    t.FullName,
			PropertyID:  t.AssignedPropertyID.String(),
		}
		if rec, ok := byTherapist[row.TherapistID]; ok {
			row.Attendance = rec
			checkedIn = append(checkedIn, row)
		} else {
			notCheckedIn = append(notCheckedIn, row)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"date":                 date,
		"checked_in":           checkedIn,
		"not_checked_in":       notCheckedIn,
		"total_checked_in":     len(checkedIn),
		"total_not_checked_in": len(notCheckedIn),
	})
}

func (h *AttendanceHandler) GetTherapistHistory(c *gin.Context) {
	id, ok := uuidParam(c, "therapist_id")
	if !ok {
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		return
	}

	var records []models.Attendance
	q := dateRange(h.DB.Where("therapist_id = ?", id), c, "date")
	if err := q.Order("date DESC").Find(&records).Error; err != nil {
		respondError(c, err, "Failed to fetch attendance")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"therapist_id":       therapist.ID,
		"therapist_name":     therapist.FullName,
		"attendance_records": records,
		"total_records":      len(records),
	})
}
