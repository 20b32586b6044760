package handlers

import (
	"context"
	"net/http"
	"strings"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/models"
	"wellness-ops-backend/notifications"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FeedbackSender reaches the customer over WhatsApp or SMS.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, phone string, f notifications.Feedback) notifications.Result
}

// FeedbackMailer emails the customer a feedback request.
type FeedbackMailer interface {
	SendFeedbackRequest(ctx context.Context, to, customerName, therapyType, feedbackURL string) notifications.Result
}

type ServiceHandler struct {
	DB          *gorm.DB
	Feedback    FeedbackSender
	Mailer      FeedbackMailer
	FeedbackURL string
	Now         Clock
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req struct {
		CustomerName      string  `json:"customer_name" binding:"required"`
		CustomerPhone     string  `json:"customer_phone" binding:"required"`
		CustomerEmail     string  `json:"customer_email" binding:"omitempty,email"`
		TherapyType       string  `json:"therapy_type" binding:"required"`
		TherapyDuration   string  `json:"therapy_duration"`
		BasePrice         float64 `json:"base_price" binding:"required,gt=0"`
		PaymentReceivedBy string  `json:"payment_received_by" binding:"required,oneof=hotel business"`
		PaymentMode       string  `json:"payment_mode" binding:"omitempty,oneof=cash upi card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}
	if therapist.Status != models.StatusActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Archived therapists cannot log services"})
		return
	}

	now := h.Now.now()
	gst, total := finance.GSTSplit(req.BasePrice)
	entry := models.ServiceEntry{
		TherapistID:       therapist.ID,
		PropertyID:        therapist.AssignedPropertyID,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:     strings.TrimSpace(req.CustomerEmail),
		TherapyType:       req.TherapyType,
		TherapyDuration:   req.TherapyDuration,
		BasePrice:         req.BasePrice,
		GSTAmount:         gst,
		TotalAmount:       total,
		PaymentReceivedBy: req.PaymentReceivedBy,
		PaymentMode:       req.PaymentMode,
		Date:              now.Format(utils.DateLayout),
		Time:              now.Format("15:04:05"),
		CreatedAt:         now,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		respondError(c, err, "Failed to create service entry")
		return
	}

	// The entry is committed; notification outcomes are only recorded.
	h.notifyCustomer(c, &entry)

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Service entry created successfully",
		"service_id":      entry.ID,
		"gst_amount":      entry.GSTAmount,
		"total_amount":    entry.TotalAmount,
		"whatsapp_status": entry.WhatsAppStatus,
		"email_status":    entry.EmailStatus,
		"service":         entry,
	})
}

func (h *ServiceHandler) notifyCustomer(c *gin.Context, entry *models.ServiceEntry) {
	ctx := c.Request.Context()
	status := map[string]interface{}{}

	wa := notifications.Result{Status: notifications.StatusDisabled}
	if h.Feedback != nil {
		wa = h.Feedback.SendFeedback(ctx, entry.CustomerPhone, notifications.Feedback{
			CustomerName: entry.CustomerName,
			TherapyType:  entry.TherapyType,
			PropertyName: h.propertyName(ctx, entry),
		})
	}
	entry.WhatsAppStatus = wa.Status
	entry.WhatsAppMessageID = wa.MessageID
	status["whatsapp_status"] = wa.Status
	status["whatsapp_message_id"] = wa.MessageID

	if entry.CustomerEmail != "" {
		mail := notifications.Result{Status: notifications.StatusDisabled}
		if h.Mailer != nil {
			mail = h.Mailer.SendFeedbackRequest(ctx, entry.CustomerEmail, entry.CustomerName, entry.TherapyType, h.FeedbackURL)
		}
		entry.EmailStatus = mail.Status
		entry.EmailMessageID = mail.MessageID
		status["email_status"] = mail.Status
		status["email_message_id"] = mail.MessageID
	}

	if err := h.DB.Model(&models.ServiceEntry{}).Where("id = ?", entry.ID).Updates(status).Error; err != nil {
		c.Error(err)
	}
}

// GetServices lists entries for admins, newest first.
func (h *ServiceHandler) GetServices(c *gin.Context) {
	propertyID, ok := optionalUUIDQuery(c, "property_id")
	if !ok {
		return
	}
	therapistID, ok := optionalUUIDQuery(c, "therapist_id")
	if !ok {
		return
	}

	q := dateRange(h.DB.WithContext(c.Request.Context()), c, "date")
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	if therapistID != nil {
		q = q.Where("therapist_id = ?", *therapistID)
	}

	var entries []models.ServiceEntry
	if err := q.Order("created_at DESC").Find(&entries).Error; err != nil {
		respondError(c, err, "Failed to fetch services")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *ServiceHandler) GetMyServices(c *gin.Context) {
	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}

	var entries []models.ServiceEntry
	if err := h.DB.Where("therapist_id = ?", therapist.ID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		respondError(c, err, "Failed to fetch services")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// propertyName returns the hotel name of the entry's property, or "" if it
// cannot be loaded.
func (h *ServiceHandler) propertyName(ctx context.Context, entry *models.ServiceEntry) string {
	var property models.Property
	if err := h.DB.WithContext(ctx).Select("hotel_name").First(&property, "id = ?", entry.PropertyID).Error; err != nil {
		return ""
	}
	return property.HotelName
}
