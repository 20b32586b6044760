package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"wellness-ops-backend/finance"
	"wellness-ops-backend/middleware"
	"wellness-ops-backend/models"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseHandler struct {
	DB *gorm.DB
}

// propertyRef tracks whether property_id was sent. null or "shared" moves
// the expense to the shared bucket.
type propertyRef struct {
	Set   bool
	Value *uuid.UUID
}

func (p *propertyRef) UnmarshalJSON(data []byte) error {
	p.Set = true
	p.Value = nil
	if string(data) == "null" || string(data) == `"shared"` {
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	p.Value = &id
	return nil
}

type expenseRequest struct {
	PropertyID  propertyRef `json:"property_id"`
	ExpenseType *string     `json:"expense_type" binding:"omitempty,oneof=salary living_cost marketing disposables oil_aromatics essentials bill_books other"`
	Category    *string     `json:"category" binding:"omitempty,oneof=recurring one-off"`
	Amount      *float64    `json:"amount" binding:"omitempty,gt=0"`
	Description *string     `json:"description"`
	Date        *string     `json:"date" binding:"omitempty,isodate"`
	TherapistID *uuid.UUID  `json:"therapist_id"`
}

func (r *expenseRequest) apply(e *models.Expense) {
	if r.PropertyID.Set {
		e.PropertyID = r.PropertyID.Value
	}
	if r.ExpenseType != nil {
		e.ExpenseType = *r.ExpenseType
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.Amount != nil {
		e.Amount = *r.Amount
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Date != nil {
		e.Date = *r.Date
	}
	if r.TherapistID != nil {
		id := *r.TherapistID
		e.TherapistID = &id
	}
}

// checkReferences verifies the property and therapist an expense points at.
func (h *ExpenseHandler) checkReferences(c *gin.Context, e *models.Expense) bool {
	db := h.DB.WithContext(c.Request.Context())
	if e.PropertyID != nil {
		var n int64
		if err := db.Model(&models.Property{}).Where("id = ?", *e.PropertyID).Count(&n).Error; err != nil {
			respondError(c, err, "Failed to verify property")
			return false
		}
		if n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return false
		}
	}
	if e.TherapistID != nil {
		var n int64
		if err := db.Model(&models.Therapist{}).Where("id = ?", *e.TherapistID).Count(&n).Error; err != nil {
			respondError(c, err, "Failed to verify therapist")
			return false
		}
		if n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
			return false
		}
	}
	return true
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.ExpenseType == nil || req.Category == nil || req.Amount == nil || req.Date == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expense_type, category, amount and date are required"})
		return
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense := models.Expense{CreatedBy: userID}
	req.apply(&expense)
	if !h.checkReferences(c, &expense) {
		return
	}

	if err := h.DB.Create(&expense).Error; err != nil {
		respondError(c, err, "Failed to create expense")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Expense created successfully", "expense": expense})
}

// GetExpenses lists expenses, newest date first. property_id=shared selects
// costs without a property.
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	q := h.DB.WithContext(c.Request.Context())

	switch raw := c.Query("property_id"); raw {
	case "":
	case "shared":
		q = q.Where("property_id IS NULL")
	default:
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property_id"})
			return
		}
		q = q.Where("property_id = ?", id)
	}
	if t := c.Query("expense_type"); t != "" {
		q = q.Where("expense_type = ?", t)
	}
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}
	q = dateRange(q, c, "date")

	var expenses []models.Expense
	if err := q.Order("date DESC").Order("created_at DESC").Find(&expenses).Error; err != nil {
		respondError(c, err, "Failed to fetch expenses")
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var expense models.Expense
	if err := h.DB.First(&expense, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var expense models.Expense
	if err := h.DB.First(&expense, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		respondError(c, err, "Failed to fetch expense")
		return
	}

	req.apply(&expense)
	if !h.checkReferences(c, &expense) {
		return
	}

	if err := h.DB.Save(&expense).Error; err != nil {
		respondError(c, err, "Failed to update expense")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully", "expense": expense})
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	result := h.DB.Delete(&models.Expense{}, "id = ?", id)
	if result.Error != nil {
		respondError(c, result.Error, "Failed to delete expense")
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

type expenseBucket struct {
	PropertyID   *uuid.UUID         `json:"property_id"`
	PropertyName string             `json:"property_name"`
	Total        float64            `json:"total"`
	Count        int                `json:"count"`
	ByType       map[string]float64 `json:"by_type"`
}

func (b *expenseBucket) add(e models.Expense) {
	b.Total = finance.Round2(b.Total + e.Amount)
	b.Count++
	b.ByType[e.ExpenseType] = finance.Round2(b.ByType[e.ExpenseType] + e.Amount)
}

// GetExpenseSummary totals expenses per property with a separate shared bucket.
func (h *ExpenseHandler) GetExpenseSummary(c *gin.Context) {
	var expenses []models.Expense
	q := dateRange(h.DB.WithContext(c.Request.Context()), c, "date")
	if err := q.Find(&expenses).Error; err != nil {
		respondError(c, err, "Failed to fetch expenses")
		return
	}

	var properties []models.Property
	if err := h.DB.WithContext(c.Request.Context()).Find(&properties).Error; err != nil {
		respondError(c, err, "Failed to fetch properties")
		return
	}
	names := make(map[uuid.UUID]string, len(properties))
	for _, p := range properties {
		names[p.ID] = p.HotelName
	}

	shared := &expenseBucket{PropertyName: "Shared", ByType: map[string]float64{}}
	byProperty := map[uuid.UUID]*expenseBucket{}
	var grand float64
	for _, e := range expenses {
		grand = finance.Round2(grand + e.Amount)
		if e.PropertyID == nil {
			shared.add(e)
			continue
		}
		b, ok := byProperty[*e.PropertyID]
		if !ok {
			id := *e.PropertyID
			b = &expenseBucket{PropertyID: &id, PropertyName: names[id], ByType: map[string]float64{}}
			byProperty[id] = b
		}
		b.add(e)
	}

	out := make([]expenseBucket, 0, len(byProperty))
	for _, b := range byProperty {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyName < out[j].PropertyName })

	c.JSON(http.StatusOK, gin.H{
		"properties":  out,
		"shared":      shared,
		"grand_total": grand,
		"count":       len(expenses),
	})
}
