package handlers

import (
	"context"
	"net/http"

	"wellness-ops-backend/firebase"
	"wellness-ops-backend/middleware"
	"wellness-ops-backend/models"
	"wellness-ops-backend/notifications"
	"wellness-ops-backend/services"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CredentialsMailer sends onboarding credentials to a new therapist.
type CredentialsMailer interface {
	SendTherapistCredentials(ctx context.Context, to, name, username, password string) notifications.Result
}

type TherapistHandler struct {
	DB      *gorm.DB
	Archive *services.ArchiveService
	Mailer  CredentialsMailer
	Storage firebase.StorageClient
}

const (
	DocumentIDProof      = "id_proof"
	DocumentProfilePhoto = "profile_photo"
)

type createTherapistRequest struct {
	FullName           string   `json:"full_name" binding:"required"`
	Email              string   `json:"email" binding:"required,email"`
	Phone              string   `json:"phone" binding:"required"`
	Password           string   `json:"password" binding:"omitempty,min=6"`
	Username           string   `json:"username"`
	DateOfBirth        string   `json:"date_of_birth" binding:"omitempty,isodate"`
	ExperienceYears    float64  `json:"experience_years" binding:"gte=0"`
	SalaryExpectation  *float64 `json:"salary_expectation" binding:"omitempty,gte=0"`
	Address            string   `json:"address"`
	BankDetails        string   `json:"bank_details"`
	AssignedPropertyID string   `json:"assigned_property_id" binding:"required,uuid"`
	MonthlyTarget      float64  `json:"monthly_target" binding:"gte=0"`
}

type updateTherapistRequest struct {
	FullName           *string  `json:"full_name"`
	Email              *string  `json:"email" binding:"omitempty,email"`
	Phone              *string  `json:"phone"`
	DateOfBirth        *string  `json:"date_of_birth" binding:"omitempty,isodate"`
	ExperienceYears    *float64 `json:"experience_years" binding:"omitempty,gte=0"`
	SalaryExpectation  *float64 `json:"salary_expectation" binding:"omitempty,gte=0"`
	Address            *string  `json:"address"`
	BankDetails        *string  `json:"bank_details"`
	AssignedPropertyID *string  `json:"assigned_property_id" binding:"omitempty,uuid"`
	MonthlyTarget      *float64 `json:"monthly_target" binding:"omitempty,gte=0"`
}

// activeProperty loads a property that can take new assignments.
func (h *TherapistHandler) activeProperty(c *gin.Context, id uuid.UUID) bool {
	var property models.Property
	if err := h.DB.First(&property, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return false
	}
	if property.Status != models.StatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot assign therapist to an archived property"})
		return false
	}
	return true
}

func (h *TherapistHandler) usernameTaken(ctx context.Context) func(string) (bool, error) {
	return func(candidate string) (bool, error) {
		var n int64
		err := h.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", candidate).Count(&n).Error
		return n > 0, err
	}
}

func (h *TherapistHandler) CreateTherapist(c *gin.Context) {
	var req createTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	ctx := c.Request.Context()

	propertyID := uuid.MustParse(req.AssignedPropertyID)
	if !h.activeProperty(c, propertyID) {
		return
	}

	email := services.NormalizeIdentifier(req.Email)
	var existing int64
	h.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	password := req.Password
	if password == "" {
		if req.DateOfBirth == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Either password or date_of_birth is required"})
			return
		}
		dobPassword, err := utils.PasswordFromDOB(req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		password = dobPassword
	}

	username := services.NormalizeIdentifier(req.Username)
	if username != "" {
		taken, err := h.usernameTaken(ctx)(username)
		if err != nil {
			respondError(c, err, "Failed to create therapist")
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
	} else {
		generated, err := utils.GenerateUniqueUsername(req.FullName, h.usernameTaken(ctx))
		if err != nil {
			respondError(c, err, "Failed to generate username")
			return
		}
		username = generated
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:              email,
		Username:           &username,
		Phone:              req.Phone,
		PasswordHash:       hash,
		Role:               models.RoleTherapist,
		FullName:           req.FullName,
		AssignedPropertyID: &propertyID,
		Status:             models.StatusActive,
	}
	therapist := models.Therapist{
		FullName:           req.FullName,
		Email:              email,
		Phone:              req.Phone,
		Username:           username,
		DateOfBirth:        req.DateOfBirth,
		ExperienceYears:    req.ExperienceYears,
		SalaryExpectation:  req.SalaryExpectation,
		Address:            req.Address,
		BankDetails:        req.BankDetails,
		AssignedPropertyID: propertyID,
		MonthlyTarget:      req.MonthlyTarget,
		Status:             models.StatusActive,
	}

	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		therapist.UserID = user.ID
		return tx.Create(&therapist).Error
	})
	if err != nil {
		respondError(c, err, "Failed to create therapist")
		return
	}

	delivery := notifications.Result{Status: notifications.StatusDisabled}
	if h.Mailer != nil {
		delivery = h.Mailer.SendTherapistCredentials(ctx, email, req.FullName, username, password)
	}

	resp := gin.H{
		"message":      "Therapist created successfully",
		"user_id":      user.ID,
		"therapist_id": therapist.ID,
		"username":     username,
		"therapist":    therapist,
		"email_status": delivery.Status,
	}
	if !delivery.Delivered() {
		resp["credentials"] = gin.H{"username": username, "email": email, "password": password}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TherapistHandler) GetTherapists(c *gin.Context) {
	propertyID, ok := optionalUUIDQuery(c, "property_id")
	if !ok {
		return
	}

	q := activeOnly(h.DB.WithContext(c.Request.Context()), c)
	if propertyID != nil {
		q = q.Where("assigned_property_id = ?", *propertyID)
	}

	var therapists []models.Therapist
	if err := q.Order("full_name ASC").Find(&therapists).Error; err != nil {
		respondError(c, err, "Failed to fetch therapists")
		return
	}
	c.JSON(http.StatusOK, therapists)
}

func (h *TherapistHandler) GetTherapist(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		return
	}
	c.JSON(http.StatusOK, therapist)
}

// GetMyProfile returns the caller's own therapist profile.
func (h *TherapistHandler) GetMyProfile(c *gin.Context) {
	therapist, ok := currentTherapist(c, h.DB)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, therapist)
}

func (h *TherapistHandler) UpdateTherapist(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req updateTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		return
	}

	profile := map[string]interface{}{}
	account := map[string]interface{}{}

	if req.FullName != nil {
		profile["full_name"] = *req.FullName
		account["full_name"] = *req.FullName
	}
	if req.Email != nil {
		email := services.NormalizeIdentifier(*req.Email)
		if email != therapist.Email {
			var n int64
			h.DB.Model(&models.User{}).Where("email = ? AND id <> ?", email, therapist.UserID).Count(&n)
			if n > 0 {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
		}
		profile["email"] = email
		account["email"] = email
	}
	if req.Phone != nil {
		profile["phone"] = *req.Phone
		account["phone"] = *req.Phone
	}
	if req.DateOfBirth != nil {
		profile["date_of_birth"] = *req.DateOfBirth
	}
	if req.ExperienceYears != nil {
		profile["experience_years"] = *req.ExperienceYears
	}
	if req.SalaryExpectation != nil {
		profile["salary_expectation"] = *req.SalaryExpectation
	}
	if req.Address != nil {
		profile["address"] = *req.Address
	}
	if req.BankDetails != nil {
		profile["bank_details"] = *req.BankDetails
	}
	if req.MonthlyTarget != nil {
		profile["monthly_target"] = *req.MonthlyTarget
	}
	if req.AssignedPropertyID != nil {
		propertyID := uuid.MustParse(*req.AssignedPropertyID)
		if propertyID != therapist.AssignedPropertyID && !h.activeProperty(c, propertyID) {
			return
		}
		profile["assigned_property_id"] = propertyID
		account["assigned_property_id"] = propertyID
	}

	if len(profile) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Therapist{}).Where("id = ?", therapist.ID).Updates(profile).Error; err != nil {
			return err
		}
		if len(account) > 0 {
			return tx.Model(&models.User{}).Where("id = ?", therapist.UserID).Updates(account).Error
		}
		return nil
	})
	if err != nil {
		respondError(c, err, "Failed to update therapist")
		return
	}

	h.DB.First(&therapist, "id = ?", id)
	c.JSON(http.StatusOK, gin.H{"message": "Therapist updated successfully", "therapist": therapist})
}

func (h *TherapistHandler) ArchiveTherapist(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	therapist, err := h.Archive.ArchiveTherapist(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to archive therapist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Therapist archived successfully", "therapist": therapist})
}

func (h *TherapistHandler) RestoreTherapist(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	therapist, err := h.Archive.RestoreTherapist(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to restore therapist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Therapist restored successfully", "therapist": therapist})
}

// UploadDocument stores an ID proof or profile photo and records its URL.
func (h *TherapistHandler) UploadDocument(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if h.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document storage is not configured"})
		return
	}

	kind := c.PostForm("kind")
	var column string
	switch kind {
	case DocumentIDProof:
		column = "id_proof_url"
	case DocumentProfilePhoto:
		column = "profile_photo_url"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be one of: id_proof, profile_photo"})
		return
	}

	var therapist models.Therapist
	if err := h.DB.First(&therapist, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Therapist not found"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if err := utils.ValidateFileUpload(fh); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	url, err := h.Storage.UploadTherapistDocument(ctx, therapist.ID.String(), kind, file, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload document"})
		return
	}

	previous := therapist.IDProofURL
	if kind == DocumentProfilePhoto {
		previous = therapist.ProfilePhotoURL
	}

	if err := h.DB.Model(&models.Therapist{}).Where("id = ?", therapist.ID).Update(column, url).Error; err != nil {
		respondError(c, err, "Failed to save document")
		return
	}

	if path := firebase.ObjectPath(h.Storage.Bucket(), previous); path != "" {
		if err := h.Storage.DeleteFile(ctx, path); err != nil {
			c.Error(err)
		}
	}

	uploadedBy, _ := middleware.CurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Document uploaded successfully",
		"kind":        kind,
		"url":         url,
		"uploaded_by": uploadedBy,
	})
}
