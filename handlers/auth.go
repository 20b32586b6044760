package handlers

import (
	"errors"
	"net/http"
	"strings"

	"wellness-ops-backend/middleware"
	"wellness-ops-backend/models"
	"wellness-ops-backend/services"
	"wellness-ops-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB  *gorm.DB
	OTP *services.OTPService
}

// userResponse is the public view of a user returned with a session token.
func userResponse(u *models.User) gin.H {
	resp := gin.H{
		"user_id":              u.ID,
		"email":                u.Email,
		"role":                 u.Role,
		"full_name":            u.FullName,
		"assigned_property_id": u.AssignedPropertyID,
	}
	if u.Username != nil {
		resp["username"] = *u.Username
	}
	return resp
}

// registrationAllowed enforces the bootstrap rule: anyone may register while
// there are no users, afterwards only an admin may.
func (h *AuthHandler) registrationAllowed(c *gin.Context) bool {
	var count int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).Count(&count).Error; err != nil {
		respondError(c, err, "Failed to register user")
		return false
	}
	if count == 0 {
		return true
	}

	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
		return false
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return false
	}
	if claims.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
		return false
	}
	return true
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"full_name" binding:"required"`
		Phone    string `json:"phone"`
		Username string `json:"username"`
		Role     string `json:"role" binding:"omitempty,oneof=admin therapist"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if !h.registrationAllowed(c) {
		return
	}

	email := services.NormalizeIdentifier(req.Email)
	var existing int64
	h.DB.Model(&models.User{}).Where("email = ?", email).Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	var username *string
	if u := services.NormalizeIdentifier(req.Username); u != "" {
		if strings.Contains(u, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username cannot contain '@'"})
			return
		}
		h.DB.Model(&models.User{}).Where("username = ?", u).Count(&existing)
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}
		username = &u
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleAdmin
	}
	user := models.User{
		Email:        email,
		Username:     username,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         role,
		FullName:     req.FullName,
		Status:       models.StatusActive,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		respondError(c, err, "Failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.AssignedPropertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

// Login accepts either the email or the username alias in the email field.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	user, err := services.FindUserByIdentifier(c.Request.Context(), h.DB, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, err, "Failed to log in")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, user.AssignedPropertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	issue, err := h.OTP.Request(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to issue OTP")
		return
	}

	resp := gin.H{
		"message":      "OTP sent to your registered email",
		"email":        issue.Email,
		"expires_at":   issue.ExpiresAt,
		"email_status": issue.Delivery.Status,
	}
	if issue.Code != "" {
		resp["message"] = "Email delivery failed. Use the OTP below."
		resp["otp"] = issue.Code
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := h.OTP.Verify(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err, "Failed to verify OTP")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified", "valid": true})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := h.OTP.ChangePassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		respondError(c, err, "Failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
