package handlers

import (
	"errors"
	"net/http"
	"time"

	"roti-erp/internal/apperr"
	"roti-erp/internal/auth"
	"roti-erp/internal/logger"
	"roti-erp/internal/metrics"
	"roti-erp/internal/middleware"
	"roti-erp/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// AuthHandler serves /auth. Credentials are checked by whichever
// Authenticator the server was configured with.
type AuthHandler struct {
	db                *gorm.DB
	users             auth.Authenticator
	tokens            *auth.TokenManager
	metrics           *metrics.Metrics
	allowRegistration bool
}

func NewAuthHandler(db *gorm.DB, users auth.Authenticator, tokens *auth.TokenManager, m *metrics.Metrics, allowRegistration bool) *AuthHandler {
	return &AuthHandler{db: db, users: users, tokens: tokens, metrics: m, allowRegistration: allowRegistration}
}

// --- POST: /api/auth/login ---
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if !bindJSON(c, &input) {
		return
	}

	// 2. Verify credentials
	user, err := h.users.Authenticate(c.Request.Context(), input.Email, input.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.metrics.Login("invalid")
		respondError(c, apperr.Unauthorized("Invalid credentials"))
		return
	case errors.Is(err, auth.ErrInactiveAccount):
		h.metrics.Login("inactive")
		respondError(c, apperr.Unauthorized("Account is inactive"))
		return
	case err != nil:
		respondError(c, apperr.Internal("Failed to verify credentials", err))
		return
	}

	// 3. Generate tokens
	pair, err := h.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		respondError(c, apperr.Internal("Failed to generate token", err))
		return
	}

	// 4. Stamp the login; fixture users have no row to update.
	now := time.Now()
	h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("id = ?", user.ID).Update("last_login_at", now)
	user.LastLoginAt = &now

	h.metrics.Login("success")
	logger.FromGin(c).Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresAt":    pair.ExpiresAt,
	})
}

// --- POST: /api/auth/refresh ---
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input RefreshRequest
	if !bindJSON(c, &input) {
		return
	}
	claims, err := h.tokens.ParseRefresh(input.RefreshToken)
	if err != nil {
		respondError(c, apperr.Unauthorized("Invalid or expired refresh token"))
		return
	}
	user, err := h.users.Lookup(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownUser) {
			respondError(c, apperr.Unauthorized("User no longer exists"))
			return
		}
		respondError(c, apperr.Internal("Failed to load user", err))
		return
	}
	if !user.IsActive {
		respondError(c, apperr.Unauthorized("Account is inactive"))
		return
	}
	pair, err := h.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		respondError(c, apperr.Internal("Failed to generate token", err))
		return
	}
	c.JSON(http.StatusOK, pair)
}

// --- GET: /api/auth/me ---
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperr.Unauthorized("Not authenticated"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- POST: /api/auth/register ---
// Self-service sign-up always yields a STAFF account.
func (h *AuthHandler) Register(c *gin.Context) {
	if !h.allowRegistration {
		respondError(c, apperr.Forbidden("Registration is disabled"))
		return
	}
	var input RegisterRequest
	if !bindJSON(c, &input) {
		return
	}

	// 1. Hash the Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperr.Internal("Failed to hash password", err))
		return
	}

	// 2. Save to DB
	user := models.User{
		Name:         input.Name,
		Email:        auth.NormalizeEmail(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         string(auth.RoleStaff),
		IsActive:     true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(c, apperr.Conflict("Email is already registered", err))
			return
		}
		respondError(c, apperr.FromDB(err, "user"))
		return
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		respondError(c, apperr.Internal("Failed to generate token", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"expiresAt":    pair.ExpiresAt,
	})
}

// --- PUT: /api/auth/password ---
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input ChangePasswordRequest
	if !bindJSON(c, &input) {
		return
	}
	current := middleware.CurrentUser(c)
	if current == nil {
		respondError(c, apperr.Unauthorized("Not authenticated"))
		return
	}
	if _, err := h.users.Authenticate(c.Request.Context(), current.Email, input.CurrentPassword); err != nil {
		respondError(c, apperr.Field("currentPassword", "is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperr.Internal("Failed to hash password", err))
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", current.ID).
		Update("password_hash", string(hash))
	if res.Error != nil {
		respondError(c, apperr.FromDB(res.Error, "user"))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, apperr.NotFound("User %d has no stored password", current.ID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
