package handlers

import (
	"fmt"
	"net/http"

	"roti-erp/internal/apperr"
	"roti-erp/internal/auth"
	"roti-erp/internal/middleware"
	"roti-erp/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// UserHandler manages operator accounts. Nobody can grant or touch a role
// above their own.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

func (h *UserHandler) checkRole(c *gin.Context, target string) error {
	role, ok := auth.ParseRole(target)
	if !ok {
		return apperr.Field("role", fmt.Sprintf("must be one of %v", auth.Roles()))
	}
	if caller := middleware.CurrentRole(c); !caller.AtLeast(role) {
		return apperr.Forbidden(fmt.Sprintf("Cannot assign role %s above your own role %s", role, caller))
	}
	return nil
}

// --- GET: /api/users ---
func (h *UserHandler) List(c *gin.Context) {
	var page pageQuery
	if !bindQuery(c, &page) {
		return
	}
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if role := c.Query("role"); role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user"))
		return
	}
	users := []models.User{}
	if err := q.Order("id asc").Limit(page.limit()).Offset(page.Offset).Find(&users).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user"))
		return
	}
	c.JSON(http.StatusOK, listBody(users, total, page))
}

// --- GET: /api/users/:id ---
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- POST: /api/users ---
func (h *UserHandler) Create(c *gin.Context) {
	var input CreateUserRequest
	if !bindJSON(c, &input) {
		return
	}
	if err := h.checkRole(c, input.Role); err != nil {
		respondError(c, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, apperr.Internal("Failed to hash password", err))
		return
	}
	role, _ := auth.ParseRole(input.Role)
	user := models.User{
		Name:         input.Name,
		Email:        auth.NormalizeEmail(input.Email),
		PasswordHash: string(hash),
		Role:         string(role),
		IsActive:     true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user with this email"))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// load fetches the target user and refuses when it outranks the caller.
func (h *UserHandler) load(c *gin.Context) (*models.User, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user"))
		return nil, false
	}
	if caller := middleware.CurrentRole(c); !caller.AtLeast(auth.Role(user.Role)) {
		respondError(c, apperr.Forbidden(fmt.Sprintf("Cannot modify a %s account as %s", user.Role, caller)))
		return nil, false
	}
	return &user, true
}

// --- PUT: /api/users/:id ---
func (h *UserHandler) Update(c *gin.Context) {
	var input UpdateUserRequest
	if !bindJSON(c, &input) {
		return
	}
	user, ok := h.load(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Role != nil {
		if err := h.checkRole(c, *input.Role); err != nil {
			respondError(c, err)
			return
		}
		role, _ := auth.ParseRole(*input.Role)
		updates["role"] = string(role)
	}
	if input.IsActive != nil {
		if !*input.IsActive && user.ID == middleware.CurrentUserID(c) {
			respondError(c, apperr.Field("isActive", "you cannot deactivate your own account"))
			return
		}
		updates["is_active"] = *input.IsActive
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, apperr.Internal("Failed to hash password", err))
			return
		}
		updates["password_hash"] = string(hash)
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
			respondError(c, apperr.FromDB(err, "user"))
			return
		}
	}
	if err := h.db.WithContext(c.Request.Context()).First(user, user.ID).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- DELETE: /api/users/:id ---
// Accounts are deactivated, never removed, so audit rows keep their owner.
func (h *UserHandler) Deactivate(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}
	if user.ID == middleware.CurrentUserID(c) {
		respondError(c, apperr.Validation("You cannot deactivate your own account"))
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Model(user).Update("is_active", false).Error; err != nil {
		respondError(c, apperr.FromDB(err, "user"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}
