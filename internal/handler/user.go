package handler

import (
	"net/http"
	"strings"

	"github.com/davehub/parc-manager/internal/middleware"
	"github.com/davehub/parc-manager/internal/models"
	"github.com/davehub/parc-manager/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves user directory and admin user management endpoints.
type UserHandler struct {
	DB         *gorm.DB
	BcryptCost int
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(db *gorm.DB, bcryptCost int) *UserHandler {
	if bcryptCost <= 0 {
		bcryptCost = 12
	}
	return &UserHandler{DB: db, BcryptCost: bcryptCost}
}

// GetMe returns the authenticated user (requires AuthMiddleware).
func GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers returns every application user, for assignment pickers and the
// admin user management view.
func (h *UserHandler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("username ASC").Find(&users).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "user listing failed")
		return
	}
	c.JSON(http.StatusOK, users)
}

// ---------- admin mutations ----------

type userReq struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role" binding:"required,oneof=admin user"`
	Password  string `json:"password"`
}

// CreateUser creates a user account (admin only).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req userReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := util.ValidateUsername(req.Username); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := util.ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" {
		util.Error(c, http.StatusBadRequest, "password is required")
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "user lookup failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "password hashing failed")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "user creation failed")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// UpdateUser edits a user account (admin only). Password is changed only when
// a new one is supplied.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "user lookup failed")
		}
		return
	}

	var req userReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := util.ValidateUsername(req.Username); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := util.ValidateEmail(strings.TrimSpace(req.Email)); err != nil {
		util.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	// username uniqueness, ignoring the record under edit
	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?) AND id <> ?", req.Username, user.ID).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "user lookup failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, "username already taken")
		return
	}

	user.Username = req.Username
	user.Email = strings.TrimSpace(req.Email)
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Role = req.Role

	if req.Password != "" {
		if err := util.ValidatePassword(req.Password); err != nil {
			util.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "password hashing failed")
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "user update failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user account (admin only). Equipment assigned to the
// user falls back to unassigned via the FK's SET NULL.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	current := middleware.CurrentUser(c)
	if current != nil && current.ID == id {
		util.Error(c, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	res := h.DB.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, "user deletion failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, "user not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
