package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/davehub/parc-manager/internal/middleware"
	"github.com/davehub/parc-manager/internal/models"
	"github.com/davehub/parc-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MaintenanceHandler serves the append-only maintenance log.
type MaintenanceHandler struct {
	DB *gorm.DB
}

// NewMaintenanceHandler builds a MaintenanceHandler.
func NewMaintenanceHandler(db *gorm.DB) *MaintenanceHandler {
	return &MaintenanceHandler{DB: db}
}

type maintenanceResp struct {
	ID              string          `json:"_id"`
	Equipment       string          `json:"equipment"`
	MaintenanceDate time.Time       `json:"maintenanceDate"`
	Description     string          `json:"description"`
	PerformedBy     *models.UserRef `json:"performedBy"`
	Cost            *float64        `json:"cost"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toMaintenanceResp(m *models.MaintenanceRecord) maintenanceResp {
	resp := maintenanceResp{
		ID:              m.ID,
		Equipment:       m.EquipmentID,
		MaintenanceDate: m.MaintenanceDate,
		Description:     m.Description,
		Cost:            m.Cost,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.PerformedBy != nil {
		ref := m.PerformedBy.Ref()
		resp.PerformedBy = &ref
	}
	return resp
}

// canAccessEquipment: admins always, plain users only for their own equipment.
func canAccessEquipment(user *models.User, equipment *models.Equipment) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	return equipment.AssignedToID != nil && *equipment.AssignedToID == user.ID
}

// ListForEquipment returns the maintenance history of one equipment,
// newest first.
func (h *MaintenanceHandler) ListForEquipment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var equipment models.Equipment
	if err := h.DB.First(&equipment, "id = ?", c.Param("equipmentId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "equipment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "equipment query failed")
		}
		return
	}

	if !canAccessEquipment(user, &equipment) {
		util.Error(c, http.StatusForbidden, "access denied to this maintenance history")
		return
	}

	var records []models.MaintenanceRecord
	if err := h.DB.Preload("PerformedBy").
		Where("equipment_id = ?", equipment.ID).
		Order("maintenance_date DESC, created_at DESC").
		Find(&records).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "maintenance query failed")
		return
	}

	items := make([]maintenanceResp, 0, len(records))
	for i := range records {
		items = append(items, toMaintenanceResp(&records[i]))
	}
	c.JSON(http.StatusOK, items)
}

type createMaintenanceReq struct {
	EquipmentID     string   `json:"equipmentId" binding:"required"`
	MaintenanceDate string   `json:"maintenanceDate" binding:"required"`
	Description     string   `json:"description" binding:"required"`
	Cost            *float64 `json:"cost"`
	Notes           string   `json:"notes"`
}

// Create appends one maintenance record. Allowed for admins and for the
// equipment's assigned user; performedBy is stamped from the caller.
func (h *MaintenanceHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createMaintenanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var equipment models.Equipment
	if err := h.DB.First(&equipment, "id = ?", req.EquipmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "equipment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "equipment query failed")
		}
		return
	}

	if !canAccessEquipment(user, &equipment) {
		util.Error(c, http.StatusForbidden, "only an admin or the assigned user may log maintenance")
		return
	}

	date, err := util.ParseDate(req.MaintenanceDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "invalid maintenance date")
		return
	}
	if req.Cost != nil && *req.Cost < 0 {
		util.Error(c, http.StatusBadRequest, "cost cannot be negative")
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		util.Error(c, http.StatusBadRequest, "description is required")
		return
	}

	record := models.MaintenanceRecord{
		EquipmentID:     equipment.ID,
		MaintenanceDate: date,
		Description:     description,
		PerformedByID:   user.ID,
		Cost:            req.Cost,
		Notes:           optString(req.Notes),
	}
	if err := h.DB.Create(&record).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "maintenance creation failed")
		return
	}

	record.PerformedBy = user
	c.JSON(http.StatusCreated, toMaintenanceResp(&record))
}
