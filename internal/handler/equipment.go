package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/davehub/parc-manager/internal/middleware"
	"github.com/davehub/parc-manager/internal/models"
	"github.com/davehub/parc-manager/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EquipmentHandler serves the equipment CRUD and listing endpoints.
type EquipmentHandler struct {
	DB       *gorm.DB
	PageSize int
}

// NewEquipmentHandler builds an EquipmentHandler. pageSize is the default
// page size when the request does not carry a limit.
func NewEquipmentHandler(db *gorm.DB, pageSize int) *EquipmentHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &EquipmentHandler{DB: db, PageSize: pageSize}
}

// ---------- request / response shapes ----------

type equipmentReq struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	SerialNumber    string `json:"serialNumber" binding:"required"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	PurchaseDate    string `json:"purchaseDate"`
	WarrantyEndDate string `json:"warrantyEndDate"`
	Status          string `json:"status" binding:"required"`
	AssignedTo      string `json:"assignedTo"`
	Location        string `json:"location" binding:"required"`
	Notes           string `json:"notes"`
}

type equipmentResp struct {
	ID              string          `json:"_id"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	SerialNumber    string          `json:"serialNumber"`
	Manufacturer    *string         `json:"manufacturer"`
	Model           *string         `json:"model"`
	PurchaseDate    *time.Time      `json:"purchaseDate"`
	WarrantyEndDate *time.Time      `json:"warrantyEndDate"`
	Status          string          `json:"status"`
	AssignedTo      *models.UserRef `json:"assignedTo"`
	CreatedBy       *models.UserRef `json:"createdBy,omitempty"`
	Location        string          `json:"location"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toEquipmentResp(e *models.Equipment) equipmentResp {
	resp := equipmentResp{
		ID:              e.ID,
		Name:            e.Name,
		Type:            e.Type,
		SerialNumber:    e.SerialNumber,
		Manufacturer:    e.Manufacturer,
		Model:           e.Model,
		PurchaseDate:    e.PurchaseDate,
		WarrantyEndDate: e.WarrantyEndDate,
		Status:          e.Status,
		Location:        e.Location,
		Notes:           e.Notes,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.AssignedTo != nil {
		ref := e.AssignedTo.Ref()
		resp.AssignedTo = &ref
	}
	if e.CreatedBy != nil {
		ref := e.CreatedBy.Ref()
		resp.CreatedBy = &ref
	}
	return resp
}

// optString coerces an empty/blank string to nil so the database keeps the
// difference between "cleared" and "never set".
func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := util.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ---------- listing ----------

// ListEquipments returns a filtered, paginated page of equipment.
// Empty filters are omitted from the conjunction, never sent as wildcards.
// Non-admin callers only ever see their own assigned equipment.
func (h *EquipmentHandler) ListEquipments(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	// pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.PageSize)))
	if limit <= 0 || limit > 100 {
		limit = h.PageSize
	}
	offset := (page - 1) * limit

	base := h.DB.Model(&models.Equipment{})

	// role scoping comes first and cannot be filtered away
	if user.Role != models.RoleAdmin {
		base = base.Where("assigned_to_id = ?", user.ID)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		base = base.Where(
			"name LIKE ? OR serial_number LIKE ? OR manufacturer LIKE ? OR model LIKE ? OR location LIKE ?",
			like, like, like, like, like,
		)
	}
	if t := c.Query("type"); t != "" && t != "all" {
		base = base.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" && s != "all" {
		base = base.Where("status = ?", s)
	}
	if assigned := c.Query("assignedTo"); assigned != "" && assigned != "all" && user.Role == models.RoleAdmin {
		base = base.Where("assigned_to_id = ?", assigned)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "equipment query failed")
		return
	}

	var equipments []models.Equipment
	if err := base.Session(&gorm.Session{}).
		Preload("AssignedTo").
		Order("name ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&equipments).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "equipment query failed")
		return
	}

	items := make([]equipmentResp, 0, len(equipments))
	for i := range equipments {
		items = append(items, toEquipmentResp(&equipments[i]))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"equipments":  items,
		"currentPage": page,
		"totalPages":  totalPages,
		"totalCount":  total,
	})
}

// GetEquipment returns one equipment record. Admins see everything; a plain
// user only the equipment assigned to them.
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var equipment models.Equipment
	if err := h.DB.Preload("AssignedTo").Preload("CreatedBy").
		First(&equipment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "equipment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "equipment query failed")
		}
		return
	}

	if user.Role != models.RoleAdmin {
		if equipment.AssignedToID == nil || *equipment.AssignedToID != user.ID {
			util.Error(c, http.StatusForbidden, "access denied to this equipment")
			return
		}
	}

	c.JSON(http.StatusOK, toEquipmentResp(&equipment))
}

// ---------- mutations (admin only, enforced by the router) ----------

func (h *EquipmentHandler) bindEquipment(c *gin.Context, e *models.Equipment) bool {
	var req equipmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "invalid request body")
		return false
	}

	if !models.ValidType(req.Type) {
		util.Error(c, http.StatusBadRequest, "unknown equipment type")
		return false
	}
	if !models.ValidStatus(req.Status) {
		util.Error(c, http.StatusBadRequest, "unknown equipment status")
		return false
	}

	purchaseDate, err := optDate(req.PurchaseDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "invalid purchase date")
		return false
	}
	warrantyEndDate, err := optDate(req.WarrantyEndDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, "invalid warranty end date")
		return false
	}

	// assignedTo, when present, must reference an existing user
	var assignedToID *string
	if assigned := strings.TrimSpace(req.AssignedTo); assigned != "" {
		var assignee models.User
		if err := h.DB.First(&assignee, "id = ?", assigned).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				util.Error(c, http.StatusBadRequest, "assigned user does not exist")
			} else {
				util.Error(c, http.StatusInternalServerError, "user lookup failed")
			}
			return false
		}
		assignedToID = &assignee.ID
	}

	e.Name = strings.TrimSpace(req.Name)
	e.Type = req.Type
	e.SerialNumber = strings.TrimSpace(req.SerialNumber)
	e.Manufacturer = optString(req.Manufacturer)
	e.Model = optString(req.Model)
	e.PurchaseDate = purchaseDate
	e.WarrantyEndDate = warrantyEndDate
	e.Status = req.Status
	e.AssignedToID = assignedToID
	e.Location = strings.TrimSpace(req.Location)
	e.Notes = optString(req.Notes)

	if e.Name == "" || e.SerialNumber == "" || e.Location == "" {
		util.Error(c, http.StatusBadRequest, "name, serial number and location are required")
		return false
	}
	return true
}

// CreateEquipment registers a new equipment record.
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var equipment models.Equipment
	if !h.bindEquipment(c, &equipment) {
		return
	}
	equipment.CreatedByID = user.ID

	if err := h.DB.Create(&equipment).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "equipment creation failed")
		return
	}

	// reload with the assignee populated
	_ = h.DB.Preload("AssignedTo").First(&equipment, "id = ?", equipment.ID).Error

	c.JSON(http.StatusCreated, toEquipmentResp(&equipment))
}

// UpdateEquipment edits an existing equipment record.
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	var equipment models.Equipment
	if err := h.DB.First(&equipment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, "equipment not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "equipment query failed")
		}
		return
	}

	if !h.bindEquipment(c, &equipment) {
		return
	}

	// Save with Select so cleared optional fields really go back to NULL
	if err := h.DB.Model(&equipment).Select(
		"name", "type", "serial_number", "manufacturer", "model",
		"purchase_date", "warranty_end_date", "status", "assigned_to_id",
		"location", "notes",
	).Updates(&equipment).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "equipment update failed")
		return
	}

	_ = h.DB.Preload("AssignedTo").First(&equipment, "id = ?", equipment.ID).Error

	c.JSON(http.StatusOK, toEquipmentResp(&equipment))
}

// DeleteEquipment removes an equipment record and, via FK cascade, its
// maintenance history.
func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	res := h.DB.Delete(&models.Equipment{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, "equipment deletion failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, "equipment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "equipment deleted"})
}
