package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/davehub/parc-manager/internal/models"
	"github.com/davehub/parc-manager/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler dumps the equipment inventory for reporting (admin only).
type ExportHandler struct {
	DB *gorm.DB
}

// NewExportHandler builds an ExportHandler.
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{
	"Nom", "Type", "Numéro de série", "Fabricant", "Modèle",
	"Date d'achat", "Fin de garantie", "Statut", "Attribué à", "Localisation", "Notes",
}

func exportRow(e *models.Equipment) []string {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	date := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	}
	assigned := "Non attribué"
	if e.AssignedTo != nil {
		assigned = e.AssignedTo.Username
	}
	return []string{
		e.Name, e.Type, e.SerialNumber,
		deref(e.Manufacturer), deref(e.Model),
		date(e.PurchaseDate), date(e.WarrantyEndDate),
		e.Status, assigned, e.Location, deref(e.Notes),
	}
}

func (h *ExportHandler) loadAll() ([]models.Equipment, error) {
	var equipments []models.Equipment
	err := h.DB.Preload("AssignedTo").Order("name ASC").Find(&equipments).Error
	return equipments, err
}

// ExportCSV streams the whole inventory as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	equipments, err := h.loadAll()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "equipment query failed")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"equipments_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so Excel renders accents correctly
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeader)
	for i := range equipments {
		writer.Write(exportRow(&equipments[i]))
	}
}

// ExportXLSX streams the whole inventory as an XLSX workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	equipments, err := h.loadAll()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "equipment query failed")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Équipements"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row := range equipments {
		for col, value := range exportRow(&equipments[row]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"equipments_%s.xlsx\"",
		time.Now().Format("20060102")))
	c.Header("Content-Transfer-Encoding", "binary")

	// headers are already sent, a write failure here can only be dropped
	_ = f.Write(c.Writer)
}
