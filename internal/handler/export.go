package handler

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Samsoniteyd/newtailor/internal/apperr"
	"github.com/Samsoniteyd/newtailor/internal/middleware"
	"github.com/Samsoniteyd/newtailor/internal/models"
	"github.com/Samsoniteyd/newtailor/internal/util"
)

// ExportHandler dumps the caller's order book as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{
	"Reference", "Customer", "Status", "Contact Email", "Contact Phone",
	"Due Date", "Created", "Description",
}

func (h *ExportHandler) load(userID uint) ([]models.Requisition, error) {
	var requisitions []models.Requisition
	err := h.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requisitions).Error
	return requisitions, err
}

func exportRow(r *models.Requisition) []string {
	due := ""
	if r.DueDate != nil {
		due = r.DueDate.Format("2006-01-02")
	}
	return []string{
		r.Reference,
		r.Name,
		r.Status,
		r.ContactEmail,
		r.ContactPhone,
		due,
		r.CreatedAt.Format("2006-01-02"),
		r.Description,
	}
}

// ExportCSV streams the order book as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	requisitions, err := h.load(user.ID)
	if err != nil {
		util.Fail(c, apperr.Server("load requisitions", err))
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"requisitions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportHeader)
	for i := range requisitions {
		_ = writer.Write(exportRow(&requisitions[i]))
	}
}

// ExportXLSX writes the order book as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Fail(c, apperr.Unauthorized(""))
		return
	}

	requisitions, err := h.load(user.ID)
	if err != nil {
		util.Fail(c, apperr.Server("load requisitions", err))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Requisitions"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		util.Fail(c, apperr.Server("create sheet", err))
		return
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i := range requisitions {
		for col, val := range exportRow(&requisitions[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, val)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"requisitions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		// headers already sent; log via gin's error list
		_ = c.Error(err)
	}
}
