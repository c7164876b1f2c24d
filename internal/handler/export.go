package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExportHandler struct {
	db *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

var exportHeader = []string{"Date", "Account", "Category", "Amount", "Notes"}

// Transactions exports the user's transactions as CSV or XLSX.
func (h *ExportHandler) Transactions(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}
	if month := c.Query("month"); month != "" {
		start, end, err := util.MonthBounds(month)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid month")
			return
		}
		q = q.Where("date BETWEEN ? AND ?", start, end)
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("date <= ?", to)
	}

	var txs []models.FinanceTransaction
	if err := q.Order("date ASC").Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load transactions")
		return
	}

	accounts := make(map[string]string)
	var accountRows []models.FinanceAccount
	h.db.Where("user_id = ?", user.ID).Find(&accountRows)
	for _, a := range accountRows {
		accounts[a.ID] = a.Name
	}
	categories := make(map[string]string)
	var categoryRows []models.FinanceCategory
	h.db.Where("user_id = ?", user.ID).Find(&categoryRows)
	for _, cat := range categoryRows {
		categories[cat.ID] = cat.Name
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.Date,
			accounts[tx.AccountID],
			categories[tx.CategoryID],
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Notes,
		})
	}

	if c.DefaultQuery("format", "csv") == "xlsx" {
		h.writeXLSX(c, rows)
		return
	}
	h.writeCSV(c, rows)
}

func (h *ExportHandler) writeCSV(c *gin.Context, rows [][]string) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(exportHeader)
	for _, row := range rows {
		_ = w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to build export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *ExportHandler) writeXLSX(c *gin.Context, rows [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if col == 3 {
				// Amounts go in as numbers so spreadsheets can sum them.
				if amount, err := strconv.ParseFloat(value, 64); err == nil {
					_ = f.SetCellValue(sheet, cell, amount)
					continue
				}
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to build export")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "transactions.xlsx"))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
