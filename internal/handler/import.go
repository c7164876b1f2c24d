package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/importer"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ImportHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewImportHandler(db *gorm.DB, cfg *config.Config) *ImportHandler {
	return &ImportHandler{db: db, cfg: cfg}
}

// Preview parses an uploaded CSV or OFX file without writing anything.
// CSV uploads go through two phases: first without a column mapping to
// discover columns, then again with date and amount columns mapped.
func (h *ImportHandler) Preview(c *gin.Context) {
	if _, ok := mustUser(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No file uploaded")
		return
	}
	if fileHeader.Size > h.cfg.MaxUploadBytes() {
		util.Error(c, http.StatusRequestEntityTooLarge, util.CodeInvalidParam, "File is too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to read upload")
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to read upload")
		return
	}

	format := c.DefaultPostForm("format", "csv")
	if format == "ofx" || strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".ofx") ||
		strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".qfx") {
		preview, err := importer.ParseOFX(data)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		util.Success(c, util.Response{"preview": preview, "format": "ofx"})
		return
	}

	opts := importer.CSVOptions{
		Delimiter:         c.DefaultPostForm("delimiter", ","),
		HasHeader:         c.DefaultPostForm("has_header", "true") == "true",
		DateColumn:        c.PostForm("date_column"),
		AmountColumn:      c.PostForm("amount_column"),
		DescriptionColumn: c.PostForm("description_column"),
		CategoryColumn:    c.PostForm("category_column"),
		DateFormat:        c.PostForm("date_format"),
	}
	preview, err := importer.ParseCSV(data, opts)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	util.Success(c, util.Response{"preview": preview, "format": "csv"})
}

// Confirm writes previewed transactions to an account. Category names on
// the rows are matched against the user's categories case-insensitively;
// rows without a match fall back to the default category.
func (h *ImportHandler) Confirm(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		AccountID         string                       `json:"account_id" binding:"required"`
		DefaultCategoryID string                       `json:"default_category_id" binding:"required"`
		Transactions      []importer.ParsedTransaction `json:"transactions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Account, default category and transactions are required")
		return
	}
	if len(req.Transactions) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "No transactions to import")
		return
	}

	var account models.FinanceAccount
	if err := h.db.First(&account, "id = ? AND user_id = ?", req.AccountID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Account not found")
		return
	}
	var defaultCat models.FinanceCategory
	if err := h.db.First(&defaultCat, "id = ? AND user_id = ?", req.DefaultCategoryID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Default category not found")
		return
	}

	var categories []models.FinanceCategory
	h.db.Where("user_id = ?", user.ID).Find(&categories)
	byName := make(map[string]string, len(categories))
	for _, cat := range categories {
		byName[strings.ToLower(cat.Name)] = cat.ID
	}

	imported := 0
	skipped := 0
	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range req.Transactions {
			if err := util.ValidateDate(row.Date); err != nil {
				skipped++
				continue
			}

			categoryID := defaultCat.ID
			if row.Category != "" {
				if id, ok := byName[strings.ToLower(row.Category)]; ok {
					categoryID = id
				}
			}

			now := util.NowISO()
			record := models.FinanceTransaction{
				ID:         newID(),
				UserID:     user.ID,
				ProjectID:  account.ProjectID,
				AccountID:  account.ID,
				CategoryID: categoryID,
				Date:       row.Date,
				Amount:     row.Amount,
				Notes:      row.Description,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to import transactions")
		return
	}

	util.Success(c, util.Response{"imported": imported, "skipped": skipped})
}

// SampleCSV serves a small example file showing the expected layout.
func (h *ImportHandler) SampleCSV(c *gin.Context) {
	sample := "Date,Amount,Description,Category\n" +
		"2025-01-05,-42.50,Weekly groceries,Groceries\n" +
		"2025-01-25,2500.00,January salary,Salary\n" +
		"2025-01-28,-15.00,Streaming subscription,Subscriptions\n"
	c.Header("Content-Disposition", `attachment; filename="sample-import.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(sample))
}
