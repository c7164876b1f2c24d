package handler

import (
	"net/http"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/budget"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var validFrequency = map[string]bool{
	models.FrequencyMonthly: true,
	models.FrequencyYearly:  true,
	models.FrequencyOneTime: true,
}

type BudgetHandler struct {
	db *gorm.DB
}

func NewBudgetHandler(db *gorm.DB) *BudgetHandler {
	return &BudgetHandler{db: db}
}

func (h *BudgetHandler) periodJSON(p *models.ExpensePeriod) util.Response {
	var items []models.ExpectedItem
	h.db.Where("period_id = ?", p.ID).Find(&items)
	income, expenses := budget.PeriodTotals(items)
	return util.Response{
		"id":               p.ID,
		"project_id":       p.ProjectID,
		"name":             p.Name,
		"start_month":      p.StartMonth,
		"end_month":        p.EndMonth,
		"notes":            p.Notes,
		"item_count":       len(items),
		"monthly_income":   income,
		"monthly_expenses": expenses,
		"monthly_profit":   budget.Round2(income - expenses),
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}
}

// ---- periods ----

func (h *BudgetHandler) ListPeriods(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}

	var periods []models.ExpensePeriod
	if err := q.Order("start_month DESC").Find(&periods).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list periods")
		return
	}

	list := make([]util.Response, 0, len(periods))
	for i := range periods {
		list = append(list, h.periodJSON(&periods[i]))
	}
	util.Success(c, util.Response{"periods": list})
}

func (h *BudgetHandler) CreatePeriod(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID  string `json:"project_id" binding:"required"`
		Name       string `json:"name" binding:"required"`
		StartMonth string `json:"start_month" binding:"required"`
		EndMonth   string `json:"end_month" binding:"required"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id, name, start month and end month are required")
		return
	}
	if util.ValidateMonth(req.StartMonth) != nil || util.ValidateMonth(req.EndMonth) != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Months must be YYYY-MM")
		return
	}
	if req.EndMonth < req.StartMonth {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "End month must not precede start month")
		return
	}
	if !ownedProjectID(c, h.db, user, req.ProjectID) {
		return
	}

	now := util.NowISO()
	period := models.ExpensePeriod{
		ID:         newID(),
		UserID:     user.ID,
		ProjectID:  req.ProjectID,
		Name:       req.Name,
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.db.Create(&period).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create period")
		return
	}
	util.Success(c, h.periodJSON(&period))
}

func (h *BudgetHandler) ownedPeriod(c *gin.Context, id string) (*models.ExpensePeriod, bool) {
	user, ok := mustUser(c)
	if !ok {
		return nil, false
	}
	var period models.ExpensePeriod
	err := h.db.First(&period, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound || (err == nil && period.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Period not found")
		return nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load period")
		return nil, false
	}
	return &period, true
}

func (h *BudgetHandler) GetPeriod(c *gin.Context) {
	period, ok := h.ownedPeriod(c, c.Param("periodID"))
	if !ok {
		return
	}
	var items []models.ExpectedItem
	if err := h.db.Where("period_id = ?", period.ID).
		Order("amount DESC").Find(&items).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load period items")
		return
	}
	resp := h.periodJSON(period)
	resp["items"] = items
	util.Success(c, resp)
}

func (h *BudgetHandler) UpdatePeriod(c *gin.Context) {
	period, ok := h.ownedPeriod(c, c.Param("periodID"))
	if !ok {
		return
	}

	var req struct {
		Name       *string `json:"name"`
		StartMonth *string `json:"start_month"`
		EndMonth   *string `json:"end_month"`
		Notes      *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartMonth != nil {
		if util.ValidateMonth(*req.StartMonth) != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Months must be YYYY-MM")
			return
		}
		period.StartMonth = *req.StartMonth
	}
	if req.EndMonth != nil {
		if util.ValidateMonth(*req.EndMonth) != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Months must be YYYY-MM")
			return
		}
		period.EndMonth = *req.EndMonth
	}
	if period.EndMonth < period.StartMonth {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "End month must not precede start month")
		return
	}
	if req.Notes != nil {
		period.Notes = *req.Notes
	}
	period.UpdatedAt = util.NowISO()

	if err := h.db.Save(period).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update period")
		return
	}
	util.Success(c, h.periodJSON(period))
}

func (h *BudgetHandler) DeletePeriod(c *gin.Context) {
	period, ok := h.ownedPeriod(c, c.Param("periodID"))
	if !ok {
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period_id = ?", period.ID).Delete(&models.ExpectedItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(period).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete period")
		return
	}
	util.Success(c, util.Response{"message": "Period deleted"})
}

// ---- expected items ----

func (h *BudgetHandler) CreateItem(c *gin.Context) {
	period, ok := h.ownedPeriod(c, c.Param("periodID"))
	if !ok {
		return
	}

	var req struct {
		Name       string  `json:"name" binding:"required"`
		Amount     float64 `json:"amount"`
		ItemType   string  `json:"item_type" binding:"required"`
		Frequency  string  `json:"frequency" binding:"required"`
		CategoryID *string `json:"category_id"`
		Month      string  `json:"month"`
		Notes      string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Name, item type and frequency are required")
		return
	}
	if req.ItemType != models.CategoryIncome && req.ItemType != models.CategoryExpense {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Item type must be income or expense")
		return
	}
	if !validFrequency[req.Frequency] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Frequency must be monthly, yearly or one_time")
		return
	}
	if req.Amount < 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Amount must not be negative")
		return
	}
	if req.Frequency == models.FrequencyOneTime && util.ValidateMonth(req.Month) != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "One-time items need a YYYY-MM month")
		return
	}
	if req.CategoryID != nil {
		var category models.FinanceCategory
		if err := h.db.First(&category, "id = ? AND user_id = ?", *req.CategoryID, period.UserID).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Category not found")
			return
		}
	}

	now := util.NowISO()
	item := models.ExpectedItem{
		ID:         newID(),
		UserID:     period.UserID,
		PeriodID:   period.ID,
		ProjectID:  period.ProjectID,
		Name:       req.Name,
		Amount:     req.Amount,
		ItemType:   req.ItemType,
		Frequency:  req.Frequency,
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.db.Create(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create expected item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *BudgetHandler) UpdateItem(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var item models.ExpectedItem
	err := h.db.First(&item, "id = ?", c.Param("itemID")).Error
	if err == gorm.ErrRecordNotFound || (err == nil && item.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Expected item not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load expected item")
		return
	}

	var req struct {
		Name       *string  `json:"name"`
		Amount     *float64 `json:"amount"`
		ItemType   *string  `json:"item_type"`
		Frequency  *string  `json:"frequency"`
		CategoryID *string  `json:"category_id"`
		Month      *string  `json:"month"`
		Notes      *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Amount must not be negative")
			return
		}
		item.Amount = *req.Amount
	}
	if req.ItemType != nil {
		if *req.ItemType != models.CategoryIncome && *req.ItemType != models.CategoryExpense {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Item type must be income or expense")
			return
		}
		item.ItemType = *req.ItemType
	}
	if req.Frequency != nil {
		if !validFrequency[*req.Frequency] {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Frequency must be monthly, yearly or one_time")
			return
		}
		item.Frequency = *req.Frequency
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			item.CategoryID = nil
		} else {
			var category models.FinanceCategory
			if err := h.db.First(&category, "id = ? AND user_id = ?", *req.CategoryID, user.ID).Error; err != nil {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "Category not found")
				return
			}
			item.CategoryID = req.CategoryID
		}
	}
	if req.Month != nil {
		item.Month = *req.Month
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	item.UpdatedAt = util.NowISO()

	if err := h.db.Save(&item).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update expected item")
		return
	}
	util.Success(c, util.Response{"item": item})
}

func (h *BudgetHandler) DeleteItem(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	result := h.db.Where("id = ? AND user_id = ?",
		c.Param("itemID"), user.ID).Delete(&models.ExpectedItem{})
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete expected item")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Expected item not found")
		return
	}
	util.Success(c, util.Response{"message": "Expected item deleted"})
}

// ---- comparison ----

// Comparison reconciles a month's transactions against the expected items
// of the period containing that month.
func (h *BudgetHandler) Comparison(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))
	if err := util.ValidateMonth(month); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Month must be YYYY-MM")
		return
	}
	projectID := c.Query("project_id")

	pq := h.db.Where("user_id = ? AND start_month <= ? AND end_month >= ?",
		user.ID, month, month)
	if projectID != "" {
		pq = pq.Where("project_id = ?", projectID)
	}
	var period models.ExpensePeriod
	err := pq.Order("start_month DESC").First(&period).Error
	var periodPtr *models.ExpensePeriod
	var items []models.ExpectedItem
	if err == nil {
		periodPtr = &period
		if err := h.db.Where("period_id = ?", period.ID).
			Order("created_at ASC").Find(&items).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load expected items")
			return
		}
	} else if err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load period")
		return
	}

	start, end, _ := util.MonthBounds(month)
	tq := h.db.Where("user_id = ? AND date BETWEEN ? AND ?", user.ID, start, end)
	if projectID != "" {
		tq = tq.Where("project_id = ?", projectID)
	}
	var txs []models.FinanceTransaction
	if err := tq.Order("date ASC").Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load transactions")
		return
	}

	var cats []models.FinanceCategory
	h.db.Where("user_id = ?", user.ID).Find(&cats)
	catMap := make(map[string]models.FinanceCategory, len(cats))
	for _, cat := range cats {
		catMap[cat.ID] = cat
	}

	result := budget.Compare(month, periodPtr, items, txs, catMap)
	util.Success(c, util.Response{"comparison": result})
}
