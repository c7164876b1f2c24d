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

// runwayCap is the maximum months of runway reported.
const runwayCap = 999.0

var validAccountType = map[string]bool{
	models.AccountBank:   true,
	models.AccountCash:   true,
	models.AccountCrypto: true,
	models.AccountAsset:  true,
}

var validCategoryType = map[string]bool{
	models.CategoryIncome:     true,
	models.CategoryExpense:    true,
	models.CategoryInvestment: true,
}

// defaultCategories seeds a fresh project with a usable category set.
var defaultCategories = []struct {
	Name string
	Type string
}{
	{"Salary", models.CategoryIncome},
	{"Other income", models.CategoryIncome},
	{"Groceries", models.CategoryExpense},
	{"Housing", models.CategoryExpense},
	{"Utilities", models.CategoryExpense},
	{"Transport", models.CategoryExpense},
	{"Insurance", models.CategoryExpense},
	{"Healthcare", models.CategoryExpense},
	{"Subscriptions", models.CategoryExpense},
	{"Other expenses", models.CategoryExpense},
	{"Investments", models.CategoryInvestment},
}

type FinanceHandler struct {
	db *gorm.DB
}

func NewFinanceHandler(db *gorm.DB) *FinanceHandler {
	return &FinanceHandler{db: db}
}

// balance derives an account's current balance: starting balance plus the
// sum of its transactions. Balances are never stored.
func (h *FinanceHandler) balance(account *models.FinanceAccount) float64 {
	var sum float64
	h.db.Model(&models.FinanceTransaction{}).
		Where("account_id = ?", account.ID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum)
	return budget.Round2(account.StartingBalance + sum)
}

func accountJSON(a *models.FinanceAccount, balance float64) util.Response {
	return util.Response{
		"id":               a.ID,
		"project_id":       a.ProjectID,
		"name":             a.Name,
		"type":             a.Type,
		"starting_balance": a.StartingBalance,
		"balance":          balance,
		"notes":            a.Notes,
		"created_at":       a.CreatedAt,
		"updated_at":       a.UpdatedAt,
	}
}

// ---- accounts ----

func (h *FinanceHandler) ListAccounts(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}

	var accounts []models.FinanceAccount
	if err := q.Order("name ASC").Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list accounts")
		return
	}

	list := make([]util.Response, 0, len(accounts))
	for i := range accounts {
		list = append(list, accountJSON(&accounts[i], h.balance(&accounts[i])))
	}
	util.Success(c, util.Response{"accounts": list})
}

func (h *FinanceHandler) CreateAccount(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID       string  `json:"project_id" binding:"required"`
		Name            string  `json:"name" binding:"required"`
		Type            string  `json:"type" binding:"required"`
		StartingBalance float64 `json:"starting_balance"`
		Notes           string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id, name and type are required")
		return
	}
	if !validAccountType[req.Type] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Type must be bank, cash, crypto or asset")
		return
	}
	if !ownedProjectID(c, h.db, user, req.ProjectID) {
		return
	}

	now := util.NowISO()
	account := models.FinanceAccount{
		ID:              newID(),
		UserID:          user.ID,
		ProjectID:       req.ProjectID,
		Name:            req.Name,
		Type:            req.Type,
		StartingBalance: req.StartingBalance,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.db.Create(&account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create account")
		return
	}
	util.Success(c, accountJSON(&account, account.StartingBalance))
}

func (h *FinanceHandler) ownedAccount(c *gin.Context, id string) (*models.FinanceAccount, bool) {
	user, ok := mustUser(c)
	if !ok {
		return nil, false
	}
	var account models.FinanceAccount
	err := h.db.First(&account, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound || (err == nil && account.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Account not found")
		return nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load account")
		return nil, false
	}
	return &account, true
}

func (h *FinanceHandler) UpdateAccount(c *gin.Context) {
	account, ok := h.ownedAccount(c, c.Param("accountID"))
	if !ok {
		return
	}

	var req struct {
		Name            *string  `json:"name"`
		Type            *string  `json:"type"`
		StartingBalance *float64 `json:"starting_balance"`
		Notes           *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Type != nil {
		if !validAccountType[*req.Type] {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Type must be bank, cash, crypto or asset")
			return
		}
		account.Type = *req.Type
	}
	if req.StartingBalance != nil {
		account.StartingBalance = *req.StartingBalance
	}
	if req.Notes != nil {
		account.Notes = *req.Notes
	}
	account.UpdatedAt = util.NowISO()

	if err := h.db.Save(account).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update account")
		return
	}
	util.Success(c, accountJSON(account, h.balance(account)))
}

// DeleteAccount removes an account and every transaction booked on it.
func (h *FinanceHandler) DeleteAccount(c *gin.Context) {
	account, ok := h.ownedAccount(c, c.Param("accountID"))
	if !ok {
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", account.ID).
			Delete(&models.FinanceTransaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(account).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete account")
		return
	}
	util.Success(c, util.Response{"message": "Account deleted"})
}

// ---- categories ----

func (h *FinanceHandler) ListCategories(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}

	var categories []models.FinanceCategory
	if err := q.Order("name ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list categories")
		return
	}
	util.Success(c, util.Response{"categories": categories})
}

func (h *FinanceHandler) CreateCategory(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID string `json:"project_id" binding:"required"`
		Name      string `json:"name" binding:"required"`
		Type      string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id, name and type are required")
		return
	}
	if !validCategoryType[req.Type] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Type must be income, expense or investment")
		return
	}
	if !ownedProjectID(c, h.db, user, req.ProjectID) {
		return
	}

	category := models.FinanceCategory{
		ID:        newID(),
		UserID:    user.ID,
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Type:      req.Type,
		CreatedAt: util.NowISO(),
	}
	if err := h.db.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create category")
		return
	}
	util.Success(c, util.Response{"category": category})
}

// CreateDefaultCategories seeds the standard category set for a project,
// skipping names that already exist.
func (h *FinanceHandler) CreateDefaultCategories(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID string `json:"project_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id is required")
		return
	}
	if !ownedProjectID(c, h.db, user, req.ProjectID) {
		return
	}

	var existing []models.FinanceCategory
	h.db.Where("user_id = ? AND project_id = ?", user.ID, req.ProjectID).Find(&existing)
	have := make(map[string]bool, len(existing))
	for _, cat := range existing {
		have[cat.Name] = true
	}

	created := 0
	for _, def := range defaultCategories {
		if have[def.Name] {
			continue
		}
		category := models.FinanceCategory{
			ID:        newID(),
			UserID:    user.ID,
			ProjectID: req.ProjectID,
			Name:      def.Name,
			Type:      def.Type,
			CreatedAt: util.NowISO(),
		}
		if err := h.db.Create(&category).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create default categories")
			return
		}
		created++
	}
	util.Success(c, util.Response{"created": created})
}

func (h *FinanceHandler) ownedCategory(c *gin.Context, id string) (*models.FinanceCategory, bool) {
	user, ok := mustUser(c)
	if !ok {
		return nil, false
	}
	var category models.FinanceCategory
	err := h.db.First(&category, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound || (err == nil && category.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Category not found")
		return nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load category")
		return nil, false
	}
	return &category, true
}

func (h *FinanceHandler) UpdateCategory(c *gin.Context) {
	category, ok := h.ownedCategory(c, c.Param("categoryID"))
	if !ok {
		return
	}

	var req struct {
		Name *string `json:"name"`
		Type *string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Type != nil {
		if !validCategoryType[*req.Type] {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Type must be income, expense or investment")
			return
		}
		category.Type = *req.Type
	}

	if err := h.db.Save(category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update category")
		return
	}
	util.Success(c, util.Response{"category": category})
}

// DeleteCategory refuses to delete a category that still has transactions.
func (h *FinanceHandler) DeleteCategory(c *gin.Context) {
	category, ok := h.ownedCategory(c, c.Param("categoryID"))
	if !ok {
		return
	}

	var count int64
	h.db.Model(&models.FinanceTransaction{}).
		Where("category_id = ?", category.ID).Count(&count)
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			"Category still has transactions; reassign them first")
		return
	}

	if err := h.db.Delete(category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete category")
		return
	}
	util.Success(c, util.Response{"message": "Category deleted"})
}

// ---- transactions ----

func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}
	if aid := c.Query("account_id"); aid != "" {
		q = q.Where("account_id = ?", aid)
	}
	if cid := c.Query("category_id"); cid != "" {
		q = q.Where("category_id = ?", cid)
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
	if err := q.Order("date DESC, created_at DESC").Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list transactions")
		return
	}
	util.Success(c, util.Response{"transactions": txs})
}

func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		AccountID     string  `json:"account_id" binding:"required"`
		CategoryID    string  `json:"category_id" binding:"required"`
		Date          string  `json:"date" binding:"required"`
		Amount        float64 `json:"amount"`
		Notes         string  `json:"notes"`
		SavingsGoalID *string `json:"savings_goal_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Account, category and date are required")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Date must be YYYY-MM-DD")
		return
	}

	var account models.FinanceAccount
	if err := h.db.First(&account, "id = ? AND user_id = ?", req.AccountID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Account not found")
		return
	}
	var category models.FinanceCategory
	if err := h.db.First(&category, "id = ? AND user_id = ?", req.CategoryID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Category not found")
		return
	}
	if req.SavingsGoalID != nil {
		var goal models.FinanceSavingsGoal
		if err := h.db.First(&goal, "id = ? AND user_id = ?", *req.SavingsGoalID, user.ID).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Savings goal not found")
			return
		}
	}

	now := util.NowISO()
	tx := models.FinanceTransaction{
		ID:            newID(),
		UserID:        user.ID,
		ProjectID:     account.ProjectID,
		AccountID:     req.AccountID,
		CategoryID:    req.CategoryID,
		Date:          req.Date,
		Amount:        req.Amount,
		Notes:         req.Notes,
		SavingsGoalID: req.SavingsGoalID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.db.Create(&tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create transaction")
		return
	}
	util.Success(c, util.Response{"transaction": tx})
}

// Transfer books a matched pair of linked transactions moving money
// between two accounts.
func (h *FinanceHandler) Transfer(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		FromAccountID string  `json:"from_account_id" binding:"required"`
		ToAccountID   string  `json:"to_account_id" binding:"required"`
		CategoryID    string  `json:"category_id" binding:"required"`
		Date          string  `json:"date" binding:"required"`
		Amount        float64 `json:"amount" binding:"required"`
		Notes         string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Both accounts, category, date and amount are required")
		return
	}
	if req.FromAccountID == req.ToAccountID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Cannot transfer to the same account")
		return
	}
	if req.Amount <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Transfer amount must be positive")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Date must be YYYY-MM-DD")
		return
	}

	var from, to models.FinanceAccount
	if err := h.db.First(&from, "id = ? AND user_id = ?", req.FromAccountID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Source account not found")
		return
	}
	if err := h.db.First(&to, "id = ? AND user_id = ?", req.ToAccountID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Destination account not found")
		return
	}

	now := util.NowISO()
	outTx := models.FinanceTransaction{
		ID: newID(), UserID: user.ID, ProjectID: from.ProjectID,
		AccountID: from.ID, CategoryID: req.CategoryID,
		Date: req.Date, Amount: -req.Amount, Notes: req.Notes,
		CreatedAt: now, UpdatedAt: now,
	}
	inTx := models.FinanceTransaction{
		ID: newID(), UserID: user.ID, ProjectID: to.ProjectID,
		AccountID: to.ID, CategoryID: req.CategoryID,
		Date: req.Date, Amount: req.Amount, Notes: req.Notes,
		CreatedAt: now, UpdatedAt: now,
	}
	outTx.LinkedTransactionID = &inTx.ID
	inTx.LinkedTransactionID = &outTx.ID

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&outTx).Error; err != nil {
			return err
		}
		return tx.Create(&inTx).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create transfer")
		return
	}
	util.Success(c, util.Response{"outgoing": outTx, "incoming": inTx})
}

func (h *FinanceHandler) ownedTransaction(c *gin.Context, id string) (*models.FinanceTransaction, bool) {
	user, ok := mustUser(c)
	if !ok {
		return nil, false
	}
	var tx models.FinanceTransaction
	err := h.db.First(&tx, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound || (err == nil && tx.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Transaction not found")
		return nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load transaction")
		return nil, false
	}
	return &tx, true
}

func (h *FinanceHandler) UpdateTransaction(c *gin.Context) {
	tx, ok := h.ownedTransaction(c, c.Param("transactionID"))
	if !ok {
		return
	}

	var req struct {
		AccountID     *string  `json:"account_id"`
		CategoryID    *string  `json:"category_id"`
		Date          *string  `json:"date"`
		Amount        *float64 `json:"amount"`
		Notes         *string  `json:"notes"`
		SavingsGoalID *string  `json:"savings_goal_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	if req.AccountID != nil {
		var account models.FinanceAccount
		if err := h.db.First(&account, "id = ? AND user_id = ?", *req.AccountID, tx.UserID).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Account not found")
			return
		}
		tx.AccountID = *req.AccountID
		tx.ProjectID = account.ProjectID
	}
	if req.CategoryID != nil {
		var category models.FinanceCategory
		if err := h.db.First(&category, "id = ? AND user_id = ?", *req.CategoryID, tx.UserID).Error; err != nil {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Category not found")
			return
		}
		tx.CategoryID = *req.CategoryID
	}
	if req.Date != nil {
		if err := util.ValidateDate(*req.Date); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Date must be YYYY-MM-DD")
			return
		}
		tx.Date = *req.Date
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Notes != nil {
		tx.Notes = *req.Notes
	}
	if req.SavingsGoalID != nil {
		if *req.SavingsGoalID == "" {
			tx.SavingsGoalID = nil
		} else {
			var goal models.FinanceSavingsGoal
			if err := h.db.First(&goal, "id = ? AND user_id = ?", *req.SavingsGoalID, tx.UserID).Error; err != nil {
				util.Error(c, http.StatusNotFound, util.CodeNotFound, "Savings goal not found")
				return
			}
			tx.SavingsGoalID = req.SavingsGoalID
		}
	}
	tx.UpdatedAt = util.NowISO()

	if err := h.db.Save(tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update transaction")
		return
	}
	util.Success(c, util.Response{"transaction": tx})
}

// DeleteTransaction removes a transaction; the linked twin of a transfer
// goes with it.
func (h *FinanceHandler) DeleteTransaction(c *gin.Context) {
	tx, ok := h.ownedTransaction(c, c.Param("transactionID"))
	if !ok {
		return
	}

	err := h.db.Transaction(func(db *gorm.DB) error {
		if tx.LinkedTransactionID != nil {
			if err := db.Delete(&models.FinanceTransaction{},
				"id = ?", *tx.LinkedTransactionID).Error; err != nil {
				return err
			}
		}
		return db.Delete(tx).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete transaction")
		return
	}
	util.Success(c, util.Response{"message": "Transaction deleted"})
}

// ---- recurring ----

func (h *FinanceHandler) ListRecurring(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}

	var recurring []models.FinanceRecurring
	if err := q.Order("name ASC").Find(&recurring).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list recurring transactions")
		return
	}
	util.Success(c, util.Response{"recurring": recurring})
}

func (h *FinanceHandler) CreateRecurring(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		AccountID  string  `json:"account_id" binding:"required"`
		CategoryID string  `json:"category_id" binding:"required"`
		Name       string  `json:"name" binding:"required"`
		Amount     float64 `json:"amount"`
		Frequency  string  `json:"frequency" binding:"required"`
		StartDate  string  `json:"start_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Account, category, name and frequency are required")
		return
	}
	if req.Frequency != models.FrequencyMonthly && req.Frequency != models.FrequencyYearly {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Frequency must be monthly or yearly")
		return
	}

	var account models.FinanceAccount
	if err := h.db.First(&account, "id = ? AND user_id = ?", req.AccountID, user.ID).Error; err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Account not found")
		return
	}

	if req.StartDate == "" {
		req.StartDate = util.Today()
	} else if err := util.ValidateDate(req.StartDate); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Start date must be YYYY-MM-DD")
		return
	}

	now := util.NowISO()
	recurring := models.FinanceRecurring{
		ID:         newID(),
		UserID:     user.ID,
		ProjectID:  account.ProjectID,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		StartDate:  req.StartDate,
		// Informational only; nothing advances this.
		NextExecutionDate: req.StartDate,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := h.db.Create(&recurring).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create recurring transaction")
		return
	}
	util.Success(c, util.Response{"recurring": recurring})
}

func (h *FinanceHandler) UpdateRecurring(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var recurring models.FinanceRecurring
	err := h.db.First(&recurring, "id = ?", c.Param("recurringID")).Error
	if err == gorm.ErrRecordNotFound || (err == nil && recurring.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Recurring transaction not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load recurring transaction")
		return
	}

	var req struct {
		Name      *string  `json:"name"`
		Amount    *float64 `json:"amount"`
		Frequency *string  `json:"frequency"`
		Active    *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		recurring.Name = *req.Name
	}
	if req.Amount != nil {
		recurring.Amount = *req.Amount
	}
	if req.Frequency != nil {
		if *req.Frequency != models.FrequencyMonthly && *req.Frequency != models.FrequencyYearly {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Frequency must be monthly or yearly")
			return
		}
		recurring.Frequency = *req.Frequency
	}
	if req.Active != nil {
		recurring.Active = *req.Active
	}
	recurring.UpdatedAt = util.NowISO()

	if err := h.db.Save(&recurring).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update recurring transaction")
		return
	}
	util.Success(c, util.Response{"recurring": recurring})
}

func (h *FinanceHandler) DeleteRecurring(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	result := h.db.Where("id = ? AND user_id = ?",
		c.Param("recurringID"), user.ID).Delete(&models.FinanceRecurring{})
	if result.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete recurring transaction")
		return
	}
	if result.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Recurring transaction not found")
		return
	}
	util.Success(c, util.Response{"message": "Recurring transaction deleted"})
}

// ---- savings goals ----

func (h *FinanceHandler) goalProgress(goal *models.FinanceSavingsGoal) (current, progress float64) {
	var sum float64
	h.db.Model(&models.FinanceTransaction{}).
		Where("savings_goal_id = ?", goal.ID).
		Select("COALESCE(SUM(amount), 0)").Scan(&sum)
	current = budget.Round2(sum)
	if goal.TargetAmount > 0 {
		progress = current / goal.TargetAmount * 100
		if progress > 100 {
			progress = 100
		}
		if progress < 0 {
			progress = 0
		}
		progress = budget.Round2(progress)
	}
	return current, progress
}

func goalJSON(g *models.FinanceSavingsGoal, current, progress float64) util.Response {
	return util.Response{
		"id":             g.ID,
		"project_id":     g.ProjectID,
		"name":           g.Name,
		"description":    g.Description,
		"target_amount":  g.TargetAmount,
		"current_amount": current,
		"progress":       progress,
		"created_at":     g.CreatedAt,
		"updated_at":     g.UpdatedAt,
	}
}

func (h *FinanceHandler) ListSavingsGoals(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	q := h.db.Where("user_id = ?", user.ID)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}

	var goals []models.FinanceSavingsGoal
	if err := q.Order("name ASC").Find(&goals).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to list savings goals")
		return
	}

	list := make([]util.Response, 0, len(goals))
	for i := range goals {
		current, progress := h.goalProgress(&goals[i])
		list = append(list, goalJSON(&goals[i], current, progress))
	}
	util.Success(c, util.Response{"goals": list})
}

func (h *FinanceHandler) CreateSavingsGoal(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID    string  `json:"project_id" binding:"required"`
		Name         string  `json:"name" binding:"required"`
		Description  string  `json:"description"`
		TargetAmount float64 `json:"target_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Project id and name are required")
		return
	}
	if req.TargetAmount <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Target amount must be positive")
		return
	}
	if !ownedProjectID(c, h.db, user, req.ProjectID) {
		return
	}

	now := util.NowISO()
	goal := models.FinanceSavingsGoal{
		ID:           newID(),
		UserID:       user.ID,
		ProjectID:    req.ProjectID,
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.db.Create(&goal).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create savings goal")
		return
	}
	util.Success(c, goalJSON(&goal, 0, 0))
}

func (h *FinanceHandler) UpdateSavingsGoal(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var goal models.FinanceSavingsGoal
	err := h.db.First(&goal, "id = ?", c.Param("goalID")).Error
	if err == gorm.ErrRecordNotFound || (err == nil && goal.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Savings goal not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load savings goal")
		return
	}

	var req struct {
		Name         *string  `json:"name"`
		Description  *string  `json:"description"`
		TargetAmount *float64 `json:"target_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}
	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.Description != nil {
		goal.Description = *req.Description
	}
	if req.TargetAmount != nil {
		if *req.TargetAmount <= 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Target amount must be positive")
			return
		}
		goal.TargetAmount = *req.TargetAmount
	}
	goal.UpdatedAt = util.NowISO()

	if err := h.db.Save(&goal).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to update savings goal")
		return
	}
	current, progress := h.goalProgress(&goal)
	util.Success(c, goalJSON(&goal, current, progress))
}

// DeleteSavingsGoal detaches linked transactions before removing the goal.
func (h *FinanceHandler) DeleteSavingsGoal(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	var goal models.FinanceSavingsGoal
	err := h.db.First(&goal, "id = ?", c.Param("goalID")).Error
	if err == gorm.ErrRecordNotFound || (err == nil && goal.UserID != user.ID) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Savings goal not found")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load savings goal")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.FinanceTransaction{}).
			Where("savings_goal_id = ?", goal.ID).
			Update("savings_goal_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&goal).Error
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to delete savings goal")
		return
	}
	util.Success(c, util.Response{"message": "Savings goal deleted"})
}

// ---- aggregates ----

// monthTotals sums a month's transactions into income, expenses and
// investments using the category type, falling back to the amount sign.
func (h *FinanceHandler) monthTotals(userID, projectID, month string) (income, expenses, invested float64, err error) {
	start, end, err := util.MonthBounds(month)
	if err != nil {
		return 0, 0, 0, err
	}

	q := h.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var txs []models.FinanceTransaction
	if err := q.Find(&txs).Error; err != nil {
		return 0, 0, 0, err
	}

	cats := h.categoryMap(userID)
	for _, tx := range txs {
		catType := ""
		if cat, ok := cats[tx.CategoryID]; ok {
			catType = cat.Type
		}
		switch {
		case catType == models.CategoryInvestment:
			invested += absFloat(tx.Amount)
		case tx.Amount > 0 || catType == models.CategoryIncome:
			income += absFloat(tx.Amount)
		default:
			expenses += absFloat(tx.Amount)
		}
	}
	return budget.Round2(income), budget.Round2(expenses), budget.Round2(invested), nil
}

func (h *FinanceHandler) categoryMap(userID string) map[string]models.FinanceCategory {
	var cats []models.FinanceCategory
	h.db.Where("user_id = ?", userID).Find(&cats)
	m := make(map[string]models.FinanceCategory, len(cats))
	for _, cat := range cats {
		m[cat.ID] = cat
	}
	return m
}

// Monthly returns one month's totals with a per-category breakdown.
func (h *FinanceHandler) Monthly(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	month := c.DefaultQuery("month", time.Now().UTC().Format("2006-01"))
	if err := util.ValidateMonth(month); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Month must be YYYY-MM")
		return
	}
	start, end, _ := util.MonthBounds(month)

	q := h.db.Where("user_id = ? AND date BETWEEN ? AND ?", user.ID, start, end)
	if pid := c.Query("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}
	var txs []models.FinanceTransaction
	if err := q.Order("date ASC").Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load transactions")
		return
	}

	cats := h.categoryMap(user.ID)
	byCategory := make(map[string]float64)
	var income, expenses, invested float64
	for _, tx := range txs {
		catName := "Unknown"
		catType := ""
		if cat, ok := cats[tx.CategoryID]; ok {
			catName = cat.Name
			catType = cat.Type
		}
		byCategory[catName] += tx.Amount
		switch {
		case catType == models.CategoryInvestment:
			invested += absFloat(tx.Amount)
		case tx.Amount > 0 || catType == models.CategoryIncome:
			income += absFloat(tx.Amount)
		default:
			expenses += absFloat(tx.Amount)
		}
	}

	breakdown := make([]util.Response, 0, len(byCategory))
	for name, total := range byCategory {
		breakdown = append(breakdown, util.Response{"category": name, "total": budget.Round2(total)})
	}

	util.Success(c, util.Response{
		"month":        month,
		"income":       budget.Round2(income),
		"expenses":     budget.Round2(expenses),
		"invested":     budget.Round2(invested),
		"profit":       budget.Round2(income - expenses),
		"by_category":  breakdown,
		"transactions": txs,
	})
}

// runway computes how many months the liquid cash (bank and cash account
// balances) lasts at the average expense rate of the past months window.
func (h *FinanceHandler) runway(userID, projectID string, months int) float64 {
	if months <= 0 {
		months = 6
	}

	q := h.db.Where("user_id = ? AND type IN ?", userID,
		[]string{models.AccountBank, models.AccountCash})
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var accounts []models.FinanceAccount
	q.Find(&accounts)

	var liquid float64
	for i := range accounts {
		liquid += h.balance(&accounts[i])
	}

	var totalExpenses float64
	now := time.Now().UTC()
	for i := 0; i < months; i++ {
		month := now.AddDate(0, -i, 0).Format("2006-01")
		_, expenses, _, err := h.monthTotals(userID, projectID, month)
		if err == nil {
			totalExpenses += expenses
		}
	}

	burn := totalExpenses / float64(months)
	if burn <= 0 {
		return runwayCap
	}
	runway := liquid / burn
	if runway > runwayCap {
		return runwayCap
	}
	if runway < 0 {
		return 0
	}
	return budget.Round2(runway)
}

// Dashboard aggregates the finance overview: balances by account type,
// net worth, the current month's flows, savings goals and runway.
func (h *FinanceHandler) Dashboard(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	projectID := c.Query("project_id")

	q := h.db.Where("user_id = ?", user.ID)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var accounts []models.FinanceAccount
	if err := q.Order("name ASC").Find(&accounts).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load accounts")
		return
	}

	var netWorth float64
	byType := map[string]float64{}
	accountList := make([]util.Response, 0, len(accounts))
	for i := range accounts {
		bal := h.balance(&accounts[i])
		netWorth += bal
		byType[accounts[i].Type] += bal
		accountList = append(accountList, accountJSON(&accounts[i], bal))
	}
	for t := range byType {
		byType[t] = budget.Round2(byType[t])
	}

	month := time.Now().UTC().Format("2006-01")
	income, expenses, invested, err := h.monthTotals(user.ID, projectID, month)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to compute monthly totals")
		return
	}

	gq := h.db.Where("user_id = ?", user.ID)
	if projectID != "" {
		gq = gq.Where("project_id = ?", projectID)
	}
	var goals []models.FinanceSavingsGoal
	gq.Find(&goals)
	goalList := make([]util.Response, 0, len(goals))
	for i := range goals {
		current, progress := h.goalProgress(&goals[i])
		goalList = append(goalList, goalJSON(&goals[i], current, progress))
	}

	util.Success(c, util.Response{
		"net_worth":        budget.Round2(netWorth),
		"balances_by_type": byType,
		"accounts":         accountList,
		"month":            month,
		"month_income":     income,
		"month_expenses":   expenses,
		"month_invested":   invested,
		"savings_goals":    goalList,
		"runway_months":    h.runway(user.ID, projectID, 6),
	})
}

// Runway exposes the runway figure with a configurable window.
func (h *FinanceHandler) Runway(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}
	months := 6
	if v := c.Query("months"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			months = n
		} else {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Months must be a positive number")
			return
		}
	}
	util.Success(c, util.Response{
		"months_window": months,
		"runway_months": h.runway(user.ID, c.Query("project_id"), months),
	})
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
