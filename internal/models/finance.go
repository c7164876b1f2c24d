package models

// Account types.
const (
	AccountBank   = "bank"
	AccountCash   = "cash"
	AccountCrypto = "crypto"
	AccountAsset  = "asset"
)

// Category types.
const (
	CategoryIncome     = "income"
	CategoryExpense    = "expense"
	CategoryInvestment = "investment"
)

// FinanceAccount holds a starting balance; the current balance is never
// stored, always derived as starting_balance + sum of linked transactions.
type FinanceAccount struct {
	ID              string  `gorm:"primaryKey;size:36" json:"id"`
	UserID          string  `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID       string  `gorm:"index;size:36;not null" json:"project_id"`
	Name            string  `gorm:"size:128;not null" json:"name"`
	Type            string  `gorm:"size:16;index;not null" json:"type"`
	StartingBalance float64 `json:"starting_balance"`
	Notes           string  `gorm:"type:text" json:"notes"`
	CreatedAt       string  `gorm:"size:40" json:"created_at"`
	UpdatedAt       string  `gorm:"size:40" json:"updated_at"`
}

// FinanceCategory classifies transactions as income/expense/investment.
type FinanceCategory struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	UserID    string `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID string `gorm:"index;size:36;not null" json:"project_id"`
	Name      string `gorm:"size:64;not null" json:"name"`
	Type      string `gorm:"size:16;index;not null" json:"type"`
	CreatedAt string `gorm:"size:40" json:"created_at"`
}

// FinanceTransaction is a signed amount: positive = income, negative =
// expense. The sign is advisory; the category type wins in aggregates.
type FinanceTransaction struct {
	ID                  string  `gorm:"primaryKey;size:36" json:"id"`
	UserID              string  `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID           string  `gorm:"index;size:36;not null" json:"project_id"`
	AccountID           string  `gorm:"index;size:36;not null" json:"account_id"`
	CategoryID          string  `gorm:"index;size:36;not null" json:"category_id"`
	Date                string  `gorm:"size:10;index;not null" json:"date"`
	Amount              float64 `json:"amount"`
	Notes               string  `gorm:"type:text" json:"notes"`
	LinkedTransactionID *string `gorm:"size:36" json:"linked_transaction_id"`
	SavingsGoalID       *string `gorm:"index;size:36" json:"savings_goal_id"`
	CreatedAt           string  `gorm:"size:40" json:"created_at"`
	UpdatedAt           string  `gorm:"size:40" json:"updated_at"`
}

// FinanceRecurring is a template for a monthly/yearly transaction.
// NextExecutionDate is stamped at creation and never advanced; there is no
// materializer job.
type FinanceRecurring struct {
	ID                string  `gorm:"primaryKey;size:36" json:"id"`
	UserID            string  `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID         string  `gorm:"index;size:36;not null" json:"project_id"`
	AccountID         string  `gorm:"size:36;not null" json:"account_id"`
	CategoryID        string  `gorm:"size:36;not null" json:"category_id"`
	Name              string  `gorm:"size:128;not null" json:"name"`
	Amount            float64 `json:"amount"`
	Frequency         string  `gorm:"size:16;not null" json:"frequency"` // monthly / yearly
	StartDate         string  `gorm:"size:10" json:"start_date"`
	NextExecutionDate string  `gorm:"size:10" json:"next_execution_date"`
	Active            bool    `json:"active"`
	CreatedAt         string  `gorm:"size:40" json:"created_at"`
	UpdatedAt         string  `gorm:"size:40" json:"updated_at"`
}

// FinanceSavingsGoal tracks a target amount; current progress is derived
// from linked transactions, never stored.
type FinanceSavingsGoal struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	UserID       string  `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID    string  `gorm:"index;size:36;not null" json:"project_id"`
	Name         string  `gorm:"size:128;not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	TargetAmount float64 `json:"target_amount"`
	CreatedAt    string  `gorm:"size:40" json:"created_at"`
	UpdatedAt    string  `gorm:"size:40" json:"updated_at"`
}
