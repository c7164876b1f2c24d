package models

// Expected item frequencies.
const (
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
	FrequencyOneTime = "one_time"
)

// ExpensePeriod is a named month range (inclusive, YYYY-MM) grouping
// expected items, e.g. "2024" or "First Year on Farm".
type ExpensePeriod struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	UserID     string `gorm:"index;size:36;not null" json:"user_id"`
	ProjectID  string `gorm:"index;size:36;not null" json:"project_id"`
	Name       string `gorm:"size:128;not null" json:"name"`
	StartMonth string `gorm:"size:7;not null" json:"start_month"`
	EndMonth   string `gorm:"size:7;not null" json:"end_month"`
	Notes      string `gorm:"type:text" json:"notes"`
	CreatedAt  string `gorm:"size:40" json:"created_at"`
	UpdatedAt  string `gorm:"size:40" json:"updated_at"`
}

// ExpectedItem is a planned income/expense line within a period. Amount is
// always stored positive; ItemType decides the side. Month ("MM" or
// "YYYY-MM") narrows yearly and one_time items to a specific month.
type ExpectedItem struct {
	ID         string  `gorm:"primaryKey;size:36" json:"id"`
	UserID     string  `gorm:"index;size:36;not null" json:"user_id"`
	PeriodID   string  `gorm:"index;size:36;not null" json:"period_id"`
	ProjectID  string  `gorm:"index;size:36;not null" json:"project_id"`
	Name       string  `gorm:"size:128;not null" json:"name"`
	Amount     float64 `json:"amount"`
	ItemType   string  `gorm:"size:16;not null" json:"item_type"` // income / expense
	Frequency  string  `gorm:"size:16;not null" json:"frequency"` // monthly / yearly / one_time
	CategoryID *string `gorm:"size:36" json:"category_id"`
	Month      string  `gorm:"size:7" json:"month"`
	Notes      string  `gorm:"type:text" json:"notes"`
	CreatedAt  string  `gorm:"size:40" json:"created_at"`
	UpdatedAt  string  `gorm:"size:40" json:"updated_at"`
}
