// Package budget implements the monthly budget-vs-actual reconciliation.
// The engine is pure: callers load the period, expected items, transactions
// and categories, and the comparison runs single-pass in memory.
package budget

import (
	"sort"

	"github.com/martijnhiemstra/selfsuffient/internal/models"

	"github.com/shopspring/decimal"
)

// matchTolerance is the relative amount tolerance used when matching
// transactions against category-less expected items.
const matchTolerance = 0.15

// MatchedTransaction is a transaction claimed by an expected item.
type MatchedTransaction struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

// UnmatchedTransaction is a transaction no expected item claimed.
type UnmatchedTransaction struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Notes    string  `json:"notes"`
	Category string  `json:"category"`
}

// Item is the per-expected-item match result.
type Item struct {
	ExpectedItemID      string               `json:"expected_item_id"`
	Name                string               `json:"name"`
	ItemType            string               `json:"item_type"`
	Frequency           string               `json:"frequency"`
	ExpectedAmount      float64              `json:"expected_amount"`
	ActualAmount        float64              `json:"actual_amount"`
	Difference          float64              `json:"difference"`
	IsMatched           bool                 `json:"is_matched"`
	MatchedTransactions []MatchedTransaction `json:"matched_transactions"`
}

// Comparison is the full reconciliation result for one month.
type Comparison struct {
	Month                 string                 `json:"month"`
	PeriodID              string                 `json:"period_id,omitempty"`
	PeriodName            string                 `json:"period_name,omitempty"`
	ExpectedIncome        float64                `json:"expected_income"`
	ExpectedExpenses      float64                `json:"expected_expenses"`
	ExpectedProfit        float64                `json:"expected_profit"`
	ActualIncome          float64                `json:"actual_income"`
	ActualExpenses        float64                `json:"actual_expenses"`
	ActualProfit          float64                `json:"actual_profit"`
	IncomeDifference      float64                `json:"income_difference"`
	ExpenseDifference     float64                `json:"expense_difference"`
	ProfitDifference      float64                `json:"profit_difference"`
	Items                 []Item                 `json:"items"`
	UnmatchedTransactions []UnmatchedTransaction `json:"unmatched_transactions"`
}

// Round2 rounds to two decimals via decimal arithmetic.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// AppliesToMonth reports whether an expected item counts for the given
// YYYY-MM month: monthly items always apply; yearly items apply when their
// stored month ("MM" or "YYYY-MM") names the month component; one_time items
// require an exact YYYY-MM match.
func AppliesToMonth(item models.ExpectedItem, month string) bool {
	switch item.Frequency {
	case models.FrequencyMonthly:
		return true
	case models.FrequencyYearly:
		itemMonth := item.Month
		if itemMonth == "" {
			itemMonth = "01"
		}
		if len(itemMonth) == 2 {
			return len(month) == 7 && itemMonth == month[5:7]
		}
		return itemMonth == month
	case models.FrequencyOneTime:
		return item.Month == month
	}
	return false
}

// ContainsMonth reports whether a period's inclusive [start, end] month
// range covers the given month. Fixed-width YYYY-MM makes lexicographic
// comparison correct.
func ContainsMonth(p models.ExpensePeriod, month string) bool {
	return p.StartMonth <= month && month <= p.EndMonth
}

// Compare reconciles expected items against the month's transactions.
// Matching is greedy in item iteration order: each item first claims
// unclaimed transactions with its exact category id, or, for category-less
// items, unclaimed transactions with the same income/expense sign whose
// absolute amount is within 15% of the expected amount. A transaction is
// claimed by at most one item; iteration order decides contested claims.
func Compare(month string, period *models.ExpensePeriod, items []models.ExpectedItem,
	txs []models.FinanceTransaction, cats map[string]models.FinanceCategory) Comparison {

	result := Comparison{Month: month}
	if period != nil {
		result.PeriodID = period.ID
		result.PeriodName = period.Name
	}

	var expectedIncome, expectedExpenses float64
	claimed := make(map[string]bool)

	resultItems := make([]Item, 0, len(items))
	for _, item := range items {
		if !AppliesToMonth(item, month) {
			continue
		}

		if item.ItemType == models.CategoryIncome {
			expectedIncome += item.Amount
		} else {
			expectedExpenses += item.Amount
		}

		var matched []MatchedTransaction
		var actual float64

		for _, tx := range txs {
			if claimed[tx.ID] {
				continue
			}

			ok := false
			if item.CategoryID != nil {
				ok = tx.CategoryID == *item.CategoryID
			} else {
				txIsIncome := tx.Amount > 0
				itemIsIncome := item.ItemType == models.CategoryIncome
				diff := abs(abs(tx.Amount) - item.Amount)
				ok = txIsIncome == itemIsIncome && diff <= item.Amount*matchTolerance
			}
			if !ok {
				continue
			}

			matched = append(matched, MatchedTransaction{
				ID:     tx.ID,
				Date:   tx.Date,
				Amount: tx.Amount,
				Notes:  tx.Notes,
			})
			actual += abs(tx.Amount)
			claimed[tx.ID] = true
		}

		resultItems = append(resultItems, Item{
			ExpectedItemID:      item.ID,
			Name:                item.Name,
			ItemType:            item.ItemType,
			Frequency:           item.Frequency,
			ExpectedAmount:      item.Amount,
			ActualAmount:        Round2(actual),
			Difference:          Round2(actual - item.Amount),
			IsMatched:           len(matched) > 0,
			MatchedTransactions: matched,
		})
	}

	// Actual totals cover every transaction in the month, matched or not.
	var actualIncome, actualExpenses float64
	unmatched := make([]UnmatchedTransaction, 0)

	for _, tx := range txs {
		cat, hasCat := cats[tx.CategoryID]
		catType := models.CategoryExpense
		catName := "Unknown"
		if hasCat {
			catType = cat.Type
			catName = cat.Name
		}

		if tx.Amount > 0 || catType == models.CategoryIncome {
			actualIncome += abs(tx.Amount)
		} else {
			actualExpenses += abs(tx.Amount)
		}

		if !claimed[tx.ID] {
			unmatched = append(unmatched, UnmatchedTransaction{
				ID:       tx.ID,
				Date:     tx.Date,
				Amount:   tx.Amount,
				Notes:    tx.Notes,
				Category: catName,
			})
		}
	}

	// Unmatched items first, then by expected amount descending.
	sort.SliceStable(resultItems, func(i, j int) bool {
		if resultItems[i].IsMatched != resultItems[j].IsMatched {
			return !resultItems[i].IsMatched
		}
		return resultItems[i].ExpectedAmount > resultItems[j].ExpectedAmount
	})

	result.ExpectedIncome = Round2(expectedIncome)
	result.ExpectedExpenses = Round2(expectedExpenses)
	result.ExpectedProfit = Round2(expectedIncome - expectedExpenses)
	result.ActualIncome = Round2(actualIncome)
	result.ActualExpenses = Round2(actualExpenses)
	result.ActualProfit = Round2(actualIncome - actualExpenses)
	result.IncomeDifference = Round2(actualIncome - expectedIncome)
	result.ExpenseDifference = Round2(actualExpenses - expectedExpenses)
	result.ProfitDifference = Round2((actualIncome - actualExpenses) - (expectedIncome - expectedExpenses))
	result.Items = resultItems
	result.UnmatchedTransactions = unmatched

	return result
}

// PeriodTotals sums a period's expected items into average monthly income
// and expenses; yearly items are spread over twelve months, one_time items
// are excluded.
func PeriodTotals(items []models.ExpectedItem) (income, expenses float64) {
	for _, item := range items {
		amount := item.Amount
		switch item.Frequency {
		case models.FrequencyMonthly:
		case models.FrequencyYearly:
			amount = amount / 12
		default:
			continue
		}
		if item.ItemType == models.CategoryIncome {
			income += amount
		} else {
			expenses += amount
		}
	}
	return Round2(income), Round2(expenses)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
