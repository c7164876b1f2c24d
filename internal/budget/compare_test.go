package budget

import (
	"testing"

	"github.com/martijnhiemstra/selfsuffient/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAppliesToMonth_Monthly(t *testing.T) {
	item := models.ExpectedItem{Frequency: models.FrequencyMonthly}
	for _, month := range []string{"2025-01", "2025-07", "2026-12"} {
		if !AppliesToMonth(item, month) {
			t.Errorf("monthly item should apply to %s", month)
		}
	}
}

func TestAppliesToMonth_YearlyMonthOnly(t *testing.T) {
	item := models.ExpectedItem{Frequency: models.FrequencyYearly, Month: "07"}
	if !AppliesToMonth(item, "2025-07") {
		t.Error("yearly item with month 07 should apply to 2025-07")
	}
	if AppliesToMonth(item, "2025-08") {
		t.Error("yearly item with month 07 should not apply to 2025-08")
	}
	if !AppliesToMonth(item, "2030-07") {
		t.Error("yearly item with month-only value applies every year")
	}
}

func TestAppliesToMonth_YearlyFullMonth(t *testing.T) {
	item := models.ExpectedItem{Frequency: models.FrequencyYearly, Month: "2025-03"}
	if !AppliesToMonth(item, "2025-03") {
		t.Error("yearly item with full month should apply to its exact month")
	}
	if AppliesToMonth(item, "2026-03") {
		t.Error("yearly item with full YYYY-MM value binds to that year")
	}
}

func TestAppliesToMonth_YearlyDefaultsToJanuary(t *testing.T) {
	item := models.ExpectedItem{Frequency: models.FrequencyYearly}
	if !AppliesToMonth(item, "2025-01") {
		t.Error("yearly item with no month defaults to January")
	}
	if AppliesToMonth(item, "2025-02") {
		t.Error("yearly item with no month should not apply outside January")
	}
}

func TestAppliesToMonth_OneTime(t *testing.T) {
	item := models.ExpectedItem{Frequency: models.FrequencyOneTime, Month: "2025-06"}
	if !AppliesToMonth(item, "2025-06") {
		t.Error("one_time item should apply to its exact month")
	}
	if AppliesToMonth(item, "2025-07") {
		t.Error("one_time item should not apply to any other month")
	}
}

func TestContainsMonth(t *testing.T) {
	p := models.ExpensePeriod{StartMonth: "2025-01", EndMonth: "2025-12"}
	if !ContainsMonth(p, "2025-01") || !ContainsMonth(p, "2025-12") {
		t.Error("period bounds are inclusive")
	}
	if ContainsMonth(p, "2024-12") || ContainsMonth(p, "2026-01") {
		t.Error("months outside the range must not be contained")
	}
}

func TestCompare_CategoryMatch(t *testing.T) {
	items := []models.ExpectedItem{
		{ID: "i1", Name: "Rent", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 900, CategoryID: strPtr("c-rent")},
	}
	txs := []models.FinanceTransaction{
		{ID: "t1", Date: "2025-05-01", Amount: -900, CategoryID: "c-rent", Notes: "May rent"},
		{ID: "t2", Date: "2025-05-03", Amount: -42.50, CategoryID: "c-food"},
	}
	cats := map[string]models.FinanceCategory{
		"c-rent": {ID: "c-rent", Name: "Rent", Type: models.CategoryExpense},
		"c-food": {ID: "c-food", Name: "Groceries", Type: models.CategoryExpense},
	}

	result := Compare("2025-05", nil, items, txs, cats)

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	got := result.Items[0]
	if !got.IsMatched || got.ActualAmount != 900 {
		t.Errorf("rent should match t1 with actual 900, got matched=%v actual=%v", got.IsMatched, got.ActualAmount)
	}
	if len(result.UnmatchedTransactions) != 1 || result.UnmatchedTransactions[0].ID != "t2" {
		t.Errorf("t2 should be the only unmatched transaction, got %+v", result.UnmatchedTransactions)
	}
	if result.UnmatchedTransactions[0].Category != "Groceries" {
		t.Errorf("unmatched transaction should carry its category name, got %q", result.UnmatchedTransactions[0].Category)
	}
}

func TestCompare_ToleranceMatch(t *testing.T) {
	items := []models.ExpectedItem{
		{ID: "i1", Name: "Utilities", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 100},
	}
	txs := []models.FinanceTransaction{
		{ID: "in-range", Date: "2025-05-10", Amount: -110, CategoryID: "c1"},
		{ID: "out-of-range", Date: "2025-05-11", Amount: -130, CategoryID: "c1"},
		{ID: "wrong-sign", Date: "2025-05-12", Amount: 100, CategoryID: "c2"},
	}
	cats := map[string]models.FinanceCategory{
		"c1": {ID: "c1", Name: "Utilities", Type: models.CategoryExpense},
		"c2": {ID: "c2", Name: "Salary", Type: models.CategoryIncome},
	}

	result := Compare("2025-05", nil, items, txs, cats)

	got := result.Items[0]
	if len(got.MatchedTransactions) != 1 || got.MatchedTransactions[0].ID != "in-range" {
		t.Fatalf("only the within-tolerance expense should match, got %+v", got.MatchedTransactions)
	}
	if len(result.UnmatchedTransactions) != 2 {
		t.Errorf("expected 2 unmatched transactions, got %d", len(result.UnmatchedTransactions))
	}
}

func TestCompare_TransactionClaimedOnce(t *testing.T) {
	catID := "c-sub"
	items := []models.ExpectedItem{
		{ID: "i1", Name: "Streaming", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 15, CategoryID: &catID},
		{ID: "i2", Name: "Also streaming", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 15, CategoryID: &catID},
	}
	txs := []models.FinanceTransaction{
		{ID: "t1", Date: "2025-05-02", Amount: -15, CategoryID: catID},
	}
	cats := map[string]models.FinanceCategory{
		catID: {ID: catID, Name: "Subscriptions", Type: models.CategoryExpense},
	}

	result := Compare("2025-05", nil, items, txs, cats)

	matchedCount := 0
	for _, item := range result.Items {
		matchedCount += len(item.MatchedTransactions)
	}
	if matchedCount != 1 {
		t.Errorf("a transaction must be claimed by exactly one item, got %d claims", matchedCount)
	}
}

func TestCompare_ActualTotalsCoverAllTransactions(t *testing.T) {
	txs := []models.FinanceTransaction{
		{ID: "t1", Date: "2025-05-01", Amount: 2000, CategoryID: "c-salary"},
		{ID: "t2", Date: "2025-05-05", Amount: -300, CategoryID: "c-food"},
		{ID: "t3", Date: "2025-05-20", Amount: -50, CategoryID: "missing"},
	}
	cats := map[string]models.FinanceCategory{
		"c-salary": {ID: "c-salary", Name: "Salary", Type: models.CategoryIncome},
		"c-food":   {ID: "c-food", Name: "Groceries", Type: models.CategoryExpense},
	}

	result := Compare("2025-05", nil, nil, txs, cats)

	if result.ActualIncome != 2000 {
		t.Errorf("actual income = %v, want 2000", result.ActualIncome)
	}
	if result.ActualExpenses != 350 {
		t.Errorf("actual expenses = %v, want 350", result.ActualExpenses)
	}
	if result.ActualProfit != 1650 {
		t.Errorf("actual profit = %v, want 1650", result.ActualProfit)
	}
}

func TestCompare_ItemSortOrder(t *testing.T) {
	rentID := "c-rent"
	items := []models.ExpectedItem{
		{ID: "small-unmatched", Name: "A", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 10},
		{ID: "big-unmatched", Name: "B", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 500},
		{ID: "matched", Name: "Rent", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyMonthly, Amount: 900, CategoryID: &rentID},
	}
	txs := []models.FinanceTransaction{
		{ID: "t1", Date: "2025-05-01", Amount: -900, CategoryID: rentID},
	}
	cats := map[string]models.FinanceCategory{
		rentID: {ID: rentID, Name: "Rent", Type: models.CategoryExpense},
	}

	result := Compare("2025-05", nil, items, txs, cats)

	want := []string{"big-unmatched", "small-unmatched", "matched"}
	if len(result.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(result.Items))
	}
	for i, id := range want {
		if result.Items[i].ExpectedItemID != id {
			t.Errorf("position %d: got %s, want %s", i, result.Items[i].ExpectedItemID, id)
		}
	}
}

func TestCompare_SkipsNonApplicableItems(t *testing.T) {
	items := []models.ExpectedItem{
		{ID: "dec-only", Name: "Insurance", ItemType: models.CategoryExpense,
			Frequency: models.FrequencyYearly, Amount: 600, Month: "12"},
	}
	result := Compare("2025-05", nil, items, nil, nil)
	if len(result.Items) != 0 {
		t.Errorf("yearly December item must not appear in May, got %d items", len(result.Items))
	}
	if result.ExpectedExpenses != 0 {
		t.Errorf("expected expenses should be 0, got %v", result.ExpectedExpenses)
	}
}

func TestPeriodTotals(t *testing.T) {
	items := []models.ExpectedItem{
		{ItemType: models.CategoryIncome, Frequency: models.FrequencyMonthly, Amount: 2500},
		{ItemType: models.CategoryExpense, Frequency: models.FrequencyMonthly, Amount: 900},
		{ItemType: models.CategoryExpense, Frequency: models.FrequencyYearly, Amount: 1200},
		{ItemType: models.CategoryExpense, Frequency: models.FrequencyOneTime, Amount: 5000},
	}
	income, expenses := PeriodTotals(items)
	if income != 2500 {
		t.Errorf("income = %v, want 2500", income)
	}
	if expenses != 1000 {
		t.Errorf("expenses = %v, want 1000 (900 monthly + 1200/12 yearly, one_time excluded)", expenses)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.005); got != 10.01 {
		t.Errorf("Round2(10.005) = %v, want 10.01", got)
	}
	if got := Round2(-2.345); got != -2.35 {
		t.Errorf("Round2(-2.345) = %v, want -2.35", got)
	}
}
