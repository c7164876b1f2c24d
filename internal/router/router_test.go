package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/martijnhiemstra/selfsuffient/internal/config"
	"github.com/martijnhiemstra/selfsuffient/internal/database"
	"github.com/martijnhiemstra/selfsuffient/internal/models"
	"github.com/martijnhiemstra/selfsuffient/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	user   *models.User
	token  string
}

var testDBCounter int

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDBCounter++
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireHours = 1
	cfg.App.UploadsDir = t.TempDir()
	cfg.App.MaxUploadMB = 5
	cfg.App.EncryptionKey = "test-encryption-key"

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	now := time.Now().UTC().Format(time.RFC3339)
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        "owner@example.com",
		PasswordHash: string(hash),
		Name:         "Owner",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := util.GenerateToken(cfg.JWT.Secret, user.ID, user.Email, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	return &testServer{engine: New(db, cfg), db: db, cfg: cfg, user: user, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	if envelope.Code != 0 {
		t.Fatalf("business code = %d, body %s", envelope.Code, w.Body.String())
	}
	return envelope.Data
}

func (s *testServer) createProject(t *testing.T, name string, public bool) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/projects",
		map[string]interface{}{"name": name, "is_public": public}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create project: status %d, body %s", w.Code, w.Body.String())
	}
	return decodeData(t, w)["id"].(string)
}

func (s *testServer) createAccount(t *testing.T, projectID, name, accType string, starting float64) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/finance/accounts", map[string]interface{}{
		"project_id": projectID, "name": name, "type": accType,
		"starting_balance": starting,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create account: status %d, body %s", w.Code, w.Body.String())
	}
	return decodeData(t, w)["id"].(string)
}

func (s *testServer) createCategory(t *testing.T, projectID, name, catType string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/finance/categories", map[string]interface{}{
		"project_id": projectID, "name": name, "type": catType,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create category: status %d, body %s", w.Code, w.Body.String())
	}
	return decodeData(t, w)["category"].(map[string]interface{})["id"].(string)
}

func (s *testServer) createTransaction(t *testing.T, accountID, categoryID, date string, amount float64) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/finance/transactions", map[string]interface{}{
		"account_id": accountID, "category_id": categoryID,
		"date": date, "amount": amount,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create transaction: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestLogin_IssuesUsableToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "owner@example.com", "password": "password123",
	}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	token, _ := data["access_token"].(string)
	if token == "" {
		t.Fatal("login must return an access token")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me with fresh token: status %d", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "owner@example.com", "password": "wrong",
	}, false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status %d, want 401", w.Code)
	}
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/projects", nil, false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated list: status %d, want 401", w.Code)
	}
}

func TestAccountBalance_DerivedFromTransactions(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Farm", false)
	accountID := s.createAccount(t, projectID, "Checking", "bank", 100)
	catID := s.createCategory(t, projectID, "Groceries", "expense")

	s.createTransaction(t, accountID, catID, "2025-05-01", -40)
	s.createTransaction(t, accountID, catID, "2025-05-02", -10.5)

	w := s.do(t, http.MethodGet, "/api/finance/accounts", nil, true)
	data := decodeData(t, w)
	accounts := data["accounts"].([]interface{})
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	balance := accounts[0].(map[string]interface{})["balance"].(float64)
	if balance != 49.5 {
		t.Errorf("balance = %v, want 49.5 (100 - 40 - 10.5)", balance)
	}
}

func TestProjectDelete_FinanceSurvives(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Homestead", false)

	w := s.do(t, http.MethodPost, "/api/projects/"+projectID+"/diary",
		map[string]string{"title": "First day"}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create diary: status %d", w.Code)
	}

	accountID := s.createAccount(t, projectID, "Cash box", "cash", 0)
	catID := s.createCategory(t, projectID, "Income", "income")
	s.createTransaction(t, accountID, catID, "2025-05-01", 200)

	w = s.do(t, http.MethodDelete, "/api/projects/"+projectID, nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("delete project: status %d, body %s", w.Code, w.Body.String())
	}

	var diaryCount, txCount, accountCount int64
	s.db.Model(&models.DiaryEntry{}).Where("project_id = ?", projectID).Count(&diaryCount)
	s.db.Model(&models.FinanceTransaction{}).Where("project_id = ?", projectID).Count(&txCount)
	s.db.Model(&models.FinanceAccount{}).Where("project_id = ?", projectID).Count(&accountCount)

	if diaryCount != 0 {
		t.Errorf("diary entries should be cascade-deleted, %d remain", diaryCount)
	}
	if txCount != 1 || accountCount != 1 {
		t.Errorf("finance records must survive project deletion, tx=%d accounts=%d", txCount, accountCount)
	}
}

func TestSavingsGoal_ProgressDerivedAndCapped(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Savings", false)
	accountID := s.createAccount(t, projectID, "Bank", "bank", 0)
	catID := s.createCategory(t, projectID, "Income", "income")

	w := s.do(t, http.MethodPost, "/api/finance/savings-goals", map[string]interface{}{
		"project_id": projectID, "name": "Greenhouse", "target_amount": 1000.0,
	}, true)
	goalID := decodeData(t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/finance/transactions", map[string]interface{}{
		"account_id": accountID, "category_id": catID,
		"date": "2025-05-01", "amount": 250.0, "savings_goal_id": goalID,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("linked transaction: status %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/finance/savings-goals", nil, true)
	goals := decodeData(t, w)["goals"].([]interface{})
	goal := goals[0].(map[string]interface{})
	if goal["progress"].(float64) != 25 {
		t.Errorf("progress = %v, want 25", goal["progress"])
	}

	w = s.do(t, http.MethodPost, "/api/finance/transactions", map[string]interface{}{
		"account_id": accountID, "category_id": catID,
		"date": "2025-05-02", "amount": 2000.0, "savings_goal_id": goalID,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("second linked transaction: status %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/finance/savings-goals", nil, true)
	goal = decodeData(t, w)["goals"].([]interface{})[0].(map[string]interface{})
	if goal["progress"].(float64) != 100 {
		t.Errorf("progress over target must cap at 100, got %v", goal["progress"])
	}
}

func TestPublicBlog_ViewsOnDetailOnly(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Open farm", true)

	w := s.do(t, http.MethodPost, "/api/projects/"+projectID+"/blog", map[string]interface{}{
		"title": "Hello", "is_public": true,
	}, true)
	entryID := decodeData(t, w)["entry"].(map[string]interface{})["id"].(string)

	w = s.do(t, http.MethodGet, "/api/public/projects/"+projectID+"/blog", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("public blog list: status %d", w.Code)
	}

	var entry models.BlogEntry
	s.db.First(&entry, "id = ?", entryID)
	if entry.Views != 0 {
		t.Errorf("list must not bump views, got %d", entry.Views)
	}

	w = s.do(t, http.MethodGet, "/api/public/projects/"+projectID+"/blog/"+entryID, nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("public blog detail: status %d", w.Code)
	}
	s.db.First(&entry, "id = ?", entryID)
	if entry.Views != 1 {
		t.Errorf("detail must bump views to 1, got %d", entry.Views)
	}
}

func TestPublicProject_PrivateStaysHidden(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Private plot", false)

	w := s.do(t, http.MethodGet, "/api/public/projects/"+projectID, nil, false)
	if w.Code != http.StatusNotFound {
		t.Errorf("private project via public route: status %d, want 404", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/public/projects", nil, false)
	projects := decodeData(t, w)["projects"].([]interface{})
	if len(projects) != 0 {
		t.Errorf("private projects must not be listed publicly, got %d", len(projects))
	}
}

func TestImportConfirm_MapsCategoriesByName(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Books", false)
	accountID := s.createAccount(t, projectID, "Bank", "bank", 0)
	defaultCat := s.createCategory(t, projectID, "Uncategorized", "expense")
	groceriesCat := s.createCategory(t, projectID, "Groceries", "expense")

	w := s.do(t, http.MethodPost, "/api/import/confirm", map[string]interface{}{
		"account_id":          accountID,
		"default_category_id": defaultCat,
		"transactions": []map[string]interface{}{
			{"date": "2025-05-01", "amount": -42.5, "description": "Supermarket", "category": "groceries"},
			{"date": "2025-05-02", "amount": -10.0, "description": "Mystery"},
			{"date": "bad-date", "amount": -1.0, "description": "Broken"},
		},
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: status %d, body %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["imported"].(float64) != 2 || data["skipped"].(float64) != 1 {
		t.Errorf("imported/skipped = %v/%v, want 2/1", data["imported"], data["skipped"])
	}

	var matched models.FinanceTransaction
	s.db.First(&matched, "notes = ?", "Supermarket")
	if matched.CategoryID != groceriesCat {
		t.Errorf("named category must match case-insensitively")
	}
	var fallback models.FinanceTransaction
	s.db.First(&fallback, "notes = ?", "Mystery")
	if fallback.CategoryID != defaultCat {
		t.Errorf("unnamed rows must get the default category")
	}
}

func TestBudgetComparison_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Budgeted", false)
	accountID := s.createAccount(t, projectID, "Bank", "bank", 0)
	rentCat := s.createCategory(t, projectID, "Rent", "expense")

	w := s.do(t, http.MethodPost, "/api/budget/periods", map[string]interface{}{
		"project_id": projectID, "name": "2025",
		"start_month": "2025-01", "end_month": "2025-12",
	}, true)
	periodID := decodeData(t, w)["id"].(string)

	w = s.do(t, http.MethodPost, "/api/budget/periods/"+periodID+"/items", map[string]interface{}{
		"name": "Rent", "amount": 900.0, "item_type": "expense",
		"frequency": "monthly", "category_id": rentCat,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create item: status %d, body %s", w.Code, w.Body.String())
	}

	s.createTransaction(t, accountID, rentCat, "2025-05-01", -900)

	w = s.do(t, http.MethodGet, "/api/budget/comparison?month=2025-05", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("comparison: status %d, body %s", w.Code, w.Body.String())
	}
	comparison := decodeData(t, w)["comparison"].(map[string]interface{})
	if comparison["expected_expenses"].(float64) != 900 {
		t.Errorf("expected_expenses = %v, want 900", comparison["expected_expenses"])
	}
	if comparison["actual_expenses"].(float64) != 900 {
		t.Errorf("actual_expenses = %v, want 900", comparison["actual_expenses"])
	}
	items := comparison["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].(map[string]interface{})["is_matched"].(bool) != true {
		t.Error("rent item should be matched")
	}
}

func TestGalleryUpload_RejectsNonImage(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Pics", false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "notes.txt")
	fw.Write([]byte("plain text, not an image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+projectID+"/gallery/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("text upload: status %d, want 400", w.Code)
	}
}

func TestGalleryUpload_AcceptsPNG(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Pics", false)

	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
		make([]byte, 64)...)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "photo.png")
	fw.Write(png)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+projectID+"/gallery/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("png upload: status %d, body %s", w.Code, w.Body.String())
	}
	var count int64
	s.db.Model(&models.GalleryImage{}).Where("project_id = ?", projectID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 stored image, got %d", count)
	}
}

func TestFinanceCreate_ForeignProjectRejected(t *testing.T) {
	s := newTestServer(t)
	now := time.Now().UTC().Format(time.RFC3339)

	other := &models.User{
		ID: uuid.NewString(), Email: "other@example.com",
		PasswordHash: "irrelevant", Name: "Other",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.db.Create(other).Error; err != nil {
		t.Fatalf("seed other user: %v", err)
	}
	foreign := &models.Project{
		ID: uuid.NewString(), UserID: other.ID, Name: "Theirs",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.db.Create(foreign).Error; err != nil {
		t.Fatalf("seed foreign project: %v", err)
	}

	cases := []struct {
		name string
		path string
		body map[string]interface{}
	}{
		{"account", "/api/finance/accounts", map[string]interface{}{
			"project_id": foreign.ID, "name": "Sneaky", "type": "bank"}},
		{"category", "/api/finance/categories", map[string]interface{}{
			"project_id": foreign.ID, "name": "Sneaky", "type": "expense"}},
		{"default categories", "/api/finance/categories/defaults", map[string]interface{}{
			"project_id": foreign.ID}},
		{"savings goal", "/api/finance/savings-goals", map[string]interface{}{
			"project_id": foreign.ID, "name": "Sneaky", "target_amount": 100.0}},
		{"budget period", "/api/budget/periods", map[string]interface{}{
			"project_id": foreign.ID, "name": "Sneaky",
			"start_month": "2025-01", "end_month": "2025-12"}},
	}
	for _, tc := range cases {
		w := s.do(t, http.MethodPost, tc.path, tc.body, true)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s with foreign project: status %d, want 404", tc.name, w.Code)
		}
	}

	var count int64
	s.db.Model(&models.FinanceAccount{}).Where("project_id = ?", foreign.ID).Count(&count)
	if count != 0 {
		t.Errorf("foreign project gained %d accounts", count)
	}
}

func TestDashboardData_AcrossProjects(t *testing.T) {
	s := newTestServer(t)
	farmID := s.createProject(t, "Farm", false)
	shopID := s.createProject(t, "Shop", false)

	today := time.Now().UTC().Format("2006-01-02")
	for _, projectID := range []string{farmID, shopID} {
		w := s.do(t, http.MethodPost, "/api/projects/"+projectID+"/tasks",
			map[string]interface{}{
				"title": "Feed animals", "task_datetime": today + "T08:00:00Z",
			}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("create task: status %d, body %s", w.Code, w.Body.String())
		}
	}
	w := s.do(t, http.MethodPost, "/api/projects/"+farmID+"/routines",
		map[string]interface{}{"routine_type": "startup", "title": "Open gates"}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("create routine task: status %d, body %s", w.Code, w.Body.String())
	}

	data := decodeData(t, s.do(t, http.MethodGet, "/api/dashboard/data", nil, true))
	tasks := data["today_tasks"].([]interface{})
	if len(tasks) != 2 {
		t.Fatalf("today_tasks = %d, want 2", len(tasks))
	}
	names := map[string]bool{}
	for _, raw := range tasks {
		names[raw.(map[string]interface{})["project_name"].(string)] = true
	}
	if !names["Farm"] || !names["Shop"] {
		t.Errorf("today_tasks project names = %v, want Farm and Shop", names)
	}
	startup := data["incomplete_startup_tasks"].([]interface{})
	if len(startup) != 1 {
		t.Fatalf("incomplete_startup_tasks = %d, want 1", len(startup))
	}
	if got := startup[0].(map[string]interface{})["project_name"]; got != "Farm" {
		t.Errorf("startup step project_name = %v, want Farm", got)
	}
	if data["projects_count"].(float64) != 2 {
		t.Errorf("projects_count = %v, want 2", data["projects_count"])
	}
}

func TestDashboardAllTasks_RangeFilter(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Planner", false)

	for _, dt := range []string{"2025-03-01T09:00:00Z", "2025-06-01T09:00:00Z"} {
		w := s.do(t, http.MethodPost, "/api/projects/"+projectID+"/tasks",
			map[string]interface{}{"title": "Plant", "task_datetime": dt}, true)
		if w.Code != http.StatusOK {
			t.Fatalf("create task: status %d, body %s", w.Code, w.Body.String())
		}
	}

	data := decodeData(t, s.do(t, http.MethodGet,
		"/api/dashboard/all-tasks?start_date=2025-01-01&end_date=2025-04-01", nil, true))
	if got := data["total"].(float64); got != 1 {
		t.Fatalf("filtered total = %v, want 1", got)
	}
	task := data["tasks"].([]interface{})[0].(map[string]interface{})
	if task["task_datetime"] != "2025-03-01T09:00:00Z" {
		t.Errorf("kept task datetime = %v", task["task_datetime"])
	}
	if task["project_name"] != "Planner" {
		t.Errorf("project_name = %v, want Planner", task["project_name"])
	}

	all := decodeData(t, s.do(t, http.MethodGet, "/api/dashboard/all-tasks", nil, true))
	if got := all["total"].(float64); got != 2 {
		t.Errorf("unfiltered total = %v, want 2", got)
	}
}

func TestFileServe_PrivateFolderImageHidden(t *testing.T) {
	s := newTestServer(t)
	projectID := s.createProject(t, "Open yard", true)

	folderData := decodeData(t, s.do(t, http.MethodPost,
		"/api/projects/"+projectID+"/gallery/folders",
		map[string]interface{}{"name": "Drafts", "is_public": false}, true))
	folderID := folderData["folder"].(map[string]interface{})["id"].(string)

	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
		make([]byte, 64)...)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("folder_id", folderID)
	fw, _ := mw.CreateFormFile("file", "draft.png")
	fw.Write(png)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost,
		"/api/projects/"+projectID+"/gallery/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: status %d, body %s", w.Code, w.Body.String())
	}

	var image models.GalleryImage
	if err := s.db.First(&image, "project_id = ?", projectID).Error; err != nil {
		t.Fatalf("load image row: %v", err)
	}

	anon := s.do(t, http.MethodGet, "/api/files/"+image.Filename, nil, false)
	if anon.Code != http.StatusUnauthorized {
		t.Errorf("anonymous fetch of private-folder image: status %d, want 401", anon.Code)
	}
	owner := s.do(t, http.MethodGet, "/api/files/"+image.Filename, nil, true)
	if owner.Code != http.StatusOK {
		t.Errorf("owner fetch: status %d, want 200", owner.Code)
	}
}

func TestHealth_OK(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/health", nil, false)
	if w.Code != http.StatusOK {
		t.Errorf("health: status %d, want 200", w.Code)
	}
}
