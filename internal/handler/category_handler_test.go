package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/philiptitus/bridger/internal/testutil"
	"github.com/shopspring/decimal"
)

type categoryHandlerFixture struct {
	budgetRepo   *testutil.MockBudgetRepository
	categoryRepo *testutil.MockCategoryRepository
	savingsRepo  *testutil.MockSavingsRepository
	oracle       *testutil.MockOracle
	handler      *CategoryHandler
}

func newCategoryHandlerFixture() *categoryHandlerFixture {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	savingsRepo := testutil.NewMockSavingsRepository()
	store := testutil.NewMockReconcileStore(categoryRepo, savingsRepo)
	oracle := &testutil.MockOracle{}
	reconcileService := service.NewReconcileService(budgetRepo, categoryRepo, savingsRepo, store, oracle)
	categoryService := service.NewCategoryService(categoryRepo, budgetRepo, savingsRepo)
	return &categoryHandlerFixture{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		savingsRepo:  savingsRepo,
		oracle:       oracle,
		handler:      NewCategoryHandler(reconcileService, categoryService),
	}
}

func (f *categoryHandlerFixture) addBudget(userID uuid.UUID, ceiling int64) {
	f.budgetRepo.AddBudget(&domain.Budget{
		ID:            1,
		IncomeID:      1,
		Name:          "August",
		TotalExpenses: decimal.NewFromInt(ceiling),
		OwnerID:       userID,
	})
	f.categoryRepo.Owners[1] = userID
}

func TestCreateCategory_RebalancedSet(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)
	f.oracle.Responses = []string{"Food: 150\nExtra: 850"}

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "description": "Add a Food category with amount 150", "name": "Food", "amount": "150"}`, userID)

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.ReconcileResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(result.Categories) != 2 {
		t.Errorf("Expected 2 categories after rebalance, got %d", len(result.Categories))
	}
	if !result.Exact {
		t.Error("Expected exact reconciliation")
	}
}

func TestCreateCategory_CeilingExceeded(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)
	f.oracle.Responses = []string{"Food: 1200"}

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "description": "Add a Food category with amount 1200", "name": "Food", "amount": "1200"}`, userID)

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateCategory_UnparsableOracle(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)
	f.oracle.Responses = []string{"I cannot help with that."}

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "description": "Add a Food category with amount 150", "name": "Food", "amount": "150"}`, userID)

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", rec.Code)
	}
}

func TestCreateCategory_NonPositiveAmount(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "description": "Add Food", "name": "Food", "amount": "0"}`, userID)

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if len(f.oracle.Prompts) != 0 {
		t.Error("Expected oracle not to be consulted on invalid input")
	}
}

func TestCreateCategory_MissingDescription(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "name": "Food", "amount": "150"}`, userID)

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if len(f.oracle.Prompts) != 0 {
		t.Error("Expected oracle not to be consulted without a description")
	}
}

func TestCreateCategory_DescriptionOnly(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, BudgetID: 1, Name: "Rent", Amount: decimal.NewFromInt(800)})
	f.categoryRepo.AddCategory(&domain.Category{ID: 2, BudgetID: 1, Name: "Transport", Amount: decimal.NewFromInt(200)})
	f.oracle.Responses = []string{"Rent: 500\nTransportDELETE: 0\nExtra: 500"}

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "description": "Reduce Rent to 500 and delete Transport"}`, userID)

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(f.oracle.Prompts) == 0 || !strings.Contains(f.oracle.Prompts[0], "Reduce Rent to 500 and delete Transport") {
		t.Error("Expected the free-text description embedded in the oracle prompt")
	}
	if f.categoryRepo.Categories[2].DeletedAt == nil {
		t.Error("Expected Transport deleted per the description")
	}
}

func TestCreateCategory_ForeignBudget(t *testing.T) {
	f := newCategoryHandlerFixture()
	f.addBudget(uuid.New(), 1000)

	c, rec := jsonRequest(http.MethodPost, "/api/v1/categories",
		`{"budgetId": 1, "description": "Add a Food category with amount 150", "name": "Food", "amount": "150"}`, uuid.New())

	if err := f.handler.CreateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestUpdateCategory_Rename(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, BudgetID: 1, Name: "Food", Amount: decimal.NewFromInt(150)})

	c, rec := jsonRequest(http.MethodPut, "/api/v1/categories/1", `{"name": "Groceries"}`, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.UpdateCategory(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var category domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &category); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if category.Name != "Groceries" {
		t.Errorf("Expected name 'Groceries', got %s", category.Name)
	}
}

func TestUpdateCategory_SoftDeletedIsNotFound(t *testing.T) {
	f := newCategoryHandlerFixture()
	userID := uuid.New()
	f.addBudget(userID, 1000)
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, BudgetID: 1, Name: "Food", Amount: decimal.NewFromInt(150)})
	if err := f.categoryRepo.SoftDelete(1); err != nil {
		t.Fatalf("Failed to soft-delete category: %v", err)
	}

	c, rec := jsonRequest(http.MethodPut, "/api/v1/categories/1", `{"name": "Groceries"}`, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.UpdateCategory(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
