package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/philiptitus/bridger/internal/testutil"
	"github.com/shopspring/decimal"
)

type incomeHandlerFixture struct {
	incomeRepo   *testutil.MockIncomeRepository
	budgetRepo   *testutil.MockBudgetRepository
	categoryRepo *testutil.MockCategoryRepository
	handler      *IncomeHandler
}

func newIncomeHandlerFixture() *incomeHandlerFixture {
	incomeRepo := testutil.NewMockIncomeRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	incomeService := service.NewIncomeService(incomeRepo, budgetRepo, categoryRepo)
	return &incomeHandlerFixture{
		incomeRepo:   incomeRepo,
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		handler:      NewIncomeHandler(incomeService),
	}
}

func jsonRequest(method, target, body string, userID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContextWithUser(c, "auth0|test", "test@example.com", "Test User", userID)
	return c, rec
}

func TestCreateIncome_Success(t *testing.T) {
	f := newIncomeHandlerFixture()
	userID := uuid.New()

	c, rec := jsonRequest(http.MethodPost, "/api/v1/incomes",
		`{"amount": "5000", "source": "Salary", "dateReceived": "2026-08-01"}`, userID)

	if err := f.handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var income domain.Income
	if err := json.Unmarshal(rec.Body.Bytes(), &income); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if income.Source != "Salary" {
		t.Errorf("Expected source 'Salary', got %s", income.Source)
	}
	if !income.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected amount 5000, got %s", income.Amount)
	}
}

func TestCreateIncome_AmountBelowMinimum(t *testing.T) {
	f := newIncomeHandlerFixture()

	c, rec := jsonRequest(http.MethodPost, "/api/v1/incomes",
		`{"amount": "999", "source": "Salary"}`, uuid.New())

	if err := f.handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateIncome_InvalidAmountString(t *testing.T) {
	f := newIncomeHandlerFixture()

	c, rec := jsonRequest(http.MethodPost, "/api/v1/incomes",
		`{"amount": "abc", "source": "Salary"}`, uuid.New())

	if err := f.handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateIncome_Unauthenticated(t *testing.T) {
	f := newIncomeHandlerFixture()
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/incomes", strings.NewReader(`{"amount": "5000", "source": "Salary"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetIncome_WithBudgetDetail(t *testing.T) {
	f := newIncomeHandlerFixture()
	userID := uuid.New()

	f.incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(5000), Source: "Salary"})
	f.budgetRepo.AddBudget(&domain.Budget{ID: 1, IncomeID: 1, Name: "August", TotalExpenses: decimal.NewFromInt(5000), OwnerID: userID})
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, BudgetID: 1, Name: "Food", Amount: decimal.NewFromInt(1500)})

	c, rec := jsonRequest(http.MethodGet, "/api/v1/incomes/1", "", userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var detail service.IncomeDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if detail.Budget == nil {
		t.Fatal("Expected budget in detail")
	}
	if len(detail.Categories) != 1 {
		t.Errorf("Expected 1 category, got %d", len(detail.Categories))
	}
}

func TestGetIncome_Forbidden(t *testing.T) {
	f := newIncomeHandlerFixture()
	owner := uuid.New()
	f.incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: owner, Amount: decimal.NewFromInt(5000), Source: "Salary"})

	c, rec := jsonRequest(http.MethodGet, "/api/v1/incomes/1", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetIncome(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestGetIncome_NotFound(t *testing.T) {
	f := newIncomeHandlerFixture()

	c, rec := jsonRequest(http.MethodGet, "/api/v1/incomes/99", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := f.handler.GetIncome(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateIncome_Success(t *testing.T) {
	f := newIncomeHandlerFixture()
	userID := uuid.New()
	f.incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(5000), Source: "Salary"})

	c, rec := jsonRequest(http.MethodPut, "/api/v1/incomes/1", `{"amount": "6000"}`, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.UpdateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var income domain.Income
	if err := json.Unmarshal(rec.Body.Bytes(), &income); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !income.Amount.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("Expected amount 6000, got %s", income.Amount)
	}
}

func TestDeleteIncome_Success(t *testing.T) {
	f := newIncomeHandlerFixture()
	userID := uuid.New()
	f.incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(5000), Source: "Salary"})

	c, rec := jsonRequest(http.MethodDelete, "/api/v1/incomes/1", "", userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.DeleteIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(f.incomeRepo.Incomes) != 0 {
		t.Error("Expected income to be removed")
	}
}

func TestGetIncomes_List(t *testing.T) {
	f := newIncomeHandlerFixture()
	userID := uuid.New()
	f.incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(5000), Source: "Salary"})
	f.incomeRepo.AddIncome(&domain.Income{ID: 2, UserID: uuid.New(), Amount: decimal.NewFromInt(7000), Source: "Bonus"})

	c, rec := jsonRequest(http.MethodGet, "/api/v1/incomes?search=sal", "", userID)

	if err := f.handler.GetIncomes(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var page domain.PaginatedIncomes
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("Expected 1 matching income, got %d", page.TotalItems)
	}
}
