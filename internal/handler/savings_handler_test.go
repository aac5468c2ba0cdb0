package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/philiptitus/bridger/internal/testutil"
	"github.com/shopspring/decimal"
)

type savingsHandlerFixture struct {
	savingsRepo  *testutil.MockSavingsRepository
	categoryRepo *testutil.MockCategoryRepository
	handler      *SavingsHandler
}

func newSavingsHandlerFixture() *savingsHandlerFixture {
	savingsRepo := testutil.NewMockSavingsRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	store := testutil.NewMockReconcileStore(categoryRepo, savingsRepo)
	savingsService := service.NewSavingsService(savingsRepo, categoryRepo, store)
	return &savingsHandlerFixture{
		savingsRepo:  savingsRepo,
		categoryRepo: categoryRepo,
		handler:      NewSavingsHandler(savingsService),
	}
}

func TestCreateSavings_NormalizesName(t *testing.T) {
	f := newSavingsHandlerFixture()

	c, rec := jsonRequest(http.MethodPost, "/api/v1/savings",
		`{"goalName": "Vacation", "targetAmount": "5000"}`, uuid.New())

	if err := f.handler.CreateSavings(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var goal domain.Savings
	if err := json.Unmarshal(rec.Body.Bytes(), &goal); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if goal.GoalName != "Vacation Savings" {
		t.Errorf("Expected goal name 'Vacation Savings', got %s", goal.GoalName)
	}
}

func TestCreateSavings_DuplicateConflict(t *testing.T) {
	f := newSavingsHandlerFixture()
	userID := uuid.New()
	f.savingsRepo.AddSavings(&domain.Savings{ID: 1, UserID: userID, GoalName: "Vacation Savings", AmountSaved: decimal.Zero})

	c, rec := jsonRequest(http.MethodPost, "/api/v1/savings",
		`{"goalName": "Vacation"}`, userID)

	if err := f.handler.CreateSavings(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestCreateSavings_TargetBelowSaved(t *testing.T) {
	f := newSavingsHandlerFixture()
	userID := uuid.New()
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300)})
	f.categoryRepo.Owners[1] = userID

	c, rec := jsonRequest(http.MethodPost, "/api/v1/savings",
		`{"goalName": "Vacation", "targetAmount": "100"}`, userID)

	if err := f.handler.CreateSavings(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetSavings_Forbidden(t *testing.T) {
	f := newSavingsHandlerFixture()
	f.savingsRepo.AddSavings(&domain.Savings{ID: 1, UserID: uuid.New(), GoalName: "Vacation Savings", AmountSaved: decimal.Zero})

	c, rec := jsonRequest(http.MethodGet, "/api/v1/savings/1", "", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.GetSavings(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestUpdateSavings_TargetBelowSaved(t *testing.T) {
	f := newSavingsHandlerFixture()
	userID := uuid.New()
	f.savingsRepo.AddSavings(&domain.Savings{ID: 1, UserID: userID, GoalName: "Vacation Savings", AmountSaved: decimal.NewFromInt(400)})

	c, rec := jsonRequest(http.MethodPut, "/api/v1/savings/1", `{"targetAmount": "100"}`, userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.UpdateSavings(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDeleteSavings_FoldsCategoryIntoExtra(t *testing.T) {
	f := newSavingsHandlerFixture()
	userID := uuid.New()
	f.savingsRepo.AddSavings(&domain.Savings{ID: 1, UserID: userID, GoalName: "Vacation Savings", AmountSaved: decimal.NewFromInt(300)})
	f.categoryRepo.AddCategory(&domain.Category{ID: 1, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300)})
	f.categoryRepo.AddCategory(&domain.Category{ID: 2, BudgetID: 1, Name: domain.ExtraCategoryName, Amount: decimal.NewFromInt(700)})
	f.categoryRepo.Owners[1] = userID

	c, rec := jsonRequest(http.MethodDelete, "/api/v1/savings/1", "", userID)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := f.handler.DeleteSavings(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	if f.categoryRepo.Categories[1].DeletedAt == nil {
		t.Error("Expected savings category to be soft-deleted")
	}
	if !f.categoryRepo.Categories[2].Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Expected Extra to absorb the amount (1000), got %s", f.categoryRepo.Categories[2].Amount)
	}
	if len(f.savingsRepo.Savings) != 0 {
		t.Error("Expected goal to be removed")
	}
}

func TestGetAllSavings_List(t *testing.T) {
	f := newSavingsHandlerFixture()
	userID := uuid.New()
	f.savingsRepo.AddSavings(&domain.Savings{ID: 1, UserID: userID, GoalName: "Vacation Savings", AmountSaved: decimal.Zero})
	f.savingsRepo.AddSavings(&domain.Savings{ID: 2, UserID: uuid.New(), GoalName: "Car Savings", AmountSaved: decimal.Zero})

	c, rec := jsonRequest(http.MethodGet, "/api/v1/savings", "", userID)

	if err := f.handler.GetAllSavings(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var page domain.PaginatedSavings
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("Expected 1 goal, got %d", page.TotalItems)
	}
}
