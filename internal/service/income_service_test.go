package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/testutil"
	"github.com/shopspring/decimal"
)

func newIncomeFixture() (*IncomeService, *testutil.MockIncomeRepository, *testutil.MockBudgetRepository, *testutil.MockCategoryRepository) {
	incomeRepo := testutil.NewMockIncomeRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	return NewIncomeService(incomeRepo, budgetRepo, categoryRepo), incomeRepo, budgetRepo, categoryRepo
}

func TestCreateIncome_Success(t *testing.T) {
	svc, _, _, _ := newIncomeFixture()
	userID := uuid.New()

	income, err := svc.CreateIncome(userID, &domain.Income{
		Amount: decimal.NewFromInt(5000),
		Source: "Salary",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if income.UserID != userID {
		t.Errorf("Expected user %s, got %s", userID, income.UserID)
	}
	if income.DateReceived.IsZero() {
		t.Error("Expected date to default to today")
	}
}

func TestCreateIncome_AmountBounds(t *testing.T) {
	svc, _, _, _ := newIncomeFixture()
	userID := uuid.New()

	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr bool
	}{
		{"below minimum", decimal.NewFromInt(999), true},
		{"at minimum", decimal.NewFromInt(1000), false},
		{"at maximum", decimal.NewFromInt(1_000_000_000), false},
		{"above maximum", decimal.NewFromInt(1_000_000_001), true},
		{"negative", decimal.NewFromInt(-5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateIncome(userID, &domain.Income{Amount: tt.amount, Source: "Salary"})
			if tt.wantErr && !errors.Is(err, domain.ErrAmountOutOfRange) {
				t.Errorf("Expected ErrAmountOutOfRange, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestCreateIncome_EmptySource(t *testing.T) {
	svc, _, _, _ := newIncomeFixture()

	_, err := svc.CreateIncome(uuid.New(), &domain.Income{
		Amount: decimal.NewFromInt(2000),
		Source: "   ",
	})
	if !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
}

func TestCreateIncome_KeepsProvidedDate(t *testing.T) {
	svc, _, _, _ := newIncomeFixture()
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	income, err := svc.CreateIncome(uuid.New(), &domain.Income{
		Amount:       decimal.NewFromInt(2000),
		Source:       "Salary",
		DateReceived: date,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !income.DateReceived.Equal(date) {
		t.Errorf("Expected date %v, got %v", date, income.DateReceived)
	}
}

func TestGetIncomeDetail_WithBudgetAndCategories(t *testing.T) {
	svc, incomeRepo, budgetRepo, categoryRepo := newIncomeFixture()
	userID := uuid.New()

	incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(2000), Source: "Salary"})
	budgetRepo.AddBudget(&domain.Budget{ID: 10, IncomeID: 1, Name: "March", TotalExpenses: decimal.NewFromInt(2000), OwnerID: userID})
	categoryRepo.AddCategory(&domain.Category{ID: 100, BudgetID: 10, Name: "Food", Amount: decimal.NewFromInt(500)})

	detail, err := svc.GetIncomeDetail(userID, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if detail.Budget == nil || detail.Budget.ID != 10 {
		t.Fatal("Expected attached budget in detail")
	}
	if len(detail.Categories) != 1 || detail.Categories[0].Name != "Food" {
		t.Errorf("Expected budget categories in detail, got %v", detail.Categories)
	}
}

func TestGetIncomeDetail_NoBudget(t *testing.T) {
	svc, incomeRepo, _, _ := newIncomeFixture()
	userID := uuid.New()

	incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(2000), Source: "Salary"})

	detail, err := svc.GetIncomeDetail(userID, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if detail.Budget != nil {
		t.Error("Expected nil budget for income without one")
	}
}

func TestGetIncomeDetail_Forbidden(t *testing.T) {
	svc, incomeRepo, _, _ := newIncomeFixture()

	incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: uuid.New(), Amount: decimal.NewFromInt(2000), Source: "Salary"})

	_, err := svc.GetIncomeDetail(uuid.New(), 1)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}

func TestUpdateIncome_RevalidatesAmount(t *testing.T) {
	svc, incomeRepo, _, _ := newIncomeFixture()
	userID := uuid.New()

	incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: userID, Amount: decimal.NewFromInt(2000), Source: "Salary"})

	bad := decimal.NewFromInt(10)
	_, err := svc.UpdateIncome(userID, 1, &domain.IncomeUpdate{Amount: &bad})
	if !errors.Is(err, domain.ErrAmountOutOfRange) {
		t.Errorf("Expected ErrAmountOutOfRange, got %v", err)
	}

	good := decimal.NewFromInt(3000)
	updated, err := svc.UpdateIncome(userID, 1, &domain.IncomeUpdate{Amount: &good})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !updated.Amount.Equal(good) {
		t.Errorf("Expected amount 3000, got %s", updated.Amount)
	}
}

func TestDeleteIncome_NotFound(t *testing.T) {
	svc, _, _, _ := newIncomeFixture()

	err := svc.DeleteIncome(uuid.New(), 99)
	if !errors.Is(err, domain.ErrIncomeNotFound) {
		t.Errorf("Expected ErrIncomeNotFound, got %v", err)
	}
}

func TestDeleteIncome_Forbidden(t *testing.T) {
	svc, incomeRepo, _, _ := newIncomeFixture()

	incomeRepo.AddIncome(&domain.Income{ID: 1, UserID: uuid.New(), Amount: decimal.NewFromInt(2000), Source: "Salary"})

	err := svc.DeleteIncome(uuid.New(), 1)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}
