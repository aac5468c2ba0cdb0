package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savingsFixture struct {
	svc          *SavingsService
	savingsRepo  *testutil.MockSavingsRepository
	categoryRepo *testutil.MockCategoryRepository
	store        *testutil.MockReconcileStore
	userID       uuid.UUID
}

func newSavingsFixture(t *testing.T) *savingsFixture {
	t.Helper()

	savingsRepo := testutil.NewMockSavingsRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	store := testutil.NewMockReconcileStore(categoryRepo, savingsRepo)

	return &savingsFixture{
		svc:          NewSavingsService(savingsRepo, categoryRepo, store),
		savingsRepo:  savingsRepo,
		categoryRepo: categoryRepo,
		store:        store,
		userID:       uuid.New(),
	}
}

func TestCreateSavings_NormalizesGoalName(t *testing.T) {
	f := newSavingsFixture(t)

	goal, err := f.svc.CreateSavings(f.userID, "Vacation", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Vacation Savings", goal.GoalName)

	// Names already carrying the suffix are left alone
	goal2, err := f.svc.CreateSavings(f.userID, "Emergency savings", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Emergency savings", goal2.GoalName)
}

func TestCreateSavings_LinksMatchingCategory(t *testing.T) {
	f := newSavingsFixture(t)

	f.categoryRepo.Owners[1] = f.userID
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300),
	})

	goal, err := f.svc.CreateSavings(f.userID, "Vacation", nil, nil)
	require.NoError(t, err)

	require.NotNil(t, goal.CategoryID)
	assert.Equal(t, int32(10), *goal.CategoryID)
	assert.True(t, goal.AmountSaved.Equal(decimal.NewFromInt(300)),
		"expected goal to start mirroring the category amount")
}

func TestCreateSavings_IgnoresForeignCategories(t *testing.T) {
	f := newSavingsFixture(t)

	f.categoryRepo.Owners[1] = uuid.New()
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300),
	})

	goal, err := f.svc.CreateSavings(f.userID, "Vacation", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, goal.CategoryID)
	assert.True(t, goal.AmountSaved.IsZero())
}

func TestCreateSavings_TargetBelowSaved(t *testing.T) {
	f := newSavingsFixture(t)

	f.categoryRepo.Owners[1] = f.userID
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300),
	})

	target := decimal.NewFromInt(100)
	_, err := f.svc.CreateSavings(f.userID, "Vacation", &target, nil)
	require.ErrorIs(t, err, domain.ErrTargetBelowSaved)
}

func TestCreateSavings_DuplicateName(t *testing.T) {
	f := newSavingsFixture(t)

	_, err := f.svc.CreateSavings(f.userID, "Vacation", nil, nil)
	require.NoError(t, err)

	_, err = f.svc.CreateSavings(f.userID, "Vacation", nil, nil)
	require.ErrorIs(t, err, domain.ErrSavingsExists)
}

func TestUpdateSavings_RenameSyncsCategory(t *testing.T) {
	f := newSavingsFixture(t)

	f.categoryRepo.Owners[1] = f.userID
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300),
	})
	catID := int32(10)
	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: f.userID, GoalName: "Vacation Savings",
		AmountSaved: decimal.NewFromInt(300), CategoryID: &catID,
	})

	newName := "Honeymoon"
	updated, err := f.svc.UpdateSavings(f.userID, 5, &domain.SavingsUpdate{GoalName: &newName})
	require.NoError(t, err)

	assert.Equal(t, "Honeymoon Savings", updated.GoalName)
	require.NotNil(t, updated.CategoryID)

	cat, err := f.categoryRepo.GetByID(*updated.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Honeymoon Savings", cat.Name, "expected the mirrored category to follow the rename")
}

func TestUpdateSavings_TargetBelowSaved(t *testing.T) {
	f := newSavingsFixture(t)

	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: f.userID, GoalName: "Vacation Savings",
		AmountSaved: decimal.NewFromInt(300),
	})

	target := decimal.NewFromInt(200)
	_, err := f.svc.UpdateSavings(f.userID, 5, &domain.SavingsUpdate{TargetAmount: &target})
	require.ErrorIs(t, err, domain.ErrTargetBelowSaved)
}

func TestDeleteSavings_FoldsIntoExistingExtra(t *testing.T) {
	f := newSavingsFixture(t)

	f.categoryRepo.Owners[1] = f.userID
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300),
	})
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 11, BudgetID: 1, Name: domain.ExtraCategoryName, Amount: decimal.NewFromInt(700),
	})
	catID := int32(10)
	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: f.userID, GoalName: "Vacation Savings",
		AmountSaved: decimal.NewFromInt(300), CategoryID: &catID,
	})

	require.NoError(t, f.svc.DeleteSavings(f.userID, 5))

	_, err := f.savingsRepo.GetByID(5)
	require.ErrorIs(t, err, domain.ErrSavingsNotFound)

	folded, err := f.categoryRepo.GetByID(10)
	require.NoError(t, err)
	assert.NotNil(t, folded.DeletedAt)

	extra, err := f.categoryRepo.GetByID(11)
	require.NoError(t, err)
	assert.True(t, extra.Amount.Equal(decimal.NewFromInt(1000)),
		"expected Extra to absorb the folded amount, got %s", extra.Amount)

	// The budget's live total is unchanged
	live, err := f.categoryRepo.GetByBudget(1)
	require.NoError(t, err)
	total := decimal.Zero
	for _, cat := range live {
		total = total.Add(cat.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(1000)))
}

func TestDeleteSavings_CreatesExtraWhenMissing(t *testing.T) {
	f := newSavingsFixture(t)

	f.categoryRepo.Owners[1] = f.userID
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "Vacation Savings", Amount: decimal.NewFromInt(300),
	})
	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: f.userID, GoalName: "Vacation Savings",
		AmountSaved: decimal.NewFromInt(300),
	})

	require.NoError(t, f.svc.DeleteSavings(f.userID, 5))

	live, err := f.categoryRepo.GetByBudget(1)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, domain.ExtraCategoryName, live[0].Name)
	assert.True(t, live[0].Amount.Equal(decimal.NewFromInt(300)))
	require.NotNil(t, live[0].Description)
	assert.Equal(t, "Extra funds", *live[0].Description)
}

func TestDeleteSavings_FoldsLinkedCategoryWithDriftedName(t *testing.T) {
	f := newSavingsFixture(t)

	// The mirrored category's name lacks the goal-name suffix, so the two
	// no longer match by name; the category_id link must still fold it
	f.categoryRepo.Owners[1] = f.userID
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 10, BudgetID: 1, Name: "SavingsGoal", Amount: decimal.NewFromInt(300),
	})
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 11, BudgetID: 1, Name: domain.ExtraCategoryName, Amount: decimal.NewFromInt(700),
	})
	catID := int32(10)
	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: f.userID, GoalName: "SavingsGoal Savings",
		AmountSaved: decimal.NewFromInt(300), CategoryID: &catID,
	})

	require.NoError(t, f.svc.DeleteSavings(f.userID, 5))

	folded, err := f.categoryRepo.GetByID(10)
	require.NoError(t, err)
	assert.NotNil(t, folded.DeletedAt, "expected the linked category folded despite the name drift")

	extra, err := f.categoryRepo.GetByID(11)
	require.NoError(t, err)
	assert.True(t, extra.Amount.Equal(decimal.NewFromInt(1000)),
		"expected Extra to absorb the folded amount, got %s", extra.Amount)
}

func TestDeleteSavings_NoMatchingCategory(t *testing.T) {
	f := newSavingsFixture(t)

	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: f.userID, GoalName: "Vacation Savings",
		AmountSaved: decimal.Zero,
	})

	require.NoError(t, f.svc.DeleteSavings(f.userID, 5))
	assert.Empty(t, f.store.Plans)
}

func TestSavings_Forbidden(t *testing.T) {
	f := newSavingsFixture(t)

	f.savingsRepo.AddSavings(&domain.Savings{
		ID: 5, UserID: uuid.New(), GoalName: "Vacation Savings",
	})

	_, err := f.svc.GetSavings(f.userID, 5)
	require.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.DeleteSavings(f.userID, 5)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
