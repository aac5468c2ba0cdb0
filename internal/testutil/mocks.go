package testutil

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(authID, email string, name *string, provider domain.AuthProvider) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuthID retrieves a user by identity-provider subject
func (m *MockUserRepository) GetByAuthID(authID string) (*domain.User, error) {
	if user, ok := m.Users[authID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuthID creates or retrieves a user by subject
func (m *MockUserRepository) CreateOrGetByAuthID(authID, email string, name *string, provider domain.AuthProvider) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(authID, email, name, provider)
	}
	if user, ok := m.Users[authID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:           uuid.New(),
		AuthID:       authID,
		Email:        email,
		Name:         name,
		AuthProvider: provider,
		JoinedAt:     time.Now().UTC(),
	}
	m.AddUser(user)
	return user, nil
}

// UpdateProfile partial-updates name, bio and privacy
func (m *MockUserRepository) UpdateProfile(id uuid.UUID, name, bio *string, isPrivate *bool) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if name != nil {
		user.Name = name
	}
	if bio != nil {
		user.Bio = bio
	}
	if isPrivate != nil {
		user.IsPrivate = *isPrivate
	}
	return user, nil
}

// UpdateAvatarPath sets or clears the stored avatar object path
func (m *MockUserRepository) UpdateAvatarPath(id uuid.UUID, avatarPath *string) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.AvatarPath = avatarPath
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.AuthID] = user
	m.ByID[user.ID] = user
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	Incomes map[int32]*domain.Income
	NextID  int32
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{
		Incomes: make(map[int32]*domain.Income),
		NextID:  1,
	}
}

// Create persists a new income entry
func (m *MockIncomeRepository) Create(income *domain.Income) (*domain.Income, error) {
	income.ID = m.NextID
	m.NextID++
	income.CreatedAt = time.Now().UTC()
	m.Incomes[income.ID] = income
	return income, nil
}

// GetByID retrieves an income entry by ID
func (m *MockIncomeRepository) GetByID(id int32) (*domain.Income, error) {
	if income, ok := m.Incomes[id]; ok {
		return income, nil
	}
	return nil, domain.ErrIncomeNotFound
}

// GetByUser retrieves a user's income entries with search and pagination
func (m *MockIncomeRepository) GetByUser(userID uuid.UUID, filters *domain.IncomeFilters) (*domain.PaginatedIncomes, error) {
	var matched []*domain.Income
	search := ""
	if filters != nil {
		search = strings.ToLower(filters.Search)
	}
	for _, income := range m.Incomes {
		if income.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(income.Source), search) {
			continue
		}
		matched = append(matched, income)
	}
	return &domain.PaginatedIncomes{
		Data:       matched,
		Page:       1,
		PageSize:   domain.DefaultPageSize,
		TotalItems: int64(len(matched)),
		TotalPages: 1,
	}, nil
}

// Update partial-updates an income entry
func (m *MockIncomeRepository) Update(id int32, update *domain.IncomeUpdate) (*domain.Income, error) {
	income, ok := m.Incomes[id]
	if !ok {
		return nil, domain.ErrIncomeNotFound
	}
	if update.Amount != nil {
		income.Amount = *update.Amount
	}
	if update.Source != nil {
		income.Source = *update.Source
	}
	if update.DateReceived != nil {
		income.DateReceived = *update.DateReceived
	}
	if update.Description != nil {
		income.Description = update.Description
	}
	return income, nil
}

// Delete removes an income entry
func (m *MockIncomeRepository) Delete(id int32) error {
	if _, ok := m.Incomes[id]; !ok {
		return domain.ErrIncomeNotFound
	}
	delete(m.Incomes, id)
	return nil
}

// AddIncome adds an income entry to the mock repository (helper for tests)
func (m *MockIncomeRepository) AddIncome(income *domain.Income) {
	if income.ID >= m.NextID {
		m.NextID = income.ID + 1
	}
	m.Incomes[income.ID] = income
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32

	// CategoryRepo, when set, has its categories soft-deleted on budget
	// delete the way the real repository does
	CategoryRepo *MockCategoryRepository
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create persists a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now().UTC()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok {
		return budget, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetByIncomeID retrieves the budget derived from an income entry
func (m *MockBudgetRepository) GetByIncomeID(incomeID int32) (*domain.Budget, error) {
	for _, budget := range m.Budgets {
		if budget.IncomeID == incomeID {
			return budget, nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

// ExistsForIncome reports whether an income already has a budget
func (m *MockBudgetRepository) ExistsForIncome(incomeID int32) (bool, error) {
	_, err := m.GetByIncomeID(incomeID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Update applies the whitelisted mutable fields
func (m *MockBudgetRepository) Update(id int32, update *domain.BudgetUpdate) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok {
		return nil, domain.ErrBudgetNotFound
	}
	if update.Name != nil {
		budget.Name = *update.Name
	}
	if update.EndDate != nil {
		budget.EndDate = *update.EndDate
	}
	if update.Description != nil {
		budget.Description = update.Description
	}
	return budget, nil
}

// Delete removes the budget and soft-deletes its categories
func (m *MockBudgetRepository) Delete(id int32) error {
	if _, ok := m.Budgets[id]; !ok {
		return domain.ErrBudgetNotFound
	}
	if m.CategoryRepo != nil {
		for _, cat := range m.CategoryRepo.Categories {
			if cat.BudgetID == id && cat.DeletedAt == nil {
				now := time.Now().UTC()
				cat.DeletedAt = &now
			}
		}
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32

	// Owners maps budget ID to owner, so GetByNameForUser can scope
	Owners map[int32]uuid.UUID
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
		Owners:     make(map[int32]uuid.UUID),
	}
}

// Create persists a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now().UTC()
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID, including soft-deleted rows
func (m *MockCategoryRepository) GetByID(id int32) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetByBudget returns the live categories of a budget
func (m *MockCategoryRepository) GetByBudget(budgetID int32) ([]*domain.Category, error) {
	var categories []*domain.Category
	for id := int32(1); id < m.NextID; id++ {
		cat, ok := m.Categories[id]
		if ok && cat.BudgetID == budgetID && cat.DeletedAt == nil {
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

// GetByNameForUser returns live categories with the exact name across the
// user's budgets
func (m *MockCategoryRepository) GetByNameForUser(userID uuid.UUID, name string) ([]*domain.Category, error) {
	var categories []*domain.Category
	for id := int32(1); id < m.NextID; id++ {
		cat, ok := m.Categories[id]
		if !ok || cat.Name != name || cat.DeletedAt != nil {
			continue
		}
		if owner, ok := m.Owners[cat.BudgetID]; ok && owner == userID {
			categories = append(categories, cat)
		}
	}
	return categories, nil
}

// UpdateNameDescription renames a live category
func (m *MockCategoryRepository) UpdateNameDescription(id int32, name string, description *string) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.DeletedAt != nil {
		return nil, domain.ErrCategoryNotFound
	}
	category.Name = name
	if description != nil {
		category.Description = description
	}
	return category, nil
}

// SoftDelete marks a category deleted
func (m *MockCategoryRepository) SoftDelete(id int32) error {
	category, ok := m.Categories[id]
	if !ok || category.DeletedAt != nil {
		return domain.ErrCategoryNotFound
	}
	now := time.Now().UTC()
	category.DeletedAt = &now
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// MockSavingsRepository is a mock implementation of domain.SavingsRepository
type MockSavingsRepository struct {
	Savings map[int32]*domain.Savings
	NextID  int32
}

// NewMockSavingsRepository creates a new MockSavingsRepository
func NewMockSavingsRepository() *MockSavingsRepository {
	return &MockSavingsRepository{
		Savings: make(map[int32]*domain.Savings),
		NextID:  1,
	}
}

// Create persists a new savings goal
func (m *MockSavingsRepository) Create(savings *domain.Savings) (*domain.Savings, error) {
	savings.ID = m.NextID
	m.NextID++
	savings.CreatedAt = time.Now().UTC()
	m.Savings[savings.ID] = savings
	return savings, nil
}

// GetByID retrieves a savings goal by ID
func (m *MockSavingsRepository) GetByID(id int32) (*domain.Savings, error) {
	if savings, ok := m.Savings[id]; ok {
		return savings, nil
	}
	return nil, domain.ErrSavingsNotFound
}

// GetByGoalName retrieves a user's goal by its exact name
func (m *MockSavingsRepository) GetByGoalName(userID uuid.UUID, goalName string) (*domain.Savings, error) {
	for _, savings := range m.Savings {
		if savings.UserID == userID && savings.GoalName == goalName {
			return savings, nil
		}
	}
	return nil, domain.ErrSavingsNotFound
}

// GetByUser retrieves a user's goals
func (m *MockSavingsRepository) GetByUser(userID uuid.UUID, filters *domain.SavingsFilters) (*domain.PaginatedSavings, error) {
	var matched []*domain.Savings
	search := ""
	if filters != nil {
		search = strings.ToLower(filters.Search)
	}
	for _, savings := range m.Savings {
		if savings.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(savings.GoalName), search) {
			continue
		}
		matched = append(matched, savings)
	}
	return &domain.PaginatedSavings{
		Data:       matched,
		Page:       1,
		PageSize:   domain.DefaultPageSize,
		TotalItems: int64(len(matched)),
		TotalPages: 1,
	}, nil
}

// Update rewrites the goal's mutable fields and category back-reference
func (m *MockSavingsRepository) Update(id int32, goalName string, targetAmount *decimal.Decimal, description *string, categoryID *int32) (*domain.Savings, error) {
	savings, ok := m.Savings[id]
	if !ok {
		return nil, domain.ErrSavingsNotFound
	}
	savings.GoalName = goalName
	if targetAmount != nil {
		savings.TargetAmount = targetAmount
	}
	if description != nil {
		savings.Description = description
	}
	savings.CategoryID = categoryID
	return savings, nil
}

// Delete removes a savings goal
func (m *MockSavingsRepository) Delete(id int32) error {
	if _, ok := m.Savings[id]; !ok {
		return domain.ErrSavingsNotFound
	}
	delete(m.Savings, id)
	return nil
}

// AddSavings adds a goal to the mock repository (helper for tests)
func (m *MockSavingsRepository) AddSavings(savings *domain.Savings) {
	if savings.ID >= m.NextID {
		m.NextID = savings.ID + 1
	}
	m.Savings[savings.ID] = savings
}

// MockReconcileStore applies reconcile plans against the mock category and
// savings repositories, mirroring the transactional store's effects
type MockReconcileStore struct {
	Categories *MockCategoryRepository
	Savings    *MockSavingsRepository
	Plans      []*domain.ReconcilePlan
	ApplyFn    func(plan *domain.ReconcilePlan) error
}

// NewMockReconcileStore creates a new MockReconcileStore
func NewMockReconcileStore(categories *MockCategoryRepository, savings *MockSavingsRepository) *MockReconcileStore {
	return &MockReconcileStore{Categories: categories, Savings: savings}
}

// Apply materializes the plan in the mock repositories
func (m *MockReconcileStore) Apply(plan *domain.ReconcilePlan) error {
	m.Plans = append(m.Plans, plan)
	if m.ApplyFn != nil {
		return m.ApplyFn(plan)
	}

	for _, cat := range plan.Deletes {
		if err := m.Categories.SoftDelete(cat.ID); err != nil {
			return err
		}
	}

	for _, debit := range plan.SavingsDebits {
		savings, ok := m.Savings.Savings[debit.SavingsID]
		if !ok {
			return domain.ErrSavingsNotFound
		}
		savings.AmountSaved = savings.AmountSaved.Sub(debit.Amount)
	}

	categoryIDs := make(map[string]int32)
	for _, up := range plan.Upserts {
		if up.CategoryID != nil {
			cat, ok := m.Categories.Categories[*up.CategoryID]
			if !ok {
				return domain.ErrCategoryNotFound
			}
			cat.Name = up.Name
			cat.Amount = up.Amount
			if up.Description != nil {
				cat.Description = up.Description
			}
			categoryIDs[up.Name] = cat.ID
			continue
		}
		created, err := m.Categories.Create(&domain.Category{
			BudgetID:    plan.BudgetID,
			Name:        up.Name,
			Amount:      up.Amount,
			Description: up.Description,
		})
		if err != nil {
			return err
		}
		categoryIDs[up.Name] = created.ID
	}

	for _, up := range plan.SavingsUpserts {
		categoryID := up.CategoryID
		if categoryID == nil {
			if id, ok := categoryIDs[up.CategoryName]; ok {
				categoryID = &id
			}
		}
		if up.SavingsID != nil {
			savings, ok := m.Savings.Savings[*up.SavingsID]
			if !ok {
				return domain.ErrSavingsNotFound
			}
			savings.AmountSaved = up.AmountSaved
			savings.CategoryID = categoryID
			if up.Description != nil {
				savings.Description = up.Description
			}
			continue
		}
		owner, ok := m.Categories.Owners[plan.BudgetID]
		if !ok {
			return errors.New("mock store: unknown budget owner")
		}
		target := decimal.Zero
		if _, err := m.Savings.Create(&domain.Savings{
			UserID:       owner,
			GoalName:     up.GoalName,
			TargetAmount: &target,
			AmountSaved:  up.AmountSaved,
			Description:  up.Description,
			CategoryID:   categoryID,
		}); err != nil {
			return err
		}
	}

	return nil
}

// MockOracle is a scripted domain.TextOracle
type MockOracle struct {
	Responses []string
	Err       error
	Prompts   []string

	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

// GenerateText returns the next scripted response, repeating the last one
// once the script runs out
func (m *MockOracle) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", errors.New("mock oracle: no scripted responses")
	}
	idx := len(m.Prompts) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}
