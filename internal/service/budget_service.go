package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/websocket"
	"github.com/rs/zerolog/log"
)

// BudgetService handles budget business logic
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	incomeRepo     domain.IncomeRepository
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, incomeRepo domain.IncomeRepository, categoryRepo domain.CategoryRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		incomeRepo:   incomeRepo,
		categoryRepo: categoryRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// BudgetDetail is a budget together with its live categories
type BudgetDetail struct {
	Budget     *domain.Budget     `json:"budget"`
	Categories []*domain.Category `json:"categories"`
}

// CreateBudget derives a budget from an owned income entry. An income can
// back at most one budget; the ceiling is snapshotted from the income
// amount at creation time.
func (s *BudgetService) CreateBudget(userID uuid.UUID, incomeID int32, name string, endDate time.Time, description *string) (*domain.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	income, err := s.incomeRepo.GetByID(incomeID)
	if err != nil {
		return nil, err
	}

	// The one-budget-per-income rule is reported before ownership
	exists, err := s.budgetRepo.ExistsForIncome(incomeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrBudgetExists
	}

	if income.UserID != userID {
		return nil, domain.ErrForbidden
	}

	budget := &domain.Budget{
		IncomeID:      incomeID,
		Name:          name,
		TotalExpenses: income.Amount,
		StartDate:     time.Now().UTC().Truncate(24 * time.Hour),
		EndDate:       endDate,
		Description:   description,
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("budget_id", created.ID).
		Str("total_expenses", created.TotalExpenses.StringFixed(2)).
		Msg("Budget created")

	s.publishEvent(userID, websocket.BudgetCreated(created))
	return created, nil
}

// GetBudgetDetail retrieves an owned budget with its live categories
func (s *BudgetService) GetBudgetDetail(userID uuid.UUID, id int32) (*BudgetDetail, error) {
	budget, err := s.getOwned(userID, id)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetByBudget(budget.ID)
	if err != nil {
		return nil, err
	}

	return &BudgetDetail{Budget: budget, Categories: categories}, nil
}

// GetBudget retrieves an owned budget
func (s *BudgetService) GetBudget(userID uuid.UUID, id int32) (*domain.Budget, error) {
	return s.getOwned(userID, id)
}

// UpdateBudget applies the whitelisted mutable fields. The income link,
// start date and expense ceiling are fixed at creation time.
func (s *BudgetService) UpdateBudget(userID uuid.UUID, id int32, update *domain.BudgetUpdate) (*domain.Budget, error) {
	if _, err := s.getOwned(userID, id); err != nil {
		return nil, err
	}
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, domain.ErrNameRequired
		}
		update.Name = &trimmed
	}

	updated, err := s.budgetRepo.Update(id, update)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget removes an owned budget and soft-deletes its categories
func (s *BudgetService) DeleteBudget(userID uuid.UUID, id int32) error {
	if _, err := s.getOwned(userID, id); err != nil {
		return err
	}
	if err := s.budgetRepo.Delete(id); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("budget_id", id).
		Msg("Budget deleted")

	s.publishEvent(userID, websocket.BudgetDeleted(map[string]int32{"id": id}))
	return nil
}

func (s *BudgetService) getOwned(userID uuid.UUID, id int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if budget.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return budget, nil
}
