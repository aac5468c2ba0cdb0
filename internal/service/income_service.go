package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/websocket"
	"github.com/rs/zerolog/log"
)

// IncomeService handles income business logic
type IncomeService struct {
	incomeRepo     domain.IncomeRepository
	budgetRepo     domain.BudgetRepository
	categoryRepo   domain.CategoryRepository
	eventPublisher websocket.EventPublisher
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(incomeRepo domain.IncomeRepository, budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository) *IncomeService {
	return &IncomeService{
		incomeRepo:   incomeRepo,
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *IncomeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *IncomeService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// IncomeDetail is an income entry together with its derived budget and the
// budget's live categories, when a budget exists.
type IncomeDetail struct {
	Income     *domain.Income     `json:"income"`
	Budget     *domain.Budget     `json:"budget,omitempty"`
	Categories []*domain.Category `json:"categories,omitempty"`
}

// CreateIncome records a new income entry for the user. The date defaults
// to today when omitted.
func (s *IncomeService) CreateIncome(userID uuid.UUID, income *domain.Income) (*domain.Income, error) {
	if err := domain.ValidateIncomeAmount(income.Amount); err != nil {
		return nil, err
	}
	income.Source = strings.TrimSpace(income.Source)
	if income.Source == "" {
		return nil, domain.ErrNameRequired
	}
	if income.DateReceived.IsZero() {
		income.DateReceived = time.Now().UTC().Truncate(24 * time.Hour)
	}
	income.UserID = userID

	created, err := s.incomeRepo.Create(income)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("income_id", created.ID).
		Str("amount", created.Amount.StringFixed(2)).
		Msg("Income created")

	s.publishEvent(userID, websocket.IncomeCreated(created))
	return created, nil
}

// GetIncomes lists the user's income entries with search and pagination
func (s *IncomeService) GetIncomes(userID uuid.UUID, filters *domain.IncomeFilters) (*domain.PaginatedIncomes, error) {
	return s.incomeRepo.GetByUser(userID, filters)
}

// GetIncomeDetail retrieves an income with its budget and that budget's
// live categories
func (s *IncomeService) GetIncomeDetail(userID uuid.UUID, id int32) (*IncomeDetail, error) {
	income, err := s.getOwned(userID, id)
	if err != nil {
		return nil, err
	}

	detail := &IncomeDetail{Income: income}

	budget, err := s.budgetRepo.GetByIncomeID(id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return detail, nil
		}
		return nil, err
	}
	detail.Budget = budget

	categories, err := s.categoryRepo.GetByBudget(budget.ID)
	if err != nil {
		return nil, err
	}
	detail.Categories = categories

	return detail, nil
}

// UpdateIncome partial-updates an owned income entry
func (s *IncomeService) UpdateIncome(userID uuid.UUID, id int32, update *domain.IncomeUpdate) (*domain.Income, error) {
	if _, err := s.getOwned(userID, id); err != nil {
		return nil, err
	}
	if update.Amount != nil {
		if err := domain.ValidateIncomeAmount(*update.Amount); err != nil {
			return nil, err
		}
	}
	if update.Source != nil {
		trimmed := strings.TrimSpace(*update.Source)
		if trimmed == "" {
			return nil, domain.ErrNameRequired
		}
		update.Source = &trimmed
	}

	updated, err := s.incomeRepo.Update(id, update)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.IncomeUpdated(updated))
	return updated, nil
}

// DeleteIncome removes an owned income entry together with its budget and
// categories
func (s *IncomeService) DeleteIncome(userID uuid.UUID, id int32) error {
	if _, err := s.getOwned(userID, id); err != nil {
		return err
	}
	if err := s.incomeRepo.Delete(id); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("income_id", id).
		Msg("Income deleted")

	s.publishEvent(userID, websocket.IncomeDeleted(map[string]int32{"id": id}))
	return nil
}

func (s *IncomeService) getOwned(userID uuid.UUID, id int32) (*domain.Income, error) {
	income, err := s.incomeRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if income.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return income, nil
}
