package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/websocket"
	"github.com/rs/zerolog/log"
)

// CategoryService handles direct category edits. Amount changes never go
// through here; they only flow through reconciliation.
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	budgetRepo     domain.BudgetRepository
	savingsRepo    domain.SavingsRepository
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, budgetRepo domain.BudgetRepository, savingsRepo domain.SavingsRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		budgetRepo:   budgetRepo,
		savingsRepo:  savingsRepo,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// GetCategory retrieves a live category owned by the user
func (s *CategoryService) GetCategory(userID uuid.UUID, id int32) (*domain.Category, error) {
	return s.getOwned(userID, id)
}

// UpdateCategory renames a category and updates its description. When a
// savings-named category is renamed, the mirrored goal follows the new
// name; renaming away from a savings name detaches the goal.
func (s *CategoryService) UpdateCategory(userID uuid.UUID, id int32, name string, description *string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameRequired
	}

	category, err := s.getOwned(userID, id)
	if err != nil {
		return nil, err
	}

	if domain.IsSavingsName(category.Name) && category.Name != name {
		if err := s.syncRenamedGoal(userID, category, name); err != nil {
			return nil, err
		}
	}

	updated, err := s.categoryRepo.UpdateNameDescription(id, name, description)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.CategoryUpdated(updated))
	return updated, nil
}

func (s *CategoryService) syncRenamedGoal(userID uuid.UUID, category *domain.Category, newName string) error {
	goal, err := s.savingsRepo.GetByGoalName(userID, domain.NormalizeGoalName(category.Name))
	if err != nil {
		if errors.Is(err, domain.ErrSavingsNotFound) {
			return nil
		}
		return err
	}

	if domain.IsSavingsName(newName) {
		categoryID := category.ID
		_, err = s.savingsRepo.Update(goal.ID, domain.NormalizeGoalName(newName), nil, nil, &categoryID)
	} else {
		// Goal keeps its name but loses the category link
		_, err = s.savingsRepo.Update(goal.ID, goal.GoalName, nil, nil, nil)
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("category_id", category.ID).
		Int32("savings_id", goal.ID).
		Msg("Savings goal synced after category rename")
	return nil
}

func (s *CategoryService) getOwned(userID uuid.UUID, id int32) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category.DeletedAt != nil {
		return nil, domain.ErrCategoryNotFound
	}
	budget, err := s.budgetRepo.GetByID(category.BudgetID)
	if err != nil {
		return nil, err
	}
	if budget.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	return category, nil
}
