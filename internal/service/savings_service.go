package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SavingsService handles savings-goal business logic. Goals are weakly
// linked to same-named categories: the category mirrors the goal's saved
// amount, and goal writes keep the two in step.
type SavingsService struct {
	savingsRepo    domain.SavingsRepository
	categoryRepo   domain.CategoryRepository
	store          domain.ReconcileStore
	eventPublisher websocket.EventPublisher
}

// NewSavingsService creates a new SavingsService
func NewSavingsService(savingsRepo domain.SavingsRepository, categoryRepo domain.CategoryRepository, store domain.ReconcileStore) *SavingsService {
	return &SavingsService{
		savingsRepo:  savingsRepo,
		categoryRepo: categoryRepo,
		store:        store,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *SavingsService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SavingsService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// CreateSavings creates a goal. The name is normalized to carry the
// savings suffix; when a live category with the same name exists, the goal
// starts mirroring its amount.
func (s *SavingsService) CreateSavings(userID uuid.UUID, goalName string, targetAmount *decimal.Decimal, description *string) (*domain.Savings, error) {
	goalName = strings.TrimSpace(goalName)
	if goalName == "" {
		return nil, domain.ErrNameRequired
	}
	goalName = domain.NormalizeGoalName(goalName)

	if _, err := s.savingsRepo.GetByGoalName(userID, goalName); err == nil {
		return nil, domain.ErrSavingsExists
	} else if !errors.Is(err, domain.ErrSavingsNotFound) {
		return nil, err
	}

	savings := &domain.Savings{
		UserID:       userID,
		GoalName:     goalName,
		TargetAmount: targetAmount,
		AmountSaved:  decimal.Zero,
		Description:  description,
	}

	matched, err := s.matchCategory(userID, goalName)
	if err != nil {
		return nil, err
	}
	if matched != nil {
		savings.AmountSaved = matched.Amount
		savings.CategoryID = &matched.ID
	}

	if targetAmount != nil && targetAmount.LessThan(savings.AmountSaved) {
		return nil, domain.ErrTargetBelowSaved
	}

	created, err := s.savingsRepo.Create(savings)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("savings_id", created.ID).
		Str("goal_name", created.GoalName).
		Msg("Savings goal created")

	s.publishEvent(userID, websocket.SavingsCreated(created))
	return created, nil
}

// GetSavings retrieves an owned goal
func (s *SavingsService) GetSavings(userID uuid.UUID, id int32) (*domain.Savings, error) {
	return s.getOwned(userID, id)
}

// GetAllSavings lists the user's goals with search and pagination
func (s *SavingsService) GetAllSavings(userID uuid.UUID, filters *domain.SavingsFilters) (*domain.PaginatedSavings, error) {
	return s.savingsRepo.GetByUser(userID, filters)
}

// UpdateSavings partial-updates a goal. A renamed goal renames its linked
// category so the weak link survives; a lowered target can never fall
// below the amount already saved.
func (s *SavingsService) UpdateSavings(userID uuid.UUID, id int32, update *domain.SavingsUpdate) (*domain.Savings, error) {
	goal, err := s.getOwned(userID, id)
	if err != nil {
		return nil, err
	}

	goalName := goal.GoalName
	if update.GoalName != nil {
		trimmed := strings.TrimSpace(*update.GoalName)
		if trimmed == "" {
			return nil, domain.ErrNameRequired
		}
		goalName = domain.NormalizeGoalName(trimmed)
	}

	if update.TargetAmount != nil && update.TargetAmount.LessThan(goal.AmountSaved) {
		return nil, domain.ErrTargetBelowSaved
	}

	categoryID := goal.CategoryID
	if goalName != goal.GoalName {
		categoryID, err = s.renameLinkedCategory(userID, goal, goalName)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.savingsRepo.Update(id, goalName, update.TargetAmount, update.Description, categoryID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.SavingsUpdated(updated))
	return updated, nil
}

// DeleteSavings removes a goal. Each live category carrying the goal's
// name, plus the explicitly linked category when its name has drifted from
// the goal's, is folded into its budget's "Extra" bucket so budget totals
// are preserved.
func (s *SavingsService) DeleteSavings(userID uuid.UUID, id int32) error {
	goal, err := s.getOwned(userID, id)
	if err != nil {
		return err
	}

	matched, err := s.categoryRepo.GetByNameForUser(userID, goal.GoalName)
	if err != nil {
		return err
	}
	if goal.CategoryID != nil {
		linked := false
		for _, cat := range matched {
			if cat.ID == *goal.CategoryID {
				linked = true
				break
			}
		}
		if !linked {
			cat, err := s.categoryRepo.GetByID(*goal.CategoryID)
			if err != nil && !errors.Is(err, domain.ErrCategoryNotFound) {
				return err
			}
			if err == nil && cat.DeletedAt == nil {
				matched = append(matched, cat)
			}
		}
	}

	for _, cat := range matched {
		if err := s.foldIntoExtra(cat); err != nil {
			return err
		}
	}

	if err := s.savingsRepo.Delete(id); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("savings_id", id).
		Int("folded_categories", len(matched)).
		Msg("Savings goal deleted")

	s.publishEvent(userID, websocket.SavingsDeleted(map[string]int32{"id": id}))
	return nil
}

// foldIntoExtra moves a category's amount into its budget's "Extra"
// bucket and removes the category, atomically
func (s *SavingsService) foldIntoExtra(cat *domain.Category) error {
	plan := &domain.ReconcilePlan{
		BudgetID: cat.BudgetID,
		Deletes:  []*domain.Category{cat},
	}

	siblings, err := s.categoryRepo.GetByBudget(cat.BudgetID)
	if err != nil {
		return err
	}

	var extra *domain.Category
	for _, sib := range siblings {
		if sib.Name == domain.ExtraCategoryName && sib.ID != cat.ID {
			extra = sib
			break
		}
	}

	if extra != nil {
		id := extra.ID
		plan.Upserts = append(plan.Upserts, domain.CategoryUpsert{
			CategoryID:  &id,
			Name:        extra.Name,
			Amount:      extra.Amount.Add(cat.Amount),
			Description: extra.Description,
		})
	} else {
		desc := "Extra funds"
		plan.Upserts = append(plan.Upserts, domain.CategoryUpsert{
			Name:        domain.ExtraCategoryName,
			Amount:      cat.Amount,
			Description: &desc,
		})
	}

	return s.store.Apply(plan)
}

func (s *SavingsService) renameLinkedCategory(userID uuid.UUID, goal *domain.Savings, newName string) (*int32, error) {
	var category *domain.Category
	if goal.CategoryID != nil {
		cat, err := s.categoryRepo.GetByID(*goal.CategoryID)
		if err == nil && cat.DeletedAt == nil {
			category = cat
		}
	}
	if category == nil {
		matched, err := s.matchCategory(userID, goal.GoalName)
		if err != nil {
			return nil, err
		}
		category = matched
	}
	if category == nil {
		return nil, nil
	}

	renamed, err := s.categoryRepo.UpdateNameDescription(category.ID, newName, nil)
	if err != nil {
		return nil, err
	}
	return &renamed.ID, nil
}

func (s *SavingsService) matchCategory(userID uuid.UUID, goalName string) (*domain.Category, error) {
	matched, err := s.categoryRepo.GetByNameForUser(userID, goalName)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return matched[0], nil
}

func (s *SavingsService) getOwned(userID uuid.UUID, id int32) (*domain.Savings, error) {
	goal, err := s.savingsRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return goal, nil
}
