package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MaxOracleAttempts caps how many times the oracle is asked to rebalance
// before the closest answer is accepted or rejected.
const MaxOracleAttempts = 3

// noDescription stands in when the oracle cannot produce a usable
// category description.
const noDescription = "No description available."

// ReconcileService adds categories to a budget by asking the text oracle
// to rebalance all category amounts against the budget's expense ceiling.
type ReconcileService struct {
	budgetRepo     domain.BudgetRepository
	categoryRepo   domain.CategoryRepository
	savingsRepo    domain.SavingsRepository
	store          domain.ReconcileStore
	oracle         domain.TextOracle
	eventPublisher websocket.EventPublisher
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.CategoryRepository,
	savingsRepo domain.SavingsRepository,
	store domain.ReconcileStore,
	oracle domain.TextOracle,
) *ReconcileService {
	return &ReconcileService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		savingsRepo:  savingsRepo,
		store:        store,
		oracle:       oracle,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *ReconcileService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReconcileService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// ReconcileResult reports the outcome of one reconciliation
type ReconcileResult struct {
	Budget     *domain.Budget     `json:"budget"`
	Categories []*domain.Category `json:"categories"`
	Attempts   int                `json:"attempts"`
	Total      decimal.Decimal    `json:"total"`
	Exact      bool               `json:"exact"`
}

// CreateCategory rebalances an owned budget from a free-text description.
// The oracle reads the description against the current category listing and
// the budget's expense ceiling; it may resize existing categories,
// introduce an "Extra" remainder bucket, or mark categories for deletion.
// An optional name/amount pair gives the oracle extra context for a
// category the description introduces. Savings-named categories are
// mirrored into savings goals, and deleted savings-named categories debit
// their goal. All resulting writes are applied in one transaction.
func (s *ReconcileService) CreateCategory(ctx context.Context, userID uuid.UUID, budgetID int32, description, name string, amount decimal.Decimal) (*ReconcileResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.ErrDescriptionRequired
	}
	name = strings.TrimSpace(name)
	if name != "" && !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	budget, err := s.budgetRepo.GetByID(budgetID)
	if err != nil {
		return nil, err
	}
	if budget.OwnerID != userID {
		return nil, domain.ErrForbidden
	}

	existing, err := s.categoryRepo.GetByBudget(budgetID)
	if err != nil {
		return nil, err
	}

	prompt := buildReconcilePrompt(budget, existing, description, name, amount)

	var (
		parsed   []domain.ParsedCategory
		total    decimal.Decimal
		attempts int
		exact    bool
	)
	for attempts = 1; attempts <= MaxOracleAttempts; attempts++ {
		text, err := s.oracle.GenerateText(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("oracle request failed: %w", err)
		}

		candidate, err := domain.ParseOracleResponse(text)
		if err != nil {
			// An unusable answer keeps any earlier parse as the fallback
			if attempts < MaxOracleAttempts {
				prompt = buildRetryPrompt(budget, existing, description, name, amount,
					"Your previous answer contained no valid \"Name: Amount\" lines.")
			}
			continue
		}

		parsed = candidate
		total = domain.SumParsed(parsed)
		if total.Equal(budget.TotalExpenses) {
			exact = true
			break
		}

		log.Warn().
			Int32("budget_id", budgetID).
			Int("attempt", attempts).
			Str("total", total.StringFixed(2)).
			Str("ceiling", budget.TotalExpenses.StringFixed(2)).
			Msg("Oracle total does not match budget ceiling")

		if attempts < MaxOracleAttempts {
			prompt = buildRetryPrompt(budget, existing, description, name, amount, fmt.Sprintf(
				"Your previous answer summed to %s but the amounts must sum to exactly %s.",
				total.StringFixed(2), budget.TotalExpenses.StringFixed(2)))
		}
	}
	if attempts > MaxOracleAttempts {
		attempts = MaxOracleAttempts
	}

	if parsed == nil {
		return nil, domain.ErrOracleUnparsable
	}

	// An inexact answer under the ceiling is accepted best-effort; an
	// answer over the ceiling never is.
	if !exact && total.GreaterThan(budget.TotalExpenses) {
		return nil, domain.ErrBudgetExceeded
	}

	plan := domain.PartitionParsed(budgetID, existing, parsed)
	for i := range plan.Upserts {
		up := &plan.Upserts[i]
		// New categories and existing ones with empty descriptions get an
		// oracle-written one
		if up.Description == nil || strings.TrimSpace(*up.Description) == "" {
			desc := s.describeCategory(ctx, up.Name)
			up.Description = &desc
		}
	}

	if err := s.planSavingsSync(userID, plan); err != nil {
		return nil, err
	}

	if err := s.store.Apply(plan); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.GetByBudget(budgetID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("budget_id", budgetID).
		Int("attempts", attempts).
		Bool("exact", exact).
		Int("categories", len(categories)).
		Msg("Budget reconciled")

	result := &ReconcileResult{
		Budget:     budget,
		Categories: categories,
		Attempts:   attempts,
		Total:      total,
		Exact:      exact,
	}

	s.publishEvent(userID, websocket.CategoryReconciled(result))
	return result, nil
}

// planSavingsSync mirrors savings-named category writes into savings-goal
// writes on the same plan
func (s *ReconcileService) planSavingsSync(userID uuid.UUID, plan *domain.ReconcilePlan) error {
	for _, up := range plan.Upserts {
		if !domain.IsSavingsName(up.Name) {
			continue
		}
		goalName := domain.NormalizeGoalName(up.Name)
		goal, err := s.savingsRepo.GetByGoalName(userID, goalName)
		if err != nil {
			if !errors.Is(err, domain.ErrSavingsNotFound) {
				return err
			}
			plan.SavingsUpserts = append(plan.SavingsUpserts, domain.SavingsUpsert{
				GoalName:     goalName,
				CategoryName: up.Name,
				AmountSaved:  up.Amount,
				Description:  up.Description,
				CategoryID:   up.CategoryID,
			})
			continue
		}
		id := goal.ID
		categoryID := up.CategoryID
		if categoryID == nil {
			categoryID = goal.CategoryID
		}
		plan.SavingsUpserts = append(plan.SavingsUpserts, domain.SavingsUpsert{
			SavingsID:    &id,
			GoalName:     goalName,
			CategoryName: up.Name,
			AmountSaved:  up.Amount,
			Description:  up.Description,
			CategoryID:   categoryID,
		})
	}

	for _, cat := range plan.Deletes {
		if !domain.IsSavingsName(cat.Name) {
			continue
		}
		goal, err := s.savingsRepo.GetByGoalName(userID, domain.NormalizeGoalName(cat.Name))
		if err != nil {
			if errors.Is(err, domain.ErrSavingsNotFound) {
				continue
			}
			return err
		}
		plan.SavingsDebits = append(plan.SavingsDebits, domain.SavingsDebit{
			SavingsID: goal.ID,
			Amount:    cat.Amount,
		})
	}

	return nil
}

// describeCategory asks the oracle for a one-line category description.
// A description is never worth failing the reconciliation over, so any
// failure or odd response shape falls back to a placeholder.
func (s *ReconcileService) describeCategory(ctx context.Context, name string) string {
	prompt := fmt.Sprintf("Describe the personal budget expense category %q in one short sentence. Respond with the sentence only.", name)
	text, err := s.oracle.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("category", name).Msg("Category description generation failed")
		return noDescription
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "\n") {
		return noDescription
	}
	return text
}

func buildReconcilePrompt(budget *domain.Budget, existing []*domain.Category, description, name string, amount decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Update the following budget categories based on the description: '%s'.\n", description)
	fmt.Fprintf(&b, "The budget's total expenses are exactly %s.\n", budget.TotalExpenses.StringFixed(2))

	if len(existing) == 0 {
		b.WriteString("There are no expense categories yet.\n")
	} else {
		b.WriteString("The current expense categories are:\n")
		for _, cat := range existing {
			fmt.Fprintf(&b, "%s: %s\n", cat.Name, cat.Amount.StringFixed(2))
		}
	}

	if name != "" {
		fmt.Fprintf(&b, "Include a category named \"%s\" with amount %s.\n", name, amount.StringFixed(2))
	}

	b.WriteString("Do not generate new categories unless the description asks for them.\n")
	fmt.Fprintf(&b, "Rebalance the category amounts so they sum to exactly %s.\n", budget.TotalExpenses.StringFixed(2))
	b.WriteString("You may resize existing categories, and you may add a category named \"Extra\" to hold any remainder.\n")
	b.WriteString("To remove a category, append DELETE to its name, for example \"TransportDELETE: 0\".\n")
	b.WriteString("Respond ONLY with lines in the form \"Name: Amount\", one category per line, no other text.\n")
	return b.String()
}

func buildRetryPrompt(budget *domain.Budget, existing []*domain.Category, description, name string, amount decimal.Decimal, feedback string) string {
	return buildReconcilePrompt(budget, existing, description, name, amount) + feedback + " Try again.\n"
}
