package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philiptitus/bridger/internal/domain"
)

// budgetColumns joins through incomes so every read carries the owner
const budgetColumns = `b.id, b.income_id, b.name, b.total_expenses, b.start_date, b.end_date, b.description, b.created_at, b.updated_at, i.user_id`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var (
		b             domain.Budget
		totalExpenses pgtype.Numeric
		startDate     pgtype.Date
		endDate       pgtype.Date
		description   pgtype.Text
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)
	err := row.Scan(&b.ID, &b.IncomeID, &b.Name, &totalExpenses, &startDate, &endDate, &description, &createdAt, &updatedAt, &b.OwnerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	b.TotalExpenses = pgNumericToDecimal(totalExpenses)
	b.StartDate = startDate.Time
	b.EndDate = endDate.Time
	b.Description = textToPtr(description)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

// Create persists a new budget for an income entry
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	totalExpenses, err := decimalToPgNumeric(budget.TotalExpenses)
	if err != nil {
		return nil, fmt.Errorf("invalid total expenses: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budgets (income_id, name, total_expenses, start_date, end_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		budget.IncomeID, budget.Name, totalExpenses,
		pgtype.Date{Time: budget.StartDate, Valid: true},
		pgtype.Date{Time: budget.EndDate, Valid: true},
		textFromPtr(budget.Description))

	var id int32
	if err := row.Scan(&id); err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// GetByID retrieves a budget with its owner resolved
func (r *BudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets b JOIN incomes i ON i.id = b.income_id WHERE b.id = $1`, id)
	return scanBudget(row)
}

// GetByIncomeID retrieves the budget derived from an income entry
func (r *BudgetRepository) GetByIncomeID(incomeID int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+budgetColumns+` FROM budgets b JOIN incomes i ON i.id = b.income_id WHERE b.income_id = $1`, incomeID)
	return scanBudget(row)
}

// ExistsForIncome reports whether an income already has a budget
func (r *BudgetRepository) ExistsForIncome(incomeID int32) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM budgets WHERE income_id = $1)`, incomeID).Scan(&exists)
	return exists, err
}

// Update applies the whitelisted mutable fields
func (r *BudgetRepository) Update(id int32, update *domain.BudgetUpdate) (*domain.Budget, error) {
	var endDate pgtype.Date
	if update.EndDate != nil {
		endDate = pgtype.Date{Time: *update.EndDate, Valid: true}
	}
	tag, err := r.pool.Exec(context.Background(), `
		UPDATE budgets
		SET name = COALESCE($2, name),
		    end_date = COALESCE($3, end_date),
		    description = COALESCE($4, description),
		    updated_at = now()
		WHERE id = $1`,
		id, textFromPtr(update.Name), endDate, textFromPtr(update.Description))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetNotFound
	}
	return r.GetByID(id)
}

// Delete soft-deletes the budget's categories and removes the budget in
// one transaction
func (r *BudgetRepository) Delete(id int32) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE categories SET deleted_at = now() WHERE budget_id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}

	return tx.Commit(ctx)
}
