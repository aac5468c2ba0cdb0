package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philiptitus/bridger/internal/domain"
)

const categoryColumns = `id, budget_id, name, description, amount, created_at, updated_at, deleted_at`

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var (
		c           domain.Category
		description pgtype.Text
		amount      pgtype.Numeric
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
		deletedAt   pgtype.Timestamptz
	)
	err := row.Scan(&c.ID, &c.BudgetID, &c.Name, &description, &amount, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	c.Description = textToPtr(description)
	c.Amount = pgNumericToDecimal(amount)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	return &c, nil
}

// Create persists a new category under a budget
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	amount, err := decimalToPgNumeric(category.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO categories (budget_id, name, description, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		category.BudgetID, category.Name, textFromPtr(category.Description), amount)
	return scanCategory(row)
}

// GetByID retrieves a category by ID, including soft-deleted rows
func (r *CategoryRepository) GetByID(id int32) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

// GetByBudget returns the live categories of a budget
func (r *CategoryRepository) GetByBudget(budgetID int32) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(),
		`SELECT `+categoryColumns+` FROM categories
		 WHERE budget_id = $1 AND deleted_at IS NULL
		 ORDER BY id`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// GetByNameForUser returns live categories with the exact name across all
// budgets owned by the user
func (r *CategoryRepository) GetByNameForUser(userID uuid.UUID, name string) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT c.id, c.budget_id, c.name, c.description, c.amount, c.created_at, c.updated_at, c.deleted_at
		FROM categories c
		JOIN budgets b ON b.id = c.budget_id
		JOIN incomes i ON i.id = b.income_id
		WHERE i.user_id = $1 AND c.name = $2 AND c.deleted_at IS NULL
		ORDER BY c.id`, userID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// UpdateNameDescription renames a live category. Amount changes only flow
// through reconciliation.
func (r *CategoryRepository) UpdateNameDescription(id int32, name string, description *string) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE categories
		SET name = $2, description = COALESCE($3, description), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+categoryColumns,
		id, name, textFromPtr(description))
	return scanCategory(row)
}

// SoftDelete marks a category deleted without removing the row
func (r *CategoryRepository) SoftDelete(id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		`UPDATE categories SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
