package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/shopspring/decimal"
)

const savingsColumns = `id, user_id, goal_name, target_amount, amount_saved, description, category_id, created_at, updated_at`

// SavingsRepository implements domain.SavingsRepository using PostgreSQL
type SavingsRepository struct {
	pool *pgxpool.Pool
}

// NewSavingsRepository creates a new SavingsRepository
func NewSavingsRepository(pool *pgxpool.Pool) *SavingsRepository {
	return &SavingsRepository{pool: pool}
}

func scanSavings(row pgx.Row) (*domain.Savings, error) {
	var (
		s            domain.Savings
		targetAmount pgtype.Numeric
		amountSaved  pgtype.Numeric
		description  pgtype.Text
		categoryID   pgtype.Int4
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(&s.ID, &s.UserID, &s.GoalName, &targetAmount, &amountSaved, &description, &categoryID, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSavingsNotFound
		}
		return nil, err
	}
	s.TargetAmount = pgNumericToDecimalPtr(targetAmount)
	s.AmountSaved = pgNumericToDecimal(amountSaved)
	s.Description = textToPtr(description)
	s.CategoryID = int4ToPtr(categoryID)
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}

// Create persists a new savings goal
func (r *SavingsRepository) Create(savings *domain.Savings) (*domain.Savings, error) {
	targetAmount, err := decimalPtrToPgNumeric(savings.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	amountSaved, err := decimalToPgNumeric(savings.AmountSaved)
	if err != nil {
		return nil, fmt.Errorf("invalid amount saved: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO savings (user_id, goal_name, target_amount, amount_saved, description, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+savingsColumns,
		savings.UserID, savings.GoalName, targetAmount, amountSaved,
		textFromPtr(savings.Description), int4FromPtr(savings.CategoryID))
	return scanSavings(row)
}

// GetByID retrieves a savings goal by ID
func (r *SavingsRepository) GetByID(id int32) (*domain.Savings, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+savingsColumns+` FROM savings WHERE id = $1`, id)
	return scanSavings(row)
}

// GetByGoalName retrieves a user's goal by its exact name
func (r *SavingsRepository) GetByGoalName(userID uuid.UUID, goalName string) (*domain.Savings, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+savingsColumns+` FROM savings WHERE user_id = $1 AND goal_name = $2`, userID, goalName)
	return scanSavings(row)
}

// GetByUser retrieves a user's goals with search and pagination
func (r *SavingsRepository) GetByUser(userID uuid.UUID, filters *domain.SavingsFilters) (*domain.PaginatedSavings, error) {
	ctx := context.Background()

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	search := ""
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
		search = filters.Search
	}
	offset := (page - 1) * pageSize

	where := `user_id = $1 AND ($2 = '' OR goal_name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`

	var totalItems int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM savings WHERE `+where, userID, search).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+savingsColumns+` FROM savings WHERE `+where+`
		 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		userID, search, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*domain.Savings
	for rows.Next() {
		goal, err := scanSavings(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedSavings{
		Data:       goals,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// Update rewrites the goal's mutable fields and category back-reference
func (r *SavingsRepository) Update(id int32, goalName string, targetAmount *decimal.Decimal, description *string, categoryID *int32) (*domain.Savings, error) {
	target, err := decimalPtrToPgNumeric(targetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		UPDATE savings
		SET goal_name = $2,
		    target_amount = COALESCE($3, target_amount),
		    description = COALESCE($4, description),
		    category_id = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+savingsColumns,
		id, goalName, target, textFromPtr(description), int4FromPtr(categoryID))
	return scanSavings(row)
}

// Delete removes a savings goal
func (r *SavingsRepository) Delete(id int32) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM savings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSavingsNotFound
	}
	return nil
}
