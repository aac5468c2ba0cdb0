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

const incomeColumns = `id, user_id, amount, source, date_received, description, created_at, updated_at`

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		in           domain.Income
		amount       pgtype.Numeric
		dateReceived pgtype.Date
		description  pgtype.Text
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(&in.ID, &in.UserID, &amount, &in.Source, &dateReceived, &description, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	in.Amount = pgNumericToDecimal(amount)
	in.DateReceived = dateReceived.Time
	in.Description = textToPtr(description)
	in.CreatedAt = createdAt.Time
	in.UpdatedAt = updatedAt.Time
	return &in, nil
}

// Create persists a new income entry
func (r *IncomeRepository) Create(income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO incomes (user_id, amount, source, date_received, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+incomeColumns,
		income.UserID, amount, income.Source,
		pgtype.Date{Time: income.DateReceived, Valid: true},
		textFromPtr(income.Description))
	return scanIncome(row)
}

// GetByID retrieves an income entry by its ID
func (r *IncomeRepository) GetByID(id int32) (*domain.Income, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+incomeColumns+` FROM incomes WHERE id = $1`, id)
	return scanIncome(row)
}

// GetByUser retrieves a user's income entries with search and pagination
func (r *IncomeRepository) GetByUser(userID uuid.UUID, filters *domain.IncomeFilters) (*domain.PaginatedIncomes, error) {
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

	where := `user_id = $1 AND ($2 = '' OR source ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`

	var totalItems int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM incomes WHERE `+where, userID, search).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE `+where+`
		 ORDER BY date_received DESC, id DESC LIMIT $3 OFFSET $4`,
		userID, search, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []*domain.Income
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedIncomes{
		Data:       incomes,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// Update partial-updates an income entry
func (r *IncomeRepository) Update(id int32, update *domain.IncomeUpdate) (*domain.Income, error) {
	amount, err := decimalPtrToPgNumeric(update.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	var dateReceived pgtype.Date
	if update.DateReceived != nil {
		dateReceived = pgtype.Date{Time: *update.DateReceived, Valid: true}
	}
	row := r.pool.QueryRow(context.Background(), `
		UPDATE incomes
		SET amount = COALESCE($2, amount),
		    source = COALESCE($3, source),
		    date_received = COALESCE($4, date_received),
		    description = COALESCE($5, description),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+incomeColumns,
		id, amount, textFromPtr(update.Source), dateReceived, textFromPtr(update.Description))
	return scanIncome(row)
}

// Delete removes an income entry; its budget and categories cascade
func (r *IncomeRepository) Delete(id int32) error {
	tag, err := r.pool.Exec(context.Background(), `DELETE FROM incomes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}
