package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philiptitus/bridger/internal/domain"
)

// ReconcileStore applies a whole reconciliation plan in one transaction so
// a failed write never leaves the budget half-updated.
type ReconcileStore struct {
	pool *pgxpool.Pool
}

// NewReconcileStore creates a new ReconcileStore
func NewReconcileStore(pool *pgxpool.Pool) *ReconcileStore {
	return &ReconcileStore{pool: pool}
}

// Apply runs the plan's category deletes, savings debits, category upserts
// and savings upserts atomically. Savings upserts without a resolved
// category reference are linked to the category of the same name written
// in this plan.
func (s *ReconcileStore) Apply(plan *domain.ReconcilePlan) error {
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, cat := range plan.Deletes {
		_, err := tx.Exec(ctx,
			`UPDATE categories SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, cat.ID)
		if err != nil {
			return fmt.Errorf("failed to delete category %d: %w", cat.ID, err)
		}
	}

	for _, debit := range plan.SavingsDebits {
		amount, err := decimalToPgNumeric(debit.Amount)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE savings SET amount_saved = amount_saved - $2, updated_at = now() WHERE id = $1`,
			debit.SavingsID, amount)
		if err != nil {
			return fmt.Errorf("failed to debit savings %d: %w", debit.SavingsID, err)
		}
	}

	categoryIDs := make(map[string]int32, len(plan.Upserts))
	for _, up := range plan.Upserts {
		amount, err := decimalToPgNumeric(up.Amount)
		if err != nil {
			return err
		}
		if up.CategoryID != nil {
			_, err = tx.Exec(ctx, `
				UPDATE categories
				SET name = $2, amount = $3, description = COALESCE($4, description), updated_at = now()
				WHERE id = $1`,
				*up.CategoryID, up.Name, amount, textFromPtr(up.Description))
			if err != nil {
				return fmt.Errorf("failed to update category %d: %w", *up.CategoryID, err)
			}
			categoryIDs[up.Name] = *up.CategoryID
			continue
		}
		var id int32
		err = tx.QueryRow(ctx, `
			INSERT INTO categories (budget_id, name, description, amount)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			plan.BudgetID, up.Name, textFromPtr(up.Description), amount).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to create category %q: %w", up.Name, err)
		}
		categoryIDs[up.Name] = id
	}

	for _, up := range plan.SavingsUpserts {
		amountSaved, err := decimalToPgNumeric(up.AmountSaved)
		if err != nil {
			return err
		}
		categoryID := int4FromPtr(up.CategoryID)
		if !categoryID.Valid {
			if id, ok := categoryIDs[up.CategoryName]; ok {
				categoryID = pgtype.Int4{Int32: id, Valid: true}
			}
		}
		if up.SavingsID != nil {
			_, err = tx.Exec(ctx, `
				UPDATE savings
				SET amount_saved = $2, category_id = $3,
				    description = COALESCE($4, description), updated_at = now()
				WHERE id = $1`,
				*up.SavingsID, amountSaved, categoryID, textFromPtr(up.Description))
			if err != nil {
				return fmt.Errorf("failed to update savings %d: %w", *up.SavingsID, err)
			}
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO savings (user_id, goal_name, target_amount, amount_saved, description, category_id)
			SELECT i.user_id, $2, 0, $3, $4, $5
			FROM budgets b JOIN incomes i ON i.id = b.income_id
			WHERE b.id = $1`,
			plan.BudgetID, up.GoalName, amountSaved, textFromPtr(up.Description), categoryID)
		if err != nil {
			return fmt.Errorf("failed to create savings %q: %w", up.GoalName, err)
		}
	}

	return tx.Commit(ctx)
}
