package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is derived from exactly one income entry. TotalExpenses is a
// snapshot of the income amount at creation time and is never recomputed.
type Budget struct {
	ID            int32           `json:"id"`
	IncomeID      int32           `json:"incomeId"`
	Name          string          `json:"name"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Description   *string         `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// OwnerID is the owning user of the budget's income, resolved by the
	// repository in the same query.
	OwnerID uuid.UUID `json:"-"`
}

// BudgetUpdate carries the whitelisted mutable fields. Everything else is
// fixed at creation time.
type BudgetUpdate struct {
	Name        *string
	EndDate     *time.Time
	Description *string
}

type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(id int32) (*Budget, error)
	GetByIncomeID(incomeID int32) (*Budget, error)
	ExistsForIncome(incomeID int32) (bool, error)
	Update(id int32, update *BudgetUpdate) (*Budget, error)
	// Delete removes the budget and soft-deletes its categories.
	Delete(id int32) error
}
