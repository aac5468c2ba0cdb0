package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtraCategoryName is the shared bucket that receives unallocated amounts
// and balances transferred from deleted savings goals.
const ExtraCategoryName = "Extra"

type Category struct {
	ID          int32           `json:"id"`
	BudgetID    int32           `json:"budgetId"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt,omitempty"`
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(id int32) (*Category, error)
	// GetByBudget returns the live (non-deleted) categories of a budget.
	GetByBudget(budgetID int32) ([]*Category, error)
	// GetByNameForUser returns live categories with the exact name across
	// all budgets owned by the user.
	GetByNameForUser(userID uuid.UUID, name string) ([]*Category, error)
	UpdateNameDescription(id int32, name string, description *string) (*Category, error)
	SoftDelete(id int32) error
}
