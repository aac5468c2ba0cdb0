package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalNameSuffix is appended to goal names that don't already end in
// "Savings"/"savings".
const GoalNameSuffix = " Savings"

// NormalizeGoalName ensures a goal name carries the savings suffix
func NormalizeGoalName(name string) string {
	if strings.HasSuffix(name, "Savings") || strings.HasSuffix(name, "savings") {
		return name
	}
	return name + GoalNameSuffix
}

// IsSavingsName reports whether a category name designates a savings goal
func IsSavingsName(name string) bool {
	return strings.Contains(strings.ToLower(name), "savings")
}

// Savings is a goal mirrored into a same-named category in one of the
// user's budgets. CategoryID is the resolved back-reference to that
// category; it is maintained at write time and may be nil for goals that
// have no mirrored category.
type Savings struct {
	ID           int32            `json:"id"`
	UserID       uuid.UUID        `json:"userId"`
	GoalName     string           `json:"goalName"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	AmountSaved  decimal.Decimal  `json:"amountSaved"`
	Description  *string          `json:"description,omitempty"`
	CategoryID   *int32           `json:"categoryId,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// SavingsUpdate carries the partial-update fields for a goal
type SavingsUpdate struct {
	GoalName     *string
	TargetAmount *decimal.Decimal
	Description  *string
}

type SavingsFilters struct {
	Search   string
	Page     int32
	PageSize int32
}

type PaginatedSavings struct {
	Data       []*Savings `json:"data"`
	Page       int32      `json:"page"`
	PageSize   int32      `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int32      `json:"totalPages"`
}

type SavingsRepository interface {
	Create(savings *Savings) (*Savings, error)
	GetByID(id int32) (*Savings, error)
	GetByGoalName(userID uuid.UUID, goalName string) (*Savings, error)
	GetByUser(userID uuid.UUID, filters *SavingsFilters) (*PaginatedSavings, error)
	Update(id int32, goalName string, targetAmount *decimal.Decimal, description *string, categoryID *int32) (*Savings, error)
	Delete(id int32) error
}
