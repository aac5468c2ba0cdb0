package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Income amount bounds enforced at creation and update time
var (
	MinIncomeAmount = decimal.NewFromInt(1000)
	MaxIncomeAmount = decimal.NewFromInt(1_000_000_000)
)

// ValidateIncomeAmount checks an income amount against the allowed range
func ValidateIncomeAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinIncomeAmount) || amount.GreaterThan(MaxIncomeAmount) {
		return ErrAmountOutOfRange
	}
	return nil
}

type Income struct {
	ID           int32           `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	Amount       decimal.Decimal `json:"amount"`
	Source       string          `json:"source"`
	DateReceived time.Time       `json:"dateReceived"`
	Description  *string         `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IncomeUpdate carries the partial-update fields for an income entry.
// Nil fields are left untouched.
type IncomeUpdate struct {
	Amount       *decimal.Decimal
	Source       *string
	DateReceived *time.Time
	Description  *string
}

// IncomeFilters holds list filters; Search matches source or description
type IncomeFilters struct {
	Search   string
	Page     int32
	PageSize int32
}

type PaginatedIncomes struct {
	Data       []*Income `json:"data"`
	Page       int32     `json:"page"`
	PageSize   int32     `json:"pageSize"`
	TotalItems int64     `json:"totalItems"`
	TotalPages int32     `json:"totalPages"`
}

type IncomeRepository interface {
	Create(income *Income) (*Income, error)
	GetByID(id int32) (*Income, error)
	GetByUser(userID uuid.UUID, filters *IncomeFilters) (*PaginatedIncomes, error)
	Update(id int32, update *IncomeUpdate) (*Income, error)
	Delete(id int32) error
}
