package domain

import "errors"

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInternalError    = errors.New("internal error")
	ErrUserNotFound     = errors.New("user not found")
	ErrIncomeNotFound   = errors.New("income entry not found")
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSavingsNotFound  = errors.New("savings goal not found")

	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountOutOfRange    = errors.New("amount must be between 1000 and 1 billion")
	ErrNameRequired        = errors.New("name is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrBudgetExists        = errors.New("income entry already has a budget")
	ErrSavingsExists       = errors.New("a savings goal with this name already exists")
	ErrBudgetExceeded      = errors.New("category total exceeds budget total expenses")
	ErrTargetBelowSaved    = errors.New("target amount is below the amount already saved")

	// ErrOracleUnparsable is returned when the text oracle's response yields
	// no valid category lines.
	ErrOracleUnparsable = errors.New("oracle response contained no valid categories")
)

// Validation constants
const (
	MaxNameLength = 255

	DefaultPageSize = 20
	MaxPageSize     = 100
)
