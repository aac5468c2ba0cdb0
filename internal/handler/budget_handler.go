package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/middleware"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/rs/zerolog/log"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	IncomeID    int32   `json:"incomeId"`
	Name        string  `json:"name"`
	EndDate     string  `json:"endDate"`
	Description *string `json:"description,omitempty"`
}

// UpdateBudgetRequest represents the update budget request body. The
// income link, start date and expense ceiling cannot be changed.
type UpdateBudgetRequest struct {
	Name        *string `json:"name"`
	EndDate     *string `json:"endDate"`
	Description *string `json:"description"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return NewValidationError(c, "Invalid end date", []ValidationError{
			{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	budget, err := h.budgetService.CreateBudget(userID, req.IncomeID, req.Name, endDate, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Income belongs to another user")
		}
		if errors.Is(err, domain.ErrBudgetExists) {
			return NewConflictError(c, "Income already has a budget")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("income_id", req.IncomeID).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	return c.JSON(http.StatusCreated, budget)
}

// GetBudget handles GET /api/v1/budgets/:id, returning the budget with
// its live categories
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	detail, err := h.budgetService.GetBudgetDetail(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Budget belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, detail)
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := &domain.BudgetUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return NewValidationError(c, "Invalid end date", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		update.EndDate = &endDate
	}

	updated, err := h.budgetService.UpdateBudget(userID, int32(id), update)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Budget belongs to another user")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteBudget handles DELETE /api/v1/budgets/:id. Its categories are
// soft-deleted in the same transaction; the income entry survives.
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Budget belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	return c.NoContent(http.StatusNoContent)
}
