package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/middleware"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CategoryHandler handles category-related HTTP requests. Creation goes
// through the reconciliation engine; direct edits only touch name and
// description.
type CategoryHandler struct {
	reconcileService *service.ReconcileService
	categoryService  *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(reconcileService *service.ReconcileService, categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		reconcileService: reconcileService,
		categoryService:  categoryService,
	}
}

// CreateCategoryRequest represents the create category request body. The
// description is the free-text instruction driving the rebalance; name and
// amount are optional context for a category the description introduces.
type CreateCategoryRequest struct {
	BudgetID    int32  `json:"budgetId"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"`
	Amount      string `json:"amount,omitempty"`
}

// UpdateCategoryRequest represents the update category request body.
// Amounts are deliberately absent; they only change via reconciliation.
type UpdateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CreateCategory handles POST /api/v1/categories. The budget's whole
// category set is rebalanced against the expense ceiling from the
// request's free-text description, so the response carries every category,
// not just new ones.
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount := decimal.Zero
	if req.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
	}

	result, err := h.reconcileService.CreateCategory(c.Request().Context(), userID, req.BudgetID, req.Description, req.Name, amount)
	if err != nil {
		if errors.Is(err, domain.ErrDescriptionRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Description is required"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Budget belongs to another user")
		}
		if errors.Is(err, domain.ErrBudgetExceeded) {
			return NewValidationError(c, "Rebalanced total exceeds the budget's total expenses", nil)
		}
		if errors.Is(err, domain.ErrOracleUnparsable) {
			return NewBadGatewayError(c, "The rebalancing service returned an unusable answer")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("budget_id", req.BudgetID).Msg("Failed to create category")
		return NewBadGatewayError(c, "Failed to rebalance the budget")
	}

	return c.JSON(http.StatusCreated, result)
}

// GetCategory handles GET /api/v1/categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategory(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Category belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("category_id", id).Msg("Failed to get category")
		return NewInternalError(c, "Failed to get category")
	}

	return c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /api/v1/categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	updated, err := h.categoryService.UpdateCategory(userID, int32(id), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required and must be 255 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Category belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("category_id", id).Msg("Failed to update category")
		return NewInternalError(c, "Failed to update category")
	}

	return c.JSON(http.StatusOK, updated)
}
