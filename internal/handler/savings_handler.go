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

// SavingsHandler handles savings-goal HTTP requests
type SavingsHandler struct {
	savingsService *service.SavingsService
}

// NewSavingsHandler creates a new SavingsHandler
func NewSavingsHandler(savingsService *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService}
}

// CreateSavingsRequest represents the create savings request body
type CreateSavingsRequest struct {
	GoalName     string  `json:"goalName"`
	TargetAmount *string `json:"targetAmount,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// UpdateSavingsRequest represents the update savings request body. The
// saved amount is absent on purpose; it only moves through category
// reconciliation.
type UpdateSavingsRequest struct {
	GoalName     *string `json:"goalName"`
	TargetAmount *string `json:"targetAmount"`
	Description  *string `json:"description"`
}

func parseOptionalDecimal(raw *string, field string) (*decimal.Decimal, []ValidationError) {
	if raw == nil {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, []ValidationError{{Field: field, Message: "Must be a valid decimal number"}}
	}
	return &value, nil
}

// CreateSavings handles POST /api/v1/savings
func (h *SavingsHandler) CreateSavings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateSavingsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	target, verrs := parseOptionalDecimal(req.TargetAmount, "targetAmount")
	if verrs != nil {
		return NewValidationError(c, "Invalid target amount", verrs)
	}

	created, err := h.savingsService.CreateSavings(userID, req.GoalName, target, req.Description)
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "goalName", Message: "Goal name is required"},
			})
		}
		if errors.Is(err, domain.ErrSavingsExists) {
			return NewConflictError(c, "A savings goal with this name already exists")
		}
		if errors.Is(err, domain.ErrTargetBelowSaved) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "targetAmount", Message: "Target cannot be below the amount already saved"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create savings goal")
		return NewInternalError(c, "Failed to create savings goal")
	}

	return c.JSON(http.StatusCreated, created)
}

// GetAllSavings handles GET /api/v1/savings with search and page params
func (h *SavingsHandler) GetAllSavings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.SavingsFilters{
		Search:   c.QueryParam("search"),
		Page:     parsePageParam(c.QueryParam("page")),
		PageSize: parsePageParam(c.QueryParam("pageSize")),
	}

	result, err := h.savingsService.GetAllSavings(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list savings goals")
		return NewInternalError(c, "Failed to list savings goals")
	}

	return c.JSON(http.StatusOK, result)
}

// GetSavings handles GET /api/v1/savings/:id
func (h *SavingsHandler) GetSavings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid savings ID", nil)
	}

	goal, err := h.savingsService.GetSavings(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrSavingsNotFound) {
			return NewNotFoundError(c, "Savings goal not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Savings goal belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("savings_id", id).Msg("Failed to get savings goal")
		return NewInternalError(c, "Failed to get savings goal")
	}

	return c.JSON(http.StatusOK, goal)
}

// UpdateSavings handles PUT /api/v1/savings/:id
func (h *SavingsHandler) UpdateSavings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid savings ID", nil)
	}

	var req UpdateSavingsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	target, verrs := parseOptionalDecimal(req.TargetAmount, "targetAmount")
	if verrs != nil {
		return NewValidationError(c, "Invalid target amount", verrs)
	}

	update := &domain.SavingsUpdate{
		GoalName:     req.GoalName,
		TargetAmount: target,
		Description:  req.Description,
	}

	updated, err := h.savingsService.UpdateSavings(userID, int32(id), update)
	if err != nil {
		if errors.Is(err, domain.ErrSavingsNotFound) {
			return NewNotFoundError(c, "Savings goal not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Savings goal belongs to another user")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "goalName", Message: "Goal name is required"},
			})
		}
		if errors.Is(err, domain.ErrTargetBelowSaved) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "targetAmount", Message: "Target cannot be below the amount already saved"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("savings_id", id).Msg("Failed to update savings goal")
		return NewInternalError(c, "Failed to update savings goal")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteSavings handles DELETE /api/v1/savings/:id. Matching categories
// are folded into their budget's "Extra" bucket so totals are preserved.
func (h *SavingsHandler) DeleteSavings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid savings ID", nil)
	}

	if err := h.savingsService.DeleteSavings(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrSavingsNotFound) {
			return NewNotFoundError(c, "Savings goal not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Savings goal belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("savings_id", id).Msg("Failed to delete savings goal")
		return NewInternalError(c, "Failed to delete savings goal")
	}

	return c.NoContent(http.StatusNoContent)
}
