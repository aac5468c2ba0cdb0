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
	"github.com/shopspring/decimal"
)

// IncomeHandler handles income-related HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest represents the create income request body. Amounts
// travel as strings to avoid float rounding.
type CreateIncomeRequest struct {
	Amount       string  `json:"amount"`
	Source       string  `json:"source"`
	DateReceived string  `json:"dateReceived,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// UpdateIncomeRequest represents the update income request body. Nil
// fields are left untouched.
type UpdateIncomeRequest struct {
	Amount       *string `json:"amount"`
	Source       *string `json:"source"`
	DateReceived *string `json:"dateReceived"`
	Description  *string `json:"description"`
}

// CreateIncome handles POST /api/v1/incomes
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	income := &domain.Income{
		Amount:      amount,
		Source:      req.Source,
		Description: req.Description,
	}
	if req.DateReceived != "" {
		date, err := time.Parse("2006-01-02", req.DateReceived)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "dateReceived", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		income.DateReceived = date
	}

	created, err := h.incomeService.CreateIncome(userID, income)
	if err != nil {
		if errors.Is(err, domain.ErrAmountOutOfRange) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be between 1,000 and 1,000,000,000"},
			})
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "source", Message: "Source is required"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create income")
		return NewInternalError(c, "Failed to create income")
	}

	return c.JSON(http.StatusCreated, created)
}

// GetIncomes handles GET /api/v1/incomes with search and page query params
func (h *IncomeHandler) GetIncomes(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.IncomeFilters{
		Search:   c.QueryParam("search"),
		Page:     parsePageParam(c.QueryParam("page")),
		PageSize: parsePageParam(c.QueryParam("pageSize")),
	}

	result, err := h.incomeService.GetIncomes(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list incomes")
		return NewInternalError(c, "Failed to list incomes")
	}

	return c.JSON(http.StatusOK, result)
}

// GetIncome handles GET /api/v1/incomes/:id, returning the income with
// its derived budget and that budget's categories when present
func (h *IncomeHandler) GetIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	detail, err := h.incomeService.GetIncomeDetail(userID, int32(id))
	if err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Income belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("income_id", id).Msg("Failed to get income")
		return NewInternalError(c, "Failed to get income")
	}

	return c.JSON(http.StatusOK, detail)
}

// UpdateIncome handles PUT /api/v1/incomes/:id
func (h *IncomeHandler) UpdateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	var req UpdateIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	update := &domain.IncomeUpdate{
		Source:      req.Source,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be a valid decimal number"},
			})
		}
		update.Amount = &amount
	}
	if req.DateReceived != nil {
		date, err := time.Parse("2006-01-02", *req.DateReceived)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "dateReceived", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		update.DateReceived = &date
	}

	updated, err := h.incomeService.UpdateIncome(userID, int32(id), update)
	if err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Income belongs to another user")
		}
		if errors.Is(err, domain.ErrAmountOutOfRange) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be between 1,000 and 1,000,000,000"},
			})
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "source", Message: "Source is required"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("income_id", id).Msg("Failed to update income")
		return NewInternalError(c, "Failed to update income")
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteIncome handles DELETE /api/v1/incomes/:id. The derived budget and
// its categories go with it.
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	if err := h.incomeService.DeleteIncome(userID, int32(id)); err != nil {
		if errors.Is(err, domain.ErrIncomeNotFound) {
			return NewNotFoundError(c, "Income not found")
		}
		if errors.Is(err, domain.ErrForbidden) {
			return NewForbiddenError(c, "Income belongs to another user")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("income_id", id).Msg("Failed to delete income")
		return NewInternalError(c, "Failed to delete income")
	}

	return c.NoContent(http.StatusNoContent)
}

// parsePageParam parses a positive integer query param, returning 0 (use
// defaults) on anything else
func parsePageParam(raw string) int32 {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return int32(n)
}
