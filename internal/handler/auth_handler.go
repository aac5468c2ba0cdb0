package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/middleware"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// AuthCallbackResponse represents the response from the auth callback
type AuthCallbackResponse struct {
	User      UserResponse `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	IsPrivate    bool    `json:"isPrivate"`
	AuthProvider string  `json:"authProvider"`
	JoinedAt     string  `json:"joinedAt"`
}

// Callback handles the identity-provider callback after successful
// authentication. The frontend calls this once it holds a valid token.
// POST /auth/callback
func (h *AuthHandler) Callback(c echo.Context) error {
	authID := middleware.GetAuthID(c)
	if authID == "" {
		log.Error().Msg("No auth subject in context - middleware may not be configured")
		return NewUnauthorizedError(c, "Authentication required")
	}

	customClaims := middleware.GetCustomClaims(c)
	var email, name string
	if customClaims != nil {
		email = customClaims.Email
		name = customClaims.Name
	}

	if email == "" {
		log.Error().Str("auth_id", authID).Msg("No email in JWT claims")
		return NewValidationError(c, "Email is required for authentication", []ValidationError{
			{Field: "email", Message: "Email claim is missing from token"},
		})
	}

	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	result, err := h.authService.AuthenticateUser(authID, email, namePtr)
	if err != nil {
		log.Error().Err(err).Str("auth_id", authID).Msg("Failed to authenticate user")
		return NewInternalError(c, "Failed to authenticate user")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      toUserResponse(result.User),
		IsNewUser: result.IsNewUser,
	})
}

// Me returns the current authenticated user's information
// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get user")
		return NewNotFoundError(c, "User not found")
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      toUserResponse(user),
		IsNewUser: false,
	})
}

// LogoutResponse represents the response from logout
type LogoutResponse struct {
	Message string `json:"message"`
}

// Logout handles user logout. Session termination happens at the
// identity provider; this is an audit hook.
// POST /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	authID := middleware.GetAuthID(c)
	if authID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	log.Info().Str("auth_id", authID).Msg("User logged out")

	return c.JSON(http.StatusOK, LogoutResponse{Message: "Logged out successfully"})
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		Email:        user.Email,
		Name:         user.Name,
		Bio:          user.Bio,
		IsPrivate:    user.IsPrivate,
		AuthProvider: string(user.AuthProvider),
		JoinedAt:     user.JoinedAt.Format(time.RFC3339),
	}
}
