package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/philiptitus/bridger/internal/middleware"
	"github.com/philiptitus/bridger/internal/service"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profileService *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents the update profile request. Nil fields
// are left untouched.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	IsPrivate *bool   `json:"isPrivate"`
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	profile, err := h.profileService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get profile")
		return NewInternalError(c, "Failed to get profile")
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	profile, err := h.profileService.UpdateProfile(c.Request().Context(), userID, req.Name, req.Bio, req.IsPrivate)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update profile")
		return NewInternalError(c, "Failed to update profile")
	}

	log.Info().Str("user_id", userID.String()).Msg("Profile updated")
	return c.JSON(http.StatusOK, profile)
}

// UploadAvatar handles POST /profile/avatar (multipart form, field "avatar")
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return NewValidationError(c, "Avatar file is required", []ValidationError{
			{Field: "avatar", Message: "Multipart field \"avatar\" is missing"},
		})
	}
	if fileHeader.Size > service.MaxImageSize {
		return NewValidationError(c, service.ErrImageTooLarge.Error(), nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	profile, err := h.profileService.UploadAvatar(c.Request().Context(), userID, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge),
			errors.Is(err, service.ErrInvalidFormat),
			errors.Is(err, service.ErrImageTooSmall),
			errors.Is(err, service.ErrInvalidImageData):
			return NewValidationError(c, err.Error(), nil)
		case errors.Is(err, service.ErrImageStorageNotConfigured):
			return NewInternalError(c, "Avatar storage is not configured")
		case errors.Is(err, domain.ErrUserNotFound):
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to upload avatar")
		return NewInternalError(c, "Failed to upload avatar")
	}

	log.Info().Str("user_id", userID.String()).Msg("Avatar uploaded")
	return c.JSON(http.StatusOK, profile)
}

// DeleteAvatar handles DELETE /profile/avatar
func (h *ProfileHandler) DeleteAvatar(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	profile, err := h.profileService.DeleteAvatar(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to delete avatar")
		return NewInternalError(c, "Failed to delete avatar")
	}

	log.Info().Str("user_id", userID.String()).Msg("Avatar deleted")
	return c.JSON(http.StatusOK, profile)
}
