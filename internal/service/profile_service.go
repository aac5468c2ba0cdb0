package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProfileService handles profile-related business logic
type ProfileService struct {
	userRepo     domain.UserRepository
	imageService *ImageService
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo domain.UserRepository, imageService *ImageService) *ProfileService {
	return &ProfileService{userRepo: userRepo, imageService: imageService}
}

// Profile is a user together with presigned avatar links
type Profile struct {
	*domain.User
	Avatar *AvatarURLs `json:"avatar,omitempty"`
}

func (s *ProfileService) withAvatar(ctx context.Context, user *domain.User) *Profile {
	profile := &Profile{User: user}
	if user.AvatarPath != nil {
		urls, err := s.imageService.AvatarURLs(ctx, *user.AvatarPath)
		if err != nil {
			log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to presign avatar")
		} else {
			profile.Avatar = urls
		}
	}
	return profile
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return s.withAvatar(ctx, user), nil
}

// UpdateProfile partial-updates name, bio and privacy
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, bio *string, isPrivate *bool) (*Profile, error) {
	if name != nil && len(*name) > domain.MaxNameLength {
		return nil, domain.ErrNameRequired
	}
	user, err := s.userRepo.UpdateProfile(userID, name, bio, isPrivate)
	if err != nil {
		return nil, err
	}
	return s.withAvatar(ctx, user), nil
}

// UploadAvatar replaces the user's avatar, removing the previous variants
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, filename string) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	basePath, err := s.imageService.UploadAvatar(ctx, userID, data, filename)
	if err != nil {
		return nil, err
	}

	if user.AvatarPath != nil {
		if err := s.imageService.DeleteAvatar(ctx, *user.AvatarPath); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to delete previous avatar")
		}
	}

	updated, err := s.userRepo.UpdateAvatarPath(userID, &basePath)
	if err != nil {
		return nil, err
	}
	return s.withAvatar(ctx, updated), nil
}

// DeleteAvatar removes the user's avatar
func (s *ProfileService) DeleteAvatar(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if user.AvatarPath != nil {
		if err := s.imageService.DeleteAvatar(ctx, *user.AvatarPath); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to delete avatar objects")
		}
	}

	updated, err := s.userRepo.UpdateAvatarPath(userID, nil)
	if err != nil {
		return nil, err
	}
	return s.withAvatar(ctx, updated), nil
}
