package service

import (
	"github.com/google/uuid"
	"github.com/philiptitus/bridger/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService handles authentication-related business logic
type AuthService struct {
	userRepo domain.UserRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	IsNewUser bool
}

// AuthenticateUser handles the flow after the identity-provider callback.
// The user row is provisioned on first sight; the provider is derived from
// the token subject.
func (s *AuthService) AuthenticateUser(authID, email string, name *string) (*AuthResult, error) {
	existing, err := s.userRepo.GetByAuthID(authID)
	isNew := err != nil

	provider := domain.ProviderFromSubject(authID)
	user, err := s.userRepo.CreateOrGetByAuthID(authID, email, name, provider)
	if err != nil {
		log.Error().Err(err).Str("auth_id", authID).Msg("Failed to create or get user")
		return nil, err
	}

	if isNew {
		log.Info().Str("user_id", user.ID.String()).Str("provider", string(provider)).Msg("Provisioned new user")
	} else {
		log.Info().Str("user_id", existing.ID.String()).Msg("Existing user authenticated")
	}

	return &AuthResult{User: user, IsNewUser: isNew}, nil
}

// EnsureUser provisions and returns the user row for a token subject. Used
// by the auth middleware on every request; the underlying upsert is
// idempotent.
func (s *AuthService) EnsureUser(authID, email string, name *string) (*domain.User, error) {
	return s.userRepo.CreateOrGetByAuthID(authID, email, name, domain.ProviderFromSubject(authID))
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(id)
}

// GetUserByAuthID retrieves a user by their identity-provider subject
func (s *AuthService) GetUserByAuthID(authID string) (*domain.User, error) {
	return s.userRepo.GetByAuthID(authID)
}
