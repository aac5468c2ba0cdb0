package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies the identity provider a user signed up with
type AuthProvider string

const (
	ProviderEmail    AuthProvider = "email"
	ProviderGoogle   AuthProvider = "google"
	ProviderGithub   AuthProvider = "github"
	ProviderLinkedin AuthProvider = "linkedin"
)

// ProviderFromSubject derives the auth provider from an Auth0 subject
// (e.g. "google-oauth2|1234" -> google). Unknown prefixes fall back to email.
func ProviderFromSubject(sub string) AuthProvider {
	prefix, _, found := strings.Cut(sub, "|")
	if !found {
		return ProviderEmail
	}
	switch prefix {
	case "google-oauth2":
		return ProviderGoogle
	case "github":
		return ProviderGithub
	case "linkedin":
		return ProviderLinkedin
	default:
		return ProviderEmail
	}
}

// User represents a user in the system
type User struct {
	ID           uuid.UUID    `json:"id"`
	AuthID       string       `json:"-"`
	Email        string       `json:"email"`
	Name         *string      `json:"name"`
	Bio          *string      `json:"bio"`
	AvatarPath   *string      `json:"-"`
	IsPrivate    bool         `json:"isPrivate"`
	AuthProvider AuthProvider `json:"authProvider"`
	JoinedAt     time.Time    `json:"joinedAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetByAuthID(authID string) (*User, error)
	CreateOrGetByAuthID(authID, email string, name *string, provider AuthProvider) (*User, error)
	UpdateProfile(id uuid.UUID, name, bio *string, isPrivate *bool) (*User, error)
	UpdateAvatarPath(id uuid.UUID, avatarPath *string) (*User, error)
}
