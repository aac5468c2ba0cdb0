package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philiptitus/bridger/internal/domain"
)

const userColumns = `id, auth_id, email, name, bio, avatar_path, is_private, auth_provider, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		name       pgtype.Text
		bio        pgtype.Text
		avatarPath pgtype.Text
		provider   string
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.AuthID, &u.Email, &name, &bio, &avatarPath, &u.IsPrivate, &provider, &createdAt, &updatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Name = textToPtr(name)
	u.Bio = textToPtr(bio)
	u.AvatarPath = textToPtr(avatarPath)
	u.AuthProvider = domain.AuthProvider(provider)
	u.JoinedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByAuthID retrieves a user by their identity-provider subject
func (r *UserRepository) GetByAuthID(authID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		`SELECT `+userColumns+` FROM users WHERE auth_id = $1`, authID)
	return scanUser(row)
}

// CreateOrGetByAuthID provisions the user row on first sight
func (r *UserRepository) CreateOrGetByAuthID(authID, email string, name *string, provider domain.AuthProvider) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (auth_id, email, name, auth_provider)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (auth_id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()
		RETURNING `+userColumns,
		authID, email, textFromPtr(name), string(provider))
	return scanUser(row)
}

// UpdateProfile partial-updates name, bio and privacy. Nil fields are
// left untouched.
func (r *UserRepository) UpdateProfile(id uuid.UUID, name, bio *string, isPrivate *bool) (*domain.User, error) {
	var private pgtype.Bool
	if isPrivate != nil {
		private = pgtype.Bool{Bool: *isPrivate, Valid: true}
	}
	row := r.pool.QueryRow(context.Background(), `
		UPDATE users
		SET name = COALESCE($2, name),
		    bio = COALESCE($3, bio),
		    is_private = COALESCE($4, is_private),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, textFromPtr(name), textFromPtr(bio), private)
	return scanUser(row)
}

// UpdateAvatarPath sets or clears the stored avatar object path
func (r *UserRepository) UpdateAvatarPath(id uuid.UUID, avatarPath *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE users SET avatar_path = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, textFromPtr(avatarPath))
	return scanUser(row)
}
