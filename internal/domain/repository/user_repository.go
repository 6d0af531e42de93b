package repository

import (
	"context"
	"errors"

	"accounthub/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when the users_username_key constraint
	// rejects a write. Handlers surface it as a field error, not a fault.
	ErrDuplicateUsername = errors.New("username already taken")
)

// UserRepository defines user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
