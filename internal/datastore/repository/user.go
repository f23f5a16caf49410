package repository

import (
	"context"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// UserRepository provides access to the users table.
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicateKey if the username is taken.
	Create(ctx context.Context, user *entities.User) error

	// GetByID returns ErrUserNotFound if no row matches.
	GetByID(ctx context.Context, id uint) (*entities.User, error)

	// GetByUsername returns ErrUserNotFound if no row matches.
	GetByUsername(ctx context.Context, username string) (*entities.User, error)

	// GetByIDs returns the users that exist, keyed by id. Missing ids are absent.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*entities.User, error)

	// ListByRole returns users with the given role ordered by id.
	ListByRole(ctx context.Context, role entities.Role) ([]*entities.User, error)

	// CountByRole counts users with the given role.
	CountByRole(ctx context.Context, role entities.Role) (int64, error)

	// DeleteAndUnassign clears assigned_agent_id on every customer pointing at
	// id, then deletes the user, in one transaction. Submissions are untouched.
	// Returns the number of customers unassigned.
	DeleteAndUnassign(ctx context.Context, id uint) (int64, error)
}
