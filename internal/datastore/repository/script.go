package repository

import (
	"context"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// ScriptRepository keeps at most one active script by updating the active
// row in place instead of inserting a replacement.
type ScriptRepository interface {
	// GetActive returns ErrScriptNotFound when no active script exists.
	GetActive(ctx context.Context) (*entities.Script, error)

	// SaveActive updates the active script's title and content, or creates
	// the active script when there is none. created reports which happened.
	SaveActive(ctx context.Context, title, content string, author uint) (script *entities.Script, created bool, err error)

	// EnsureActive creates the active script only if none exists.
	EnsureActive(ctx context.Context, script *entities.Script) (created bool, err error)

	// CountActive counts rows with is_active set.
	CountActive(ctx context.Context) (int64, error)
}
