package recordings

import (
	"context"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/securefs"
)

// KeySource lists the recording keys that are still referenced.
type KeySource interface {
	RecordingKeys(ctx context.Context) ([]string, error)
}

// Orphans returns stored recordings that no key in src references. A blob
// becomes an orphan when its submission insert failed after the upload was
// written.
func (s *Store) Orphans(ctx context.Context, src KeySource) ([]securefs.FileInfo, error) {
	keys, err := src.RecordingKeys(ctx)
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryDatabase).
			Context("operation", "recording_keys").
			Build()
	}
	referenced := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		referenced[k] = struct{}{}
	}

	files, err := s.List()
	if err != nil {
		return nil, err
	}
	var orphans []securefs.FileInfo
	for _, f := range files {
		if _, ok := referenced[f.Name]; !ok {
			orphans = append(orphans, f)
		}
	}
	return orphans, nil
}

// RemoveOrphans deletes every orphan and returns the keys removed. It stops
// at the first failure or when ctx is cancelled.
func (s *Store) RemoveOrphans(ctx context.Context, src KeySource) ([]string, error) {
	orphans, err := s.Orphans(ctx, src)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(orphans))
	for _, o := range orphans {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.Remove(ctx, o.Name); err != nil {
			return removed, err
		}
		removed = append(removed, o.Name)
	}

	if len(removed) > 0 {
		s.log.WithContext(ctx).Info("orphaned recordings removed", logger.Int("count", len(removed)))
	}
	return removed, nil
}
