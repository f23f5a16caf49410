package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

type scriptRepository struct {
	db *gorm.DB
}

// NewScriptRepository creates a new ScriptRepository.
func NewScriptRepository(db *gorm.DB) ScriptRepository {
	return &scriptRepository{db: db}
}

func (r *scriptRepository) GetActive(ctx context.Context) (*entities.Script, error) {
	return firstActive(r.db.WithContext(ctx))
}

func firstActive(db *gorm.DB) (*entities.Script, error) {
	var script entities.Script
	err := db.Where("is_active = ?", true).Order("id ASC").First(&script).Error
	if err != nil {
		return nil, notFound(err, ErrScriptNotFound)
	}
	return &script, nil
}

func (r *scriptRepository) SaveActive(ctx context.Context, title, content string, author uint) (*entities.Script, bool, error) {
	var (
		saved   *entities.Script
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := firstActive(tx)
		switch {
		case err == nil:
			active.Title = title
			active.Content = content
			if err := tx.Model(active).Select("title", "content", "updated_at").Updates(active).Error; err != nil {
				return err
			}
			saved = active
			return nil
		case stderrors.Is(err, ErrScriptNotFound):
			script := &entities.Script{Title: title, Content: content, IsActive: true, CreatedBy: &author}
			if err := tx.Create(script).Error; err != nil {
				return err
			}
			saved, created = script, true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

func (r *scriptRepository) EnsureActive(ctx context.Context, script *entities.Script) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := firstActive(tx)
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, ErrScriptNotFound) {
			return err
		}
		script.IsActive = true
		if err := tx.Create(script).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (r *scriptRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Script{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}
