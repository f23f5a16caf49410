package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if isDuplicateKey(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*entities.User, error) {
	result := make(map[uint]*entities.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*entities.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role entities.Role) ([]*entities.User, error) {
	var users []*entities.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) CountByRole(ctx context.Context, role entities.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("role = ?", role).
		Count(&count).Error
	return count, err
}

func (r *userRepository) DeleteAndUnassign(ctx context.Context, id uint) (int64, error) {
	var unassigned int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Customer{}).
			Where("assigned_agent_id = ?", id).
			Update("assigned_agent_id", gorm.Expr("NULL"))
		if res.Error != nil {
			return res.Error
		}
		unassigned = res.RowsAffected

		del := tx.Delete(&entities.User{}, id)
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return unassigned, nil
}
