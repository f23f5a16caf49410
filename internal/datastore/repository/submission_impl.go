package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *entities.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&entities.Submission{}).
			Where("customer_id = ?", sub.CustomerID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrSubmissionExists
		}

		if err := tx.Create(sub).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrSubmissionExists
			}
			return err
		}

		return tx.Model(&entities.Customer{}).
			Where("id = ?", sub.CustomerID).
			Update("call_status", entities.CallStatusCompleted).Error
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (*entities.Submission, error) {
	var sub entities.Submission
	if err := r.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	return &sub, nil
}

func (r *submissionRepository) GetByCustomer(ctx context.Context, customerID uint) (*entities.Submission, error) {
	var sub entities.Submission
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&sub).Error
	if err != nil {
		return nil, notFound(err, ErrSubmissionNotFound)
	}
	return &sub, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]*entities.Submission, error) {
	q := r.db.WithContext(ctx).Model(&entities.Submission{})
	switch filter {
	case SubmissionFilterAbnormal:
		q = q.Where("final_status = ?", entities.FinalStatusAbnormal)
	case SubmissionFilterPending:
		q = q.Where("admin_status = ?", entities.AdminStatusPending)
	case SubmissionFilterResolved:
		q = q.Where("admin_status = ?", entities.AdminStatusResolved)
	}

	var subs []*entities.Submission
	err := q.Order("created_at DESC").Order("id DESC").Find(&subs).Error
	return subs, err
}

func (r *submissionRepository) Resolve(ctx context.Context, id uint) (*entities.Submission, error) {
	var sub entities.Submission
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, id).Error; err != nil {
			return notFound(err, ErrSubmissionNotFound)
		}
		if sub.AdminStatus == entities.AdminStatusResolved {
			return nil
		}
		sub.AdminStatus = entities.AdminStatusResolved
		return tx.Model(&sub).Update("admin_status", entities.AdminStatusResolved).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) Stats(ctx context.Context) (SubmissionStats, error) {
	var stats SubmissionStats
	db := r.db.WithContext(ctx)

	counts := []struct {
		dst   *int64
		query string
		arg   any
	}{
		{&stats.Total, "", nil},
		{&stats.Normal, "final_status = ?", entities.FinalStatusNormal},
		{&stats.Abnormal, "final_status = ?", entities.FinalStatusAbnormal},
		{&stats.Pending, "admin_status = ?", entities.AdminStatusPending},
		{&stats.Resolved, "admin_status = ?", entities.AdminStatusResolved},
	}
	for _, c := range counts {
		q := db.Model(&entities.Submission{})
		if c.query != "" {
			q = q.Where(c.query, c.arg)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return SubmissionStats{}, err
		}
	}
	return stats, nil
}

func (r *submissionRepository) RecordingKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("recording_file <> ?", "").
		Pluck("recording_file", &keys).Error
	return keys, err
}

func (r *submissionRepository) HasRecording(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("recording_file = ?", key).
		Count(&count).Error
	return count > 0, err
}

func (r *submissionRepository) CountByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Submission{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}
