package repository

import (
	"context"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// SubmissionRepository provides access to the submissions table.
type SubmissionRepository interface {
	// Create inserts sub and sets the customer's call_status to 해피콜완료 in
	// the same transaction. Returns ErrSubmissionExists if the customer
	// already has a submission, whether caught by the pre-insert check or by
	// the unique index on customer_id.
	Create(ctx context.Context, sub *entities.Submission) error

	// GetByID returns ErrSubmissionNotFound if no row matches.
	GetByID(ctx context.Context, id uint) (*entities.Submission, error)

	// GetByCustomer returns ErrSubmissionNotFound if the customer has none.
	GetByCustomer(ctx context.Context, customerID uint) (*entities.Submission, error)

	// List returns submissions matching filter, newest first.
	List(ctx context.Context, filter SubmissionFilter) ([]*entities.Submission, error)

	// Resolve sets admin_status to 처리완료. Resolving twice is a no-op.
	Resolve(ctx context.Context, id uint) (*entities.Submission, error)

	// Stats returns independent counts over the whole table.
	Stats(ctx context.Context) (SubmissionStats, error)

	// RecordingKeys returns every non-empty recording_file value.
	RecordingKeys(ctx context.Context) ([]string, error)

	// HasRecording reports whether any submission references the recording key.
	HasRecording(ctx context.Context, key string) (bool, error)

	// CountByCustomer counts submissions for one customer.
	CountByCustomer(ctx context.Context, customerID uint) (int64, error)
}
