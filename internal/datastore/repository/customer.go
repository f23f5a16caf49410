package repository

import (
	"context"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// CustomerRepository provides access to the customers table.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entities.Customer) error

	// GetByID returns ErrCustomerNotFound if no row matches.
	GetByID(ctx context.Context, id uint) (*entities.Customer, error)

	// GetByIDs returns the customers that exist, keyed by id.
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*entities.Customer, error)

	// List returns customers matching filter, newest first.
	List(ctx context.Context, filter CustomerFilter) ([]*entities.Customer, error)

	// SetAssignedAgent sets or, with a nil agentID, clears the assignment.
	// Returns ErrCustomerNotFound for an unknown id.
	SetAssignedAgent(ctx context.Context, id uint, agentID *uint) error

	// BulkSetAssignedAgent applies SetAssignedAgent to every existing id in
	// one transaction. Unknown ids are skipped. Returns the number updated.
	BulkSetAssignedAgent(ctx context.Context, ids []uint, agentID *uint) (int64, error)

	// SetCallStatus returns ErrCustomerNotFound for an unknown id.
	SetCallStatus(ctx context.Context, id uint, status entities.CallStatus) error

	// CountByCallStatus returns a count for every status in entities.CallStatuses
	// plus the total.
	CountByCallStatus(ctx context.Context) (map[entities.CallStatus]int64, int64, error)

	// CountByAgent returns the number of customers assigned to each agent id.
	CountByAgent(ctx context.Context) (map[uint]int64, error)
}
