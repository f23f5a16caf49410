package repository

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entities.Customer) error {
	if customer.DocumentStatus == "" {
		customer.DocumentStatus = entities.DefaultDocumentStatus
	}
	if customer.CallStatus == "" {
		customer.CallStatus = entities.CallStatusWaiting
	}
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*entities.Customer, error) {
	var customer entities.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	return &customer, nil
}

func (r *customerRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*entities.Customer, error) {
	result := make(map[uint]*entities.Customer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var customers []*entities.Customer
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, err
	}
	for _, c := range customers {
		result[c.ID] = c
	}
	return result, nil
}

func (r *customerRepository) List(ctx context.Context, filter CustomerFilter) ([]*entities.Customer, error) {
	q := r.db.WithContext(ctx).Model(&entities.Customer{})
	if filter.CallStatus != "" {
		q = q.Where("call_status = ?", filter.CallStatus)
	}
	if filter.AgentID != nil {
		q = q.Where("assigned_agent_id = ?", *filter.AgentID)
	}

	var customers []*entities.Customer
	err := q.Order("created_at DESC").Order("id DESC").Find(&customers).Error
	return customers, err
}

// assignmentValue turns a nil agent id into SQL NULL.
func assignmentValue(agentID *uint) any {
	if agentID == nil {
		return gorm.Expr("NULL")
	}
	return *agentID
}

func (r *customerRepository) SetAssignedAgent(ctx context.Context, id uint, agentID *uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer entities.Customer
		if err := tx.Select("id").First(&customer, id).Error; err != nil {
			return notFound(err, ErrCustomerNotFound)
		}
		return tx.Model(&entities.Customer{}).
			Where("id = ?", id).
			Update("assigned_agent_id", assignmentValue(agentID)).Error
	})
}

func (r *customerRepository) BulkSetAssignedAgent(ctx context.Context, ids []uint, agentID *uint) (int64, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(ids) == 0 {
		return 0, nil
	}

	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []uint
		if err := tx.Model(&entities.Customer{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			return nil
		}
		if err := tx.Model(&entities.Customer{}).
			Where("id IN ?", existing).
			Update("assigned_agent_id", assignmentValue(agentID)).Error; err != nil {
			return err
		}
		updated = int64(len(existing))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *customerRepository) SetCallStatus(ctx context.Context, id uint, status entities.CallStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer entities.Customer
		if err := tx.Select("id").First(&customer, id).Error; err != nil {
			return notFound(err, ErrCustomerNotFound)
		}
		return tx.Model(&entities.Customer{}).
			Where("id = ?", id).
			Update("call_status", status).Error
	})
}

type statusCount struct {
	CallStatus entities.CallStatus
	Count      int64
}

func (r *customerRepository) CountByCallStatus(ctx context.Context) (map[entities.CallStatus]int64, int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&entities.Customer{}).
		Select("call_status, COUNT(*) AS count").
		Group("call_status").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	counts := make(map[entities.CallStatus]int64, len(entities.CallStatuses))
	for _, s := range entities.CallStatuses {
		counts[s] = 0
	}
	var total int64
	for _, row := range rows {
		counts[row.CallStatus] = row.Count
		total += row.Count
	}
	return counts, total, nil
}

type agentCount struct {
	AssignedAgentID uint
	Count           int64
}

func (r *customerRepository) CountByAgent(ctx context.Context) (map[uint]int64, error) {
	var rows []agentCount
	err := r.db.WithContext(ctx).
		Model(&entities.Customer{}).
		Select("assigned_agent_id, COUNT(*) AS count").
		Where("assigned_agent_id IS NOT NULL").
		Group("assigned_agent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.AssignedAgentID] = row.Count
	}
	return counts, nil
}
