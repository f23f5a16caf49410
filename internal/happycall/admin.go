package happycall

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// MissingName is displayed when a referenced row no longer exists.
const MissingName = "-"

const (
	maxUsernameLength     = 80
	maxCustomerNameLength = 100
	maxPhoneLength        = 20
	maxScriptTitleLength  = 200
)

// SubmissionRow is a submission with display names resolved.
type SubmissionRow struct {
	Submission    *entities.Submission
	CustomerName  string
	AgentUsername string
}

// Dashboard is the admin overview.
type Dashboard struct {
	Stats  repository.SubmissionStats
	Filter repository.SubmissionFilter
	Rows   []SubmissionRow
}

// Dashboard returns whole-table stats and the submissions matching filter.
func (s *Service) Dashboard(ctx context.Context, caller Caller, filter repository.SubmissionFilter) (*Dashboard, error) {
	if err := s.gate(ctx, caller, OpAdminDashboard); err != nil {
		return nil, err
	}

	stats, err := s.submissions.Stats(ctx)
	if err != nil {
		return nil, storeError("submission_stats", err)
	}
	subs, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, storeError("list_submissions", err)
	}
	rows, err := s.submissionRows(ctx, subs)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: stats, Filter: filter, Rows: rows}, nil
}

func (s *Service) submissionRows(ctx context.Context, subs []*entities.Submission) ([]SubmissionRow, error) {
	customerIDs := make([]uint, 0, len(subs))
	agentIDs := make([]uint, 0, len(subs))
	for _, sub := range subs {
		customerIDs = append(customerIDs, sub.CustomerID)
		agentIDs = append(agentIDs, sub.AgentID)
	}

	customers, err := s.customers.GetByIDs(ctx, customerIDs)
	if err != nil {
		return nil, storeError("resolve_customers", err)
	}
	agents, err := s.users.GetByIDs(ctx, agentIDs)
	if err != nil {
		return nil, storeError("resolve_agents", err)
	}

	rows := make([]SubmissionRow, 0, len(subs))
	for _, sub := range subs {
		row := SubmissionRow{Submission: sub, CustomerName: MissingName, AgentUsername: MissingName}
		if c, ok := customers[sub.CustomerID]; ok {
			row.CustomerName = c.Name
		}
		if a, ok := agents[sub.AgentID]; ok {
			row.AgentUsername = a.Username
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SubmissionDetail is one submission with its customer and agent.
type SubmissionDetail struct {
	Submission *entities.Submission
	Customer   *entities.Customer // nil if deleted
	Agent      *entities.User     // nil if the account was deleted
}

// SubmissionDetail loads a submission for review.
func (s *Service) SubmissionDetail(ctx context.Context, caller Caller, id uint) (*SubmissionDetail, error) {
	if err := s.gate(ctx, caller, OpViewSubmission); err != nil {
		return nil, err
	}

	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, notFoundError(MsgSubmissionNotFound, err)
		}
		return nil, storeError("get_submission", err)
	}

	detail := &SubmissionDetail{Submission: sub}
	if c, err := s.customers.GetByID(ctx, sub.CustomerID); err == nil {
		detail.Customer = c
	} else if !errors.Is(err, repository.ErrCustomerNotFound) {
		return nil, storeError("get_customer", err)
	}
	if a, err := s.users.GetByID(ctx, sub.AgentID); err == nil {
		detail.Agent = a
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, storeError("get_agent", err)
	}
	return detail, nil
}

// ResolveSubmission marks a submission 처리완료. Resolving again is a no-op.
func (s *Service) ResolveSubmission(ctx context.Context, caller Caller, id uint) (*entities.Submission, error) {
	if err := s.gate(ctx, caller, OpResolveSubmission); err != nil {
		return nil, err
	}

	sub, err := s.submissions.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, notFoundError(MsgSubmissionNotFound, err)
		}
		return nil, storeError("resolve_submission", err)
	}
	s.log.WithContext(ctx).Info("submission resolved",
		logger.Uint("submission_id", sub.ID),
		logger.Uint("admin_id", caller.UserID))
	return sub, nil
}

// FreelancerRow is a freelancer account with its assigned customer count.
type FreelancerRow struct {
	User          *entities.User
	AssignedCount int64
}

// Freelancers lists freelancer accounts.
func (s *Service) Freelancers(ctx context.Context, caller Caller) ([]FreelancerRow, error) {
	if err := s.gate(ctx, caller, OpManageFreelancers); err != nil {
		return nil, err
	}

	users, err := s.users.ListByRole(ctx, entities.RoleFreelancer)
	if err != nil {
		return nil, storeError("list_freelancers", err)
	}
	counts, err := s.customers.CountByAgent(ctx)
	if err != nil {
		return nil, storeError("count_by_agent", err)
	}

	rows := make([]FreelancerRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, FreelancerRow{User: u, AssignedCount: counts[u.ID]})
	}
	return rows, nil
}

// CreateFreelancer creates a freelancer account.
func (s *Service) CreateFreelancer(ctx context.Context, caller Caller, username, password string) (*entities.User, error) {
	if err := s.gate(ctx, caller, OpCreateFreelancer); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationError(MsgCredentialsRequired)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, validationError(MsgFieldTooLong)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, conflictError(MsgUsernameTaken, repository.ErrDuplicateKey)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, storeError("get_user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategorySystem).
			Context("operation", "hash_password").
			Build()
	}

	user := &entities.User{Username: username, PasswordHash: hash, Role: entities.RoleFreelancer}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, conflictError(MsgUsernameTaken, err)
		}
		return nil, storeError("create_user", err)
	}

	s.log.WithContext(ctx).Info("freelancer created",
		logger.Uint("user_id", user.ID),
		logger.String("username", user.Username),
		logger.Uint("admin_id", caller.UserID))
	return user, nil
}

// DeleteFreelancer deletes a freelancer account and unassigns its customers.
// Its submissions keep the dangling agent id. It returns the deleted user and
// the number of customers unassigned.
func (s *Service) DeleteFreelancer(ctx context.Context, caller Caller, id uint) (*entities.User, int64, error) {
	if err := s.gate(ctx, caller, OpDeleteFreelancer); err != nil {
		return nil, 0, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, 0, notFoundError(MsgUserNotFound, err)
		}
		return nil, 0, storeError("get_user", err)
	}
	if user.Role != entities.RoleFreelancer {
		return nil, 0, validationError(MsgOnlyFreelancerDeletion)
	}

	unassigned, err := s.users.DeleteAndUnassign(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, 0, notFoundError(MsgUserNotFound, err)
		}
		return nil, 0, storeError("delete_user", err)
	}

	s.log.WithContext(ctx).Info("freelancer deleted",
		logger.Uint("user_id", user.ID),
		logger.String("username", user.Username),
		logger.Int64("unassigned_customers", unassigned),
		logger.Uint("admin_id", caller.UserID))
	return user, unassigned, nil
}

// CustomerRow is a customer with the assigned agent's username, empty when
// unassigned.
type CustomerRow struct {
	Customer      *entities.Customer
	AgentUsername string
}

// CustomersPage is the admin customer management view.
type CustomersPage struct {
	Rows        []CustomerRow
	Freelancers []*entities.User
	// StatusFilter is the applied call_status, empty for all.
	StatusFilter entities.CallStatus
	Counts       map[entities.CallStatus]int64
	Total        int64
}

// Customers lists customers, optionally narrowed to one call status.
// An unknown status lists everything.
func (s *Service) Customers(ctx context.Context, caller Caller, status entities.CallStatus) (*CustomersPage, error) {
	if err := s.gate(ctx, caller, OpManageCustomers); err != nil {
		return nil, err
	}
	if !status.Valid() {
		status = ""
	}

	customers, err := s.customers.List(ctx, repository.CustomerFilter{CallStatus: status})
	if err != nil {
		return nil, storeError("list_customers", err)
	}
	freelancers, err := s.users.ListByRole(ctx, entities.RoleFreelancer)
	if err != nil {
		return nil, storeError("list_freelancers", err)
	}
	counts, total, err := s.customers.CountByCallStatus(ctx)
	if err != nil {
		return nil, storeError("count_by_call_status", err)
	}

	names := make(map[uint]string, len(freelancers))
	for _, f := range freelancers {
		names[f.ID] = f.Username
	}
	rows := make([]CustomerRow, 0, len(customers))
	for _, c := range customers {
		row := CustomerRow{Customer: c}
		if c.AssignedAgentID != nil {
			row.AgentUsername = names[*c.AssignedAgentID]
		}
		rows = append(rows, row)
	}

	return &CustomersPage{
		Rows:         rows,
		Freelancers:  freelancers,
		StatusFilter: status,
		Counts:       counts,
		Total:        total,
	}, nil
}

// CreateCustomer adds a customer with default statuses and no assignment.
func (s *Service) CreateCustomer(ctx context.Context, caller Caller, name, phone string) (*entities.Customer, error) {
	if err := s.gate(ctx, caller, OpCreateCustomer); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, validationError(MsgCustomerFieldsRequired)
	}
	if utf8.RuneCountInString(name) > maxCustomerNameLength || utf8.RuneCountInString(phone) > maxPhoneLength {
		return nil, validationError(MsgFieldTooLong)
	}

	customer := &entities.Customer{Name: name, Phone: phone}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, storeError("create_customer", err)
	}

	s.log.WithContext(ctx).Info("customer created",
		logger.Uint("customer_id", customer.ID),
		logger.Phone("phone", customer.Phone))
	return customer, nil
}

// Assignment is the outcome of a single assign or unassign.
type Assignment struct {
	Customer *entities.Customer
	Agent    *entities.User // nil when the customer was unassigned
}

// AssignCustomer assigns a customer to a freelancer, or unassigns it when
// agentID is nil.
func (s *Service) AssignCustomer(ctx context.Context, caller Caller, customerID uint, agentID *uint) (*Assignment, error) {
	if err := s.gate(ctx, caller, OpAssignCustomer); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, notFoundError(MsgCustomerNotFound, err)
		}
		return nil, storeError("get_customer", err)
	}
	agent, err := s.assignee(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if err := s.customers.SetAssignedAgent(ctx, customerID, agentID); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, notFoundError(MsgCustomerNotFound, err)
		}
		return nil, storeError("assign_customer", err)
	}
	customer.AssignedAgentID = agentID

	s.log.WithContext(ctx).Info("customer assignment changed",
		logger.Uint("customer_id", customer.ID),
		logger.Bool("assigned", agent != nil))
	return &Assignment{Customer: customer, Agent: agent}, nil
}

// BulkAssign applies one assignment to many customers. Unknown customer ids
// are skipped. It returns the number of customers updated.
func (s *Service) BulkAssign(ctx context.Context, caller Caller, customerIDs []uint, agentID *uint) (int64, error) {
	if err := s.gate(ctx, caller, OpAssignCustomer); err != nil {
		return 0, err
	}
	if len(customerIDs) == 0 {
		return 0, validationError(MsgSelectCustomers)
	}
	if _, err := s.assignee(ctx, agentID); err != nil {
		return 0, err
	}

	n, err := s.customers.BulkSetAssignedAgent(ctx, customerIDs, agentID)
	if err != nil {
		return 0, storeError("bulk_assign", err)
	}

	s.log.WithContext(ctx).Info("bulk assignment applied",
		logger.Int("requested", len(customerIDs)),
		logger.Int64("updated", n),
		logger.Bool("assigned", agentID != nil))
	return n, nil
}

// assignee loads the freelancer behind agentID. A nil id means unassign.
func (s *Service) assignee(ctx context.Context, agentID *uint) (*entities.User, error) {
	if agentID == nil {
		return nil, nil
	}
	agent, err := s.users.GetByID(ctx, *agentID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, validationError(MsgInvalidAgent)
		}
		return nil, storeError("get_agent", err)
	}
	if agent.Role != entities.RoleFreelancer {
		return nil, validationError(MsgInvalidAgent)
	}
	return agent, nil
}

// ActiveScript returns the active script, or nil when none exists.
func (s *Service) ActiveScript(ctx context.Context, caller Caller) (*entities.Script, error) {
	if err := s.gate(ctx, caller, OpEditScript); err != nil {
		return nil, err
	}
	return s.activeScript(ctx)
}

func (s *Service) activeScript(ctx context.Context) (*entities.Script, error) {
	script, err := s.scripts.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return nil, nil
		}
		return nil, storeError("get_active_script", err)
	}
	return script, nil
}

// SaveScript updates the active script in place, or creates it when none
// exists. Content is sanitized before storage. An empty title falls back to
// the default title.
func (s *Service) SaveScript(ctx context.Context, caller Caller, title, content string) (*entities.Script, bool, error) {
	if err := s.gate(ctx, caller, OpSaveScript); err != nil {
		return nil, false, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = conf.DefaultScriptTitle
	}
	if utf8.RuneCountInString(title) > maxScriptTitleLength {
		return nil, false, validationError(MsgFieldTooLong)
	}

	clean, err := SanitizeScriptHTML(content)
	if err != nil {
		return nil, false, errors.New(err).
			Component(componentName).
			Category(errors.CategoryValidation).
			Context("operation", "sanitize_script").
			Build()
	}
	if clean != content {
		s.log.WithContext(ctx).Warn("script content sanitized",
			logger.Uint("admin_id", caller.UserID),
			logger.Int("original_length", len(content)),
			logger.Int("clean_length", len(clean)))
	}

	script, created, err := s.scripts.SaveActive(ctx, title, clean, caller.UserID)
	if err != nil {
		return nil, false, storeError("save_script", err)
	}

	s.log.WithContext(ctx).Info("script saved",
		logger.Uint("script_id", script.ID),
		logger.Bool("created", created))
	return script, created, nil
}
