package happycall

import (
	"context"
	"strings"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// AgentDashboard lists the caller's assigned customers, newest first.
func (s *Service) AgentDashboard(ctx context.Context, caller Caller) ([]*entities.Customer, error) {
	if err := s.gate(ctx, caller, OpAgentDashboard); err != nil {
		return nil, err
	}

	agentID := caller.UserID
	customers, err := s.customers.List(ctx, repository.CustomerFilter{AgentID: &agentID})
	if err != nil {
		return nil, storeError("list_assigned_customers", err)
	}
	return customers, nil
}

// CustomerView is what an agent sees for one assigned customer.
type CustomerView struct {
	Customer *entities.Customer
	Script   *entities.Script     // nil when no script is active
	Existing *entities.Submission // nil until a checklist is submitted
}

// CustomerDetail loads an assigned customer with the active script and any
// existing submission.
func (s *Service) CustomerDetail(ctx context.Context, caller Caller, customerID uint) (*CustomerView, error) {
	customer, err := s.ownedCustomer(ctx, caller, OpViewCustomer, customerID)
	if err != nil {
		return nil, err
	}

	script, err := s.activeScript(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.submissions.GetByCustomer(ctx, customerID)
	if err != nil {
		if !errors.Is(err, repository.ErrSubmissionNotFound) {
			return nil, storeError("get_submission", err)
		}
		existing = nil
	}
	return &CustomerView{Customer: customer, Script: script, Existing: existing}, nil
}

// SetCallStatus records a contact attempt outcome. 해피콜완료 cannot be set
// directly.
func (s *Service) SetCallStatus(ctx context.Context, caller Caller, customerID uint, status string) (entities.CallStatus, error) {
	if _, err := s.ownedCustomer(ctx, caller, OpSetCallStatus, customerID); err != nil {
		return "", err
	}

	cs := entities.CallStatus(strings.TrimSpace(status))
	if !cs.AgentSettable() {
		return "", validationError(MsgInvalidStatus)
	}
	if err := s.customers.SetCallStatus(ctx, customerID, cs); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return "", notFoundError(MsgCustomerNotFound, err)
		}
		return "", storeError("set_call_status", err)
	}

	s.log.WithContext(ctx).Info("call status changed",
		logger.Uint("customer_id", customerID),
		logger.String("call_status", string(cs)),
		logger.Uint("agent_id", caller.UserID))
	return cs, nil
}

// SubmitChecklist stores the checklist for an assigned customer and marks the
// customer 해피콜완료. A customer accepts one submission only.
func (s *Service) SubmitChecklist(ctx context.Context, caller Caller, customerID uint, checklist Checklist, upload *RecordingUpload) (*entities.Submission, error) {
	customer, err := s.ownedCustomer(ctx, caller, OpSubmitChecklist, customerID)
	if err != nil {
		return nil, err
	}

	n, err := s.submissions.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, storeError("count_submissions", err)
	}
	if n > 0 {
		return nil, conflictError(MsgAlreadySubmitted, repository.ErrSubmissionExists)
	}

	if !upload.present() && s.opts.RecordingRequired {
		return nil, validationError(MsgRecordingRequired)
	}
	if err := checklist.normalize(); err != nil {
		return nil, err
	}

	var key string
	if upload.present() && s.recordings != nil {
		key, err = s.recordings.Save(ctx, customerID, upload)
		if err != nil {
			return nil, err
		}
	}

	sub := checklist.submission(customerID, caller.UserID, key)
	if err := s.submissions.Create(ctx, sub); err != nil {
		s.discardRecording(ctx, key)
		if errors.Is(err, repository.ErrSubmissionExists) {
			return nil, conflictError(MsgAlreadySubmitted, err)
		}
		return nil, storeError("create_submission", err)
	}

	s.metrics.RecordSubmission(sub.FinalStatus)
	s.log.WithContext(ctx).Info("checklist submitted",
		logger.Uint("submission_id", sub.ID),
		logger.Uint("customer_id", customerID),
		logger.Uint("agent_id", caller.UserID),
		logger.String("final_status", string(sub.FinalStatus)),
		logger.Bool("has_recording", sub.HasRecording()))

	s.notifier.NotifySubmission(ctx, SubmissionEvent{
		SubmissionID:  sub.ID,
		CustomerID:    customerID,
		CustomerName:  customer.Name,
		AgentUsername: caller.Username,
		FinalStatus:   sub.FinalStatus,
		HasRecording:  sub.HasRecording(),
		CreatedAt:     sub.CreatedAt,
	})
	return sub, nil
}

// discardRecording removes a blob whose submission was not stored.
func (s *Service) discardRecording(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.recordings.Remove(ctx, key); err != nil {
		s.log.WithContext(ctx).Warn("failed to remove unreferenced recording",
			logger.String("key", key),
			logger.Error(err))
	}
}

// ownedCustomer checks the caller's role, loads the customer, then checks
// ownership. Role failures are reported before the lookup.
func (s *Service) ownedCustomer(ctx context.Context, caller Caller, op Operation, customerID uint) (*entities.Customer, error) {
	if err := s.gate(ctx, caller, op); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, notFoundError(MsgCustomerNotFound, err)
		}
		return nil, storeError("get_customer", err)
	}
	if d := Authorize(caller, op, customer); d != nil {
		return nil, s.denied(ctx, caller, d)
	}
	return customer, nil
}

// AuthorizeRecording checks that caller may fetch the recording stored under
// key. Keys that no submission references are reported as not found.
func (s *Service) AuthorizeRecording(ctx context.Context, caller Caller, key string) error {
	if err := s.gate(ctx, caller, OpViewRecording); err != nil {
		return err
	}
	if key == "" {
		return notFoundError(MsgRecordingNotFound, nil)
	}
	ok, err := s.submissions.HasRecording(ctx, key)
	if err != nil {
		return storeError("has_recording", err)
	}
	if !ok {
		return notFoundError(MsgRecordingNotFound, nil)
	}
	return nil
}
