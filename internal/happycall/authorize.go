package happycall

import "github.com/happycall-qa/happycall/internal/datastore/entities"

// Scope says who may run an operation.
type Scope int

const (
	// ScopeAuthenticated allows any signed-in user.
	ScopeAuthenticated Scope = iota
	// ScopeAdmin allows admins only.
	ScopeAdmin
	// ScopeFreelancer allows freelancers only.
	ScopeFreelancer
	// ScopeOwnedCustomer allows the freelancer the target customer is assigned to.
	ScopeOwnedCustomer
)

// Operation names a gated action.
type Operation struct {
	Name  string
	Scope Scope
}

var (
	OpIndex  = Operation{"index", ScopeAuthenticated}
	OpLogout = Operation{"logout", ScopeAuthenticated}

	OpAdminDashboard    = Operation{"admin_dashboard", ScopeAdmin}
	OpViewSubmission    = Operation{"view_submission", ScopeAdmin}
	OpResolveSubmission = Operation{"resolve_submission", ScopeAdmin}
	OpViewRecording     = Operation{"view_recording", ScopeAdmin}
	OpManageFreelancers = Operation{"manage_freelancers", ScopeAdmin}
	OpCreateFreelancer  = Operation{"create_freelancer", ScopeAdmin}
	OpDeleteFreelancer  = Operation{"delete_freelancer", ScopeAdmin}
	OpManageCustomers   = Operation{"manage_customers", ScopeAdmin}
	OpCreateCustomer    = Operation{"create_customer", ScopeAdmin}
	OpAssignCustomer    = Operation{"assign_customer", ScopeAdmin}
	OpEditScript        = Operation{"edit_script", ScopeAdmin}
	OpSaveScript        = Operation{"save_script", ScopeAdmin}

	OpAgentDashboard  = Operation{"agent_dashboard", ScopeFreelancer}
	OpViewCustomer    = Operation{"view_customer", ScopeOwnedCustomer}
	OpSetCallStatus   = Operation{"set_call_status", ScopeOwnedCustomer}
	OpSubmitChecklist = Operation{"submit_checklist", ScopeOwnedCustomer}
)

// DenyReason explains a denial.
type DenyReason string

const (
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyAdminOnly       DenyReason = "admin_only"
	DenyFreelancerOnly  DenyReason = "freelancer_only"
	DenyNotOwner        DenyReason = "not_owner"
)

// Message returns the text shown to the denied user.
func (r DenyReason) Message() string {
	switch r {
	case DenyUnauthenticated:
		return MsgLoginRequired
	case DenyAdminOnly:
		return MsgAdminOnly
	default:
		return MsgForbidden
	}
}

// Denial is returned by the gate when an operation is not allowed.
type Denial struct {
	Op     Operation
	Reason DenyReason
}

func (d *Denial) Error() string {
	return d.Reason.Message()
}

// AuthorizeRole applies every rule except customer ownership. Service uses
// it before loading the target so a denied caller learns nothing about it.
func AuthorizeRole(caller Caller, op Operation) *Denial {
	if !caller.Authenticated() {
		return &Denial{Op: op, Reason: DenyUnauthenticated}
	}

	switch op.Scope {
	case ScopeAuthenticated:
		return nil
	case ScopeAdmin:
		if caller.IsAdmin() {
			return nil
		}
		return &Denial{Op: op, Reason: DenyAdminOnly}
	case ScopeFreelancer, ScopeOwnedCustomer:
		if caller.IsFreelancer() {
			return nil
		}
		return &Denial{Op: op, Reason: DenyFreelancerOnly}
	default:
		return &Denial{Op: op, Reason: DenyAdminOnly}
	}
}

// Authorize decides whether caller may run op against target. It returns
// nil to allow. target is consulted only for ScopeOwnedCustomer operations,
// where a nil target is denied.
func Authorize(caller Caller, op Operation, target *entities.Customer) *Denial {
	if d := AuthorizeRole(caller, op); d != nil {
		return d
	}
	if op.Scope != ScopeOwnedCustomer {
		return nil
	}
	if target == nil || !target.AssignedTo(caller.UserID) {
		return &Denial{Op: op, Reason: DenyNotOwner}
	}
	return nil
}
