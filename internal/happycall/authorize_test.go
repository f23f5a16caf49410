package happycall

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	admin := Caller{UserID: 1, Username: "1", Role: entities.RoleAdmin}
	owner := Caller{UserID: 7, Username: "agent7", Role: entities.RoleFreelancer}
	other := Caller{UserID: 8, Username: "agent8", Role: entities.RoleFreelancer}
	bogus := Caller{UserID: 9, Username: "x", Role: entities.Role("auditor")}

	ownerID := owner.UserID
	assigned := &entities.Customer{ID: 1, AssignedAgentID: &ownerID}
	unassigned := &entities.Customer{ID: 2}

	tests := []struct {
		name   string
		caller Caller
		op     Operation
		target *entities.Customer
		want   DenyReason // empty means allowed
	}{
		{"anonymous index", Anonymous(), OpIndex, nil, DenyUnauthenticated},
		{"anonymous admin op", Anonymous(), OpAdminDashboard, nil, DenyUnauthenticated},
		{"anonymous agent op", Anonymous(), OpSubmitChecklist, assigned, DenyUnauthenticated},
		{"unknown role", bogus, OpIndex, nil, DenyUnauthenticated},
		{"admin index", admin, OpIndex, nil, ""},
		{"admin logout", admin, OpLogout, nil, ""},
		{"admin dashboard", admin, OpAdminDashboard, nil, ""},
		{"admin resolve", admin, OpResolveSubmission, nil, ""},
		{"admin recording", admin, OpViewRecording, nil, ""},
		{"admin agent dashboard", admin, OpAgentDashboard, nil, DenyFreelancerOnly},
		{"admin views customer as agent", admin, OpViewCustomer, assigned, DenyFreelancerOnly},
		{"admin submits checklist", admin, OpSubmitChecklist, assigned, DenyFreelancerOnly},
		{"freelancer admin dashboard", owner, OpAdminDashboard, nil, DenyAdminOnly},
		{"freelancer creates freelancer", owner, OpCreateFreelancer, nil, DenyAdminOnly},
		{"freelancer saves script", owner, OpSaveScript, nil, DenyAdminOnly},
		{"freelancer recording", owner, OpViewRecording, nil, DenyAdminOnly},
		{"freelancer dashboard", owner, OpAgentDashboard, nil, ""},
		{"owner views customer", owner, OpViewCustomer, assigned, ""},
		{"owner sets status", owner, OpSetCallStatus, assigned, ""},
		{"owner submits", owner, OpSubmitChecklist, assigned, ""},
		{"other views customer", other, OpViewCustomer, assigned, DenyNotOwner},
		{"other submits", other, OpSubmitChecklist, assigned, DenyNotOwner},
		{"unassigned customer", owner, OpViewCustomer, unassigned, DenyNotOwner},
		{"missing target", owner, OpSetCallStatus, nil, DenyNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Authorize(tt.caller, tt.op, tt.target)
			if tt.want == "" {
				assert.Nil(t, d)
				return
			}
			if assert.NotNil(t, d) {
				assert.Equal(t, tt.want, d.Reason)
				assert.Equal(t, tt.op, d.Op)
			}
		})
	}
}

func TestAuthorizeRole_IgnoresOwnership(t *testing.T) {
	t.Parallel()

	agent := Caller{UserID: 7, Role: entities.RoleFreelancer}
	assert.Nil(t, AuthorizeRole(agent, OpSubmitChecklist))
	assert.NotNil(t, Authorize(agent, OpSubmitChecklist, nil))
}

func TestDenyReason_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, MsgLoginRequired, DenyUnauthenticated.Message())
	assert.Equal(t, MsgAdminOnly, DenyAdminOnly.Message())
	assert.Equal(t, MsgForbidden, DenyFreelancerOnly.Message())
	assert.Equal(t, MsgForbidden, DenyNotOwner.Message())
}

func TestCaller(t *testing.T) {
	t.Parallel()

	assert.False(t, Anonymous().Authenticated())
	assert.False(t, CallerFromUser(nil).Authenticated())

	c := CallerFromUser(&entities.User{ID: 3, Username: "2", Role: entities.RoleFreelancer})
	assert.True(t, c.Authenticated())
	assert.True(t, c.IsFreelancer())
	assert.False(t, c.IsAdmin())
	assert.Equal(t, "2", c.Username)
}
