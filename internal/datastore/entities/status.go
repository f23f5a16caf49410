package entities

// Role is the account type of a User. It does not change after creation.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFreelancer Role = "freelancer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFreelancer
}

// CallStatus is the contact-attempt state of a customer.
type CallStatus string

const (
	CallStatusWaiting   CallStatus = "대기"
	CallStatusMissed1   CallStatus = "1차부재"
	CallStatusMissed2   CallStatus = "2차부재"
	CallStatusMissed3   CallStatus = "3차부재"
	CallStatusRefused   CallStatus = "통화거부"
	CallStatusCompleted CallStatus = "해피콜완료"
)

// DefaultDocumentStatus is the document status of a newly created customer.
const DefaultDocumentStatus = "접수완료"

// CallStatuses lists every call status in display order.
var CallStatuses = []CallStatus{
	CallStatusWaiting,
	CallStatusMissed1,
	CallStatusMissed2,
	CallStatusMissed3,
	CallStatusRefused,
	CallStatusCompleted,
}

// Valid reports whether s is a known call status.
func (s CallStatus) Valid() bool {
	for _, v := range CallStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// AgentSettable reports whether a freelancer may set s directly.
// 해피콜완료 is only reached through a checklist submission.
func (s CallStatus) AgentSettable() bool {
	return s.Valid() && s != CallStatusCompleted
}

// FinalStatus is the derived overall result of a submission.
type FinalStatus string

const (
	FinalStatusNormal   FinalStatus = "정상"
	FinalStatusAbnormal FinalStatus = "비정상"
)

// AdminStatus is the review state of a submission.
type AdminStatus string

const (
	AdminStatusPending  AdminStatus = "대기중"
	AdminStatusResolved AdminStatus = "처리완료"
)
