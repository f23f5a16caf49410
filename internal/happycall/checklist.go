package happycall

import (
	"strings"
	"unicode/utf8"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
)

// MaxMemoLength is the longest memo or opinion accepted, in characters.
const MaxMemoLength = 500

// ChecklistItem describes one verification point and its form fields.
type ChecklistItem struct {
	Field     string
	MemoField string
	Label     string
}

// ChecklistItems lists the seven verification points in form order.
var ChecklistItems = [entities.ChecklistItems]ChecklistItem{
	{Field: "check_installment", MemoField: "memo_check_installment", Label: "할부원금 / 할부기간 안내"},
	{Field: "check_penalty", MemoField: "memo_check_penalty", Label: "약정 / 위약금 안내"},
	{Field: "check_rate_plan", MemoField: "memo_check_rate_plan", Label: "요금제 / 부가서비스 안내"},
	{Field: "check_retention", MemoField: "memo_check_retention", Label: "의무 유지기간 안내"},
	{Field: "check_monthly_fee", MemoField: "memo_check_monthly_fee", Label: "월 청구요금 안내"},
	{Field: "check_used_phone", MemoField: "memo_check_used_phone", Label: "중고폰 반납 / 잔여할부 안내"},
	{Field: "check_store_complaint", MemoField: "store_complaint_memo", Label: "약속 미이행 / 매장 불만"},
}

// CheckValueNormal is the only form value counted as a passed item.
const CheckValueNormal = "normal"

// ParseCheck maps a checklist form value to a result.
func ParseCheck(v string) bool {
	return v == CheckValueNormal
}

// Evaluate derives the overall result: 정상 only when every item passed.
func Evaluate(items [entities.ChecklistItems]bool) entities.FinalStatus {
	for _, ok := range items {
		if !ok {
			return entities.FinalStatusAbnormal
		}
	}
	return entities.FinalStatusNormal
}

// Checklist is an agent's answer sheet for one customer.
type Checklist struct {
	Items           [entities.ChecklistItems]bool
	Memos           [entities.ChecklistItems]string
	AgentOpinion    string
	RawCustomerData string
}

// normalize trims free text and rejects anything over MaxMemoLength.
func (c *Checklist) normalize() error {
	for i := range c.Memos {
		c.Memos[i] = strings.TrimSpace(c.Memos[i])
		if utf8.RuneCountInString(c.Memos[i]) > MaxMemoLength {
			return validationError(MsgMemoTooLong)
		}
	}
	c.AgentOpinion = strings.TrimSpace(c.AgentOpinion)
	if utf8.RuneCountInString(c.AgentOpinion) > MaxMemoLength {
		return validationError(MsgMemoTooLong)
	}
	c.RawCustomerData = strings.TrimSpace(c.RawCustomerData)
	return nil
}

// submission builds the row for customerID. Memo order follows ChecklistItems.
func (c *Checklist) submission(customerID, agentID uint, recordingKey string) *entities.Submission {
	return &entities.Submission{
		CustomerID:    customerID,
		AgentID:       agentID,
		RecordingFile: recordingKey,

		CheckInstallment:    c.Items[0],
		CheckPenalty:        c.Items[1],
		CheckRatePlan:       c.Items[2],
		CheckRetention:      c.Items[3],
		CheckMonthlyFee:     c.Items[4],
		CheckUsedPhone:      c.Items[5],
		CheckStoreComplaint: c.Items[6],

		MemoInstallment:    c.Memos[0],
		MemoPenalty:        c.Memos[1],
		MemoRatePlan:       c.Memos[2],
		MemoRetention:      c.Memos[3],
		MemoMonthlyFee:     c.Memos[4],
		MemoUsedPhone:      c.Memos[5],
		StoreComplaintMemo: c.Memos[6],

		AgentOpinion:    c.AgentOpinion,
		RawCustomerData: c.RawCustomerData,

		FinalStatus: Evaluate(c.Items),
		AdminStatus: entities.AdminStatusPending,
	}
}

// Memos returns a submission's memos in ChecklistItems order.
func Memos(s *entities.Submission) [entities.ChecklistItems]string {
	return [entities.ChecklistItems]string{
		s.MemoInstallment,
		s.MemoPenalty,
		s.MemoRatePlan,
		s.MemoRetention,
		s.MemoMonthlyFee,
		s.MemoUsedPhone,
		s.StoreComplaintMemo,
	}
}
