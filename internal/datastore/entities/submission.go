package entities

import "time"

// ChecklistItems is the number of verification points on a checklist.
const ChecklistItems = 7

// Submission is the checklist result for one customer. The unique index on
// CustomerID allows a single row per customer. AgentID may outlive its User.
type Submission struct {
	ID            uint   `gorm:"primaryKey"`
	CustomerID    uint   `gorm:"not null;uniqueIndex"`
	AgentID       uint   `gorm:"not null;index"`
	RecordingFile string `gorm:"size:255"` // blob key, empty when no recording

	CheckInstallment    bool `gorm:"not null"`
	CheckPenalty        bool `gorm:"not null"`
	CheckRatePlan       bool `gorm:"not null"`
	CheckRetention      bool `gorm:"not null"`
	CheckMonthlyFee     bool `gorm:"not null"`
	CheckUsedPhone      bool `gorm:"not null"`
	CheckStoreComplaint bool `gorm:"not null"`

	MemoInstallment    string `gorm:"column:memo_check_installment;size:500"`
	MemoPenalty        string `gorm:"column:memo_check_penalty;size:500"`
	MemoRatePlan       string `gorm:"column:memo_check_rate_plan;size:500"`
	MemoRetention      string `gorm:"column:memo_check_retention;size:500"`
	MemoMonthlyFee     string `gorm:"column:memo_check_monthly_fee;size:500"`
	MemoUsedPhone      string `gorm:"column:memo_check_used_phone;size:500"`
	StoreComplaintMemo string `gorm:"size:500"`

	AgentOpinion    string `gorm:"size:500"`
	RawCustomerData string `gorm:"type:text"`

	FinalStatus FinalStatus `gorm:"size:20;not null;index"`
	AdminStatus AdminStatus `gorm:"size:20;not null;index"`
	CreatedAt   time.Time   `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM.
func (Submission) TableName() string {
	return "submissions"
}

// Checks returns the seven checklist answers in form order.
func (s *Submission) Checks() [ChecklistItems]bool {
	return [ChecklistItems]bool{
		s.CheckInstallment,
		s.CheckPenalty,
		s.CheckRatePlan,
		s.CheckRetention,
		s.CheckMonthlyFee,
		s.CheckUsedPhone,
		s.CheckStoreComplaint,
	}
}

// HasRecording reports whether a recording blob is attached.
func (s *Submission) HasRecording() bool {
	return s.RecordingFile != ""
}
