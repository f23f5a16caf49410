package happycall

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/errors"
)

func TestEvaluate_AllCombinations(t *testing.T) {
	t.Parallel()

	for mask := 0; mask < 1<<entities.ChecklistItems; mask++ {
		var items [entities.ChecklistItems]bool
		for i := range items {
			items[i] = mask&(1<<i) != 0
		}

		want := entities.FinalStatusAbnormal
		if mask == 1<<entities.ChecklistItems-1 {
			want = entities.FinalStatusNormal
		}
		assert.Equal(t, want, Evaluate(items), "mask %07b", mask)
	}
}

func TestParseCheck(t *testing.T) {
	t.Parallel()

	assert.True(t, ParseCheck("normal"))
	assert.False(t, ParseCheck("abnormal"))
	assert.False(t, ParseCheck(""))
	assert.False(t, ParseCheck("Normal"))
}

func TestChecklist_Normalize(t *testing.T) {
	t.Parallel()

	c := Checklist{AgentOpinion: "  좋음 ", RawCustomerData: " raw \n"}
	c.Memos[3] = "  메모  "
	require.NoError(t, c.normalize())
	assert.Equal(t, "메모", c.Memos[3])
	assert.Equal(t, "좋음", c.AgentOpinion)
	assert.Equal(t, "raw", c.RawCustomerData)

	// 500 Hangul syllables are 1500 bytes but still within the limit.
	c = Checklist{}
	c.Memos[0] = strings.Repeat("가", MaxMemoLength)
	require.NoError(t, c.normalize())

	c.Memos[6] = strings.Repeat("a", MaxMemoLength+1)
	err := c.normalize()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	c = Checklist{AgentOpinion: strings.Repeat("b", MaxMemoLength+1)}
	require.Error(t, c.normalize())
}

func TestChecklist_SubmissionMapsFieldsInOrder(t *testing.T) {
	t.Parallel()

	c := Checklist{
		Items: [entities.ChecklistItems]bool{true, false, true, true, false, true, true},
		Memos: [entities.ChecklistItems]string{"m0", "m1", "m2", "m3", "m4", "m5", "m6"},
	}
	sub := c.submission(5, 7, "5_20260101120000_a.mp3")

	assert.Equal(t, c.Items, sub.Checks())
	assert.Equal(t, c.Memos, Memos(sub))
	assert.Equal(t, "m6", sub.StoreComplaintMemo)
	assert.Equal(t, entities.FinalStatusAbnormal, sub.FinalStatus)
	assert.Equal(t, entities.AdminStatusPending, sub.AdminStatus)
	assert.Equal(t, uint(5), sub.CustomerID)
	assert.Equal(t, uint(7), sub.AgentID)
	assert.True(t, sub.HasRecording())
}

func TestChecklistItems_FieldNames(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, item := range ChecklistItems {
		assert.True(t, strings.HasPrefix(item.Field, "check_"), item.Field)
		assert.NotEmpty(t, item.Label)
		assert.False(t, seen[item.MemoField], "duplicate memo field %s", item.MemoField)
		seen[item.MemoField] = true
	}
	assert.Equal(t, "store_complaint_memo", ChecklistItems[6].MemoField)
}
