package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reported []*EnhancedError
}

func (r *recordingReporter) ReportError(ee *EnhancedError) { r.reported = append(r.reported, ee) }
func (r *recordingReporter) IsEnabled() bool               { return true }

func TestBuildDefaults(t *testing.T) {
	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.False(t, ee.Timestamp.IsZero())
}

func TestBuildKeepsWrappedCategory(t *testing.T) {
	inner := New(NewStd("no such customer")).Category(CategoryNotFound).Build()
	outer := New(fmt.Errorf("load detail: %w", inner)).Component("happycall").Build()

	assert.Equal(t, CategoryNotFound, outer.Category)
	assert.True(t, IsNotFound(outer))
}

func TestIsCategoryAndCategoryOf(t *testing.T) {
	sentinel := NewStd("duplicate key")
	err := New(sentinel).Category(CategoryConflict).Context("customer_id", 7).Build()
	wrapped := fmt.Errorf("submit: %w", err)

	assert.True(t, IsCategory(wrapped, CategoryConflict))
	assert.False(t, IsCategory(wrapped, CategoryValidation))
	assert.Equal(t, CategoryConflict, CategoryOf(wrapped))
	assert.Equal(t, CategoryGeneric, CategoryOf(sentinel))
	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, 7, err.GetContext()["customer_id"])
}

func TestTelemetryReporterReceivesBuiltErrors(t *testing.T) {
	reporter := &recordingReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	New(NewStd("db down")).Category(CategoryDatabase).Build()

	require.Len(t, reporter.reported, 1)
	assert.Equal(t, CategoryDatabase, reporter.reported[0].Category)
}

func TestTelemetrySkipsUserErrorsAndReportedChains(t *testing.T) {
	reporter := &recordingReporter{}
	SetTelemetryReporter(reporter)
	t.Cleanup(func() { SetTelemetryReporter(nil) })

	New(NewStd("bad form")).Category(CategoryValidation).Build()
	assert.Empty(t, reporter.reported)

	inner := New(NewStd("db down")).Category(CategoryDatabase).Build()
	require.Len(t, reporter.reported, 1)
	inner.MarkReported()
	New(fmt.Errorf("load dashboard: %w", inner)).Component("happycall").Build()
	assert.Len(t, reporter.reported, 1)
	assert.True(t, IsReported(fmt.Errorf("outer: %w", inner)))
}

func TestReportable(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		want     bool
	}{
		{CategoryDatabase, true},
		{CategoryFileIO, true},
		{CategoryGeneric, true},
		{CategoryValidation, false},
		{CategoryAuthorization, false},
		{CategoryConflict, false},
		{CategoryNotFound, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, Reportable(tt.category))
		})
	}
}
