package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanKeyValues_SameLine(t *testing.T) {
	got := scanKeyValues("Policy Number: ABC-123456\n")

	cand, ok := got["policy_number"]
	require.True(t, ok)
	assert.Equal(t, "ABC-123456", cand.Value)
	assert.InDelta(t, 1.0, cand.Confidence, 1e-6) // 0.9 score + 0.1 bonus, clamped
}

func TestScanKeyValues_ValueOnNextLine(t *testing.T) {
	got := scanKeyValues("Customer Name\n\nJane Doe\n")

	cand, ok := got["customer_name"]
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", cand.Value)
	assert.InDelta(t, 0.9, cand.Confidence, 1e-6)
}

func TestScanKeyValues_NextLineLabelIsNotAValue(t *testing.T) {
	// The line after the label is itself a label, so no value is taken.
	got := scanKeyValues("Claim Type\nDate of Incident:\n")

	_, ok := got["claim_type"]
	assert.False(t, ok)
}

func TestScanKeyValues_TwoLineAddress(t *testing.T) {
	got := scanKeyValues("Address\n123 Main St\nSpringfield IL 62704 is where it is located today\n")

	cand, ok := got["address"]
	require.True(t, ok)
	assert.Equal(t, "123 Main St, Springfield IL 62704 is where it is located today", cand.Value)
	assert.InDelta(t, 0.85, cand.Confidence, 1e-6) // 0.75 + 0.1
}

func TestScanKeyValues_BestCandidatePerFieldSurvives(t *testing.T) {
	// Two lines produce policy_number candidates; the strict-format one
	// scores higher and wins regardless of position.
	text := "Policy: draft pending\nPolicy Number: ABC-123456\n"
	got := scanKeyValues(text)

	cand, ok := got["policy_number"]
	require.True(t, ok)
	assert.Equal(t, "ABC-123456", cand.Value)
}

func TestScanKeyValues_NoMatchesIsSparse(t *testing.T) {
	got := scanKeyValues("completely unrelated text\nwith two lines\n")
	assert.Empty(t, got)
}

func TestIsLabelLine(t *testing.T) {
	assert.True(t, isLabelLine("Date of Incident:"))
	assert.True(t, isLabelLine("Amount -"))
	assert.True(t, isLabelLine("Ref #"))
	assert.False(t, isLabelLine("Jane Doe"))
	assert.False(t, isLabelLine("123 Main St"))
}
