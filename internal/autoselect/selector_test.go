package autoselect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/claims-extractor/internal/extract"
	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
	"github.com/joseph-ayodele/claims-extractor/internal/pipeline"
)

// constantStrategy emits the same field set for every config, so composite
// scores differ only by the filename hint boost.
type constantStrategy struct {
	vals map[string]float32
}

func (s *constantStrategy) Name() string { return "text" }

func (s *constantStrategy) CanProcess(context.Context, *extract.Input) bool { return true }

func (s *constantStrategy) Extract(context.Context, *extract.Input, *formconfig.FormConfig) (fields.ExtractionResult, error) {
	r := fields.NewResult()
	for name, conf := range s.vals {
		fv := fields.FieldValue{Name: name, Confidence: conf, Source: "text"}
		if conf > 0 {
			fv.Value = fields.String(name + "-val")
		}
		r.Fields[name] = fv
	}
	return r, nil
}

func newSelector(vals map[string]float32) *Selector {
	return New(pipeline.New(nil, &constantStrategy{vals: vals}), nil)
}

func formConfigs(names ...string) []formconfig.FormConfig {
	out := make([]formconfig.FormConfig, len(names))
	for i, n := range names {
		out[i] = formconfig.FormConfig{Name: n}
	}
	return out
}

func TestSelector_FilenameBoostBreaksTie(t *testing.T) {
	sel := newSelector(map[string]float32{"policy_number": 0.9, "customer_name": 0.8})
	in := &extract.Input{Filename: "property-loss-2024.pdf", Text: "irrelevant"}

	got := sel.Run(context.Background(), in,
		formConfigs("claim_form.json", "policy_form.json", "customer_form.json"))

	assert.Equal(t, "claim_form.json", got.Summary["selected_config"])
	assert.Contains(t, got.Summary["reason"], "loss")
	require.Len(t, got.Leaderboard, 3)
	assert.Equal(t, "claim_form.json", got.Leaderboard[0].Name)

	// selection metadata is merged into the winning result
	assert.Equal(t, "claim_form.json", got.Result.Meta["selected_config"])
	assert.Equal(t, 2, got.Result.Meta["filled"])
	assert.Equal(t, 2, got.Result.Meta["total"])
}

func TestSelector_CompositeScore(t *testing.T) {
	// two fields, one filled at 0.6 -> aggregate 0.6, fill ratio 1/2
	sel := newSelector(map[string]float32{"a": 0.6, "b": 0.0})
	in := &extract.Input{Filename: "boring.pdf", Text: "irrelevant"}

	got := sel.Run(context.Background(), in, formConfigs("misc.json"))

	require.Len(t, got.Leaderboard, 1)
	assert.InDelta(t, 0.6+0.2*0.5, got.Leaderboard[0].Score, 1e-3)
	assert.Equal(t, "", got.Leaderboard[0].Reason)
}

func TestSelector_FirstSeenWinsOnTie(t *testing.T) {
	sel := newSelector(map[string]float32{"a": 0.5})
	in := &extract.Input{Filename: "boring.pdf", Text: "irrelevant"}

	got := sel.Run(context.Background(), in, formConfigs("a.json", "b.json"))
	assert.Equal(t, "a.json", got.Summary["selected_config"])
}

func TestSelector_NoConfigs(t *testing.T) {
	sel := newSelector(nil)
	got := sel.Run(context.Background(), &extract.Input{Filename: "x.pdf"}, nil)

	assert.Empty(t, got.Result.Fields)
	assert.Equal(t, "no configs found", got.Result.Meta["error"])
	assert.Empty(t, got.Leaderboard)
}

func TestFilenameHintBoost(t *testing.T) {
	tests := []struct {
		filename string
		label    string
		want     float32
		triggers int
	}{
		{"property-loss-2024.pdf", "claim_form.json", 0.075, 2}, // "loss" + "property-loss"
		{"fnol-notice.pdf", "claim_form.json", 0.075, 2},
		{"claim-fnol-loss-notice.pdf", "claim_form.json", 0.1, 4}, // capped
		{"policy-schedule.pdf", "policy_form.json", 0.075, 2},
		{"certificate.pdf", "policy_form.json", 0.05, 1},
		{"customer-details.pdf", "customer_info.json", 0.075, 2},
		{"boring.pdf", "claim_form.json", 0.0, 0},
		{"claim-notice.pdf", "unrelated.json", 0.0, 0}, // label maps to no group
	}
	for _, tt := range tests {
		boost, triggers := filenameHintBoost(tt.filename, tt.label)
		assert.InDelta(t, tt.want, boost, 1e-6, "%s / %s", tt.filename, tt.label)
		assert.Len(t, triggers, tt.triggers, "%s / %s", tt.filename, tt.label)
	}
}

func TestLeaderboard_TopThreeByScore(t *testing.T) {
	cands := []Candidate{
		{Name: "a", Score: 0.2},
		{Name: "b", Score: 0.9},
		{Name: "c", Score: 0.5},
		{Name: "d", Score: 0.9},
	}
	got := leaderboard(cands, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Name) // stable sort keeps b ahead of d
	assert.Equal(t, "d", got[1].Name)
	assert.Equal(t, "c", got[2].Name)
}
