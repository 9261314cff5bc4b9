package autoselect

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/joseph-ayodele/claims-extractor/internal/extract"
	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
	"github.com/joseph-ayodele/claims-extractor/internal/pipeline"
)

// fillRatioWeight is the composite-score weight on the filled/total ratio.
const fillRatioWeight = 0.2

// groupKeywords maps a form group to the filename keywords that hint a
// document belongs to it.
var groupKeywords = map[string][]string{
	"claim":    {"claim", "fnol", "loss", "notice", "property-loss"},
	"policy":   {"policy", "schedule", "certificate"},
	"customer": {"customer", "info", "information", "details"},
}

// Candidate records one config's trial for the duration of a selection call.
type Candidate struct {
	Name   string
	Result pipeline.Result
	Score  float32
	Filled int
	Total  int
	Reason string
}

// LeaderboardEntry is one row of the ranked top-N summary.
type LeaderboardEntry struct {
	Name   string  `json:"name"`
	Score  float32 `json:"score"`
	Filled int     `json:"filled"`
	Total  int     `json:"total"`
	Reason string  `json:"reason"`
}

// Selection is the outcome of one auto-selection call: the winning result
// with selection metadata merged in, a compact summary of the choice, and
// the ranked leaderboard.
type Selection struct {
	Result      pipeline.Result
	Summary     map[string]any
	Leaderboard []LeaderboardEntry
}

// Selector runs the full pipeline once per candidate config and picks the
// best-scoring run. Trials share no intermediate state.
type Selector struct {
	pipe   *pipeline.Pipeline
	logger *slog.Logger
}

func New(pipe *pipeline.Pipeline, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{pipe: pipe, logger: logger}
}

// Run tries every candidate config against the document and returns the one
// whose extraction scores best. The first-seen candidate wins exact ties,
// so the iteration order of configs is the tie-break. Zero candidates yield
// an explicit "no configs found" result, never an error.
func (s *Selector) Run(ctx context.Context, in *extract.Input, configs []formconfig.FormConfig) Selection {
	if len(configs) == 0 {
		return Selection{
			Result: pipeline.Result{
				Fields:     map[string]fields.FieldValue{},
				Confidence: 0.0,
				Meta:       map[string]any{"error": "no configs found"},
			},
		}
	}

	candidates := make([]Candidate, 0, len(configs))
	for i := range configs {
		cfg := configs[i]
		res := s.pipe.Run(ctx, in, &cfg)
		filled, total := res.FilledCount()
		base := res.Confidence + fillRatioWeight*fillRatio(filled, total)
		boost, triggers := filenameHintBoost(in.Filename, cfg.Name)
		reason := ""
		if len(triggers) > 0 {
			reason = fmt.Sprintf("+%.2f filename match: %s", boost, strings.Join(triggers, ", "))
		}
		candidates = append(candidates, Candidate{
			Name:   cfg.Name,
			Result: res,
			Score:  base + boost,
			Filled: filled,
			Total:  total,
			Reason: reason,
		})
		s.logger.Debug("config trial",
			"config", cfg.Name, "score", base+boost, "filled", filled, "total", total, "boost", boost)
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	summary := map[string]any{
		"selected_config": best.Name,
		"score":           round3(best.Score),
		"filled":          best.Filled,
		"total":           best.Total,
		"reason":          best.Reason,
	}

	result := best.Result
	meta := make(map[string]any, len(result.Meta)+len(summary))
	for k, v := range result.Meta {
		meta[k] = v
	}
	for k, v := range summary {
		meta[k] = v
	}
	result.Meta = meta

	return Selection{
		Result:      result,
		Summary:     summary,
		Leaderboard: leaderboard(candidates, 3),
	}
}

func fillRatio(filled, total int) float32 {
	if total == 0 {
		return 0.0
	}
	return float32(filled) / float32(total)
}

// filenameHintBoost classifies the config label into a form group and checks
// the document filename for that group's keywords. One keyword is worth
// 0.05, each further keyword 0.025 more, capped at 0.1.
func filenameHintBoost(filename, configLabel string) (float32, []string) {
	name := strings.ToLower(filename)
	label := strings.ToLower(configLabel)

	var group string
	switch {
	case strings.Contains(label, "claim"):
		group = "claim"
	case strings.Contains(label, "policy"):
		group = "policy"
	case strings.Contains(label, "customer"), strings.Contains(label, "info"):
		group = "customer"
	default:
		return 0.0, nil
	}

	var triggers []string
	for _, kw := range groupKeywords[group] {
		if strings.Contains(name, kw) {
			triggers = append(triggers, kw)
		}
	}
	if len(triggers) == 0 {
		return 0.0, nil
	}
	boost := 0.05 + 0.025*float32(len(triggers)-1)
	if boost > 0.1 {
		boost = 0.1
	}
	return boost, triggers
}

func leaderboard(candidates []Candidate, n int) []LeaderboardEntry {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]LeaderboardEntry, len(ranked))
	for i, c := range ranked {
		out[i] = LeaderboardEntry{
			Name:   c.Name,
			Score:  round3(c.Score),
			Filled: c.Filled,
			Total:  c.Total,
			Reason: c.Reason,
		}
	}
	return out
}

func round3(f float32) float32 {
	return float32(math.Round(float64(f)*1000) / 1000)
}
