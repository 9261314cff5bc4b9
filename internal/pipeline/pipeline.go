package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/claims-extractor/internal/extract"
	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
)

// Result is the plain structured record a pipeline run emits. It is always
// well-formed: every error condition is represented in Meta, never raised.
type Result struct {
	Fields     map[string]fields.FieldValue `json:"fields"`
	Confidence float32                      `json:"confidence"`
	Meta       map[string]any               `json:"meta"`
}

// Pipeline asks every registered strategy whether it can process the input,
// runs the ones that can, merges their outputs field by field and computes
// one aggregate document confidence. Registration order only affects
// metadata-collision precedence and merge tie-breaks; field selection is
// always by confidence.
type Pipeline struct {
	strategies []extract.Strategy
	logger     *slog.Logger
}

func New(logger *slog.Logger, strategies ...extract.Strategy) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{strategies: strategies, logger: logger}
}

// Run extracts one document with one config. A strategy failing mid-run is
// recorded as an empty result carrying the error and the strategy identity;
// the remaining strategies still run.
func (p *Pipeline) Run(ctx context.Context, in *extract.Input, cfg *formconfig.FormConfig) Result {
	var results []fields.ExtractionResult
	for _, s := range p.strategies {
		if !s.CanProcess(ctx, in) {
			p.logger.Debug("strategy skipped", "strategy", s.Name(), "filename", in.Filename)
			continue
		}
		res, err := s.Extract(ctx, in, cfg)
		if err != nil {
			p.logger.Warn("strategy failed", "strategy", s.Name(), "filename", in.Filename, "error", err)
			failed := fields.NewResult()
			failed.DocMeta["error"] = err.Error()
			failed.DocMeta["extractor"] = s.Name()
			results = append(results, failed)
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return Result{
			Fields:     map[string]fields.FieldValue{},
			Confidence: 0.0,
			Meta:       map[string]any{"error": "no extractor available"},
		}
	}

	merged := results[0]
	for _, r := range results[1:] {
		merged = merged.Merge(r)
	}

	return Result{
		Fields:     merged.Fields,
		Confidence: fields.AggregateConfidence(merged),
		Meta:       merged.DocMeta,
	}
}

// FilledCount returns how many fields carry a non-blank value, and the total.
func (r Result) FilledCount() (filled, total int) {
	total = len(r.Fields)
	for _, fv := range r.Fields {
		if fv.Filled() {
			filled++
		}
	}
	return filled, total
}
