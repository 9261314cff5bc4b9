package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/claims-extractor/constants"
	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
)

// multiHitPenalty is subtracted when more than one pattern matched a field
// and the winning confidence already exceeds the penalty threshold.
const multiHitPenalty = 0.05

// DefaultPenaltyThreshold is the confidence floor above which the multi-hit
// penalty applies. Heuristic constant; tunable, not derived.
const DefaultPenaltyThreshold = 0.2

var (
	reNBSP      = regexp.MustCompile(" ")
	reHyphenEOL = regexp.MustCompile(`-\n`)
	reTabCR     = regexp.MustCompile(`[\t\r]+`)
	reSpaceRun  = regexp.MustCompile(` {2,}`)
	reMarker    = regexp.MustCompile(`(?i)AXA\s*XL`)
)

// TextStrategy extracts fields from the document's embedded text layer with
// a regex pass over normalized text, then overlays the line-based key-value
// scan on top of it.
type TextStrategy struct {
	source           TextSource
	penaltyThreshold float32
	logger           *slog.Logger
}

func NewTextStrategy(source TextSource, penaltyThreshold float32, logger *slog.Logger) *TextStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	if penaltyThreshold <= 0 {
		penaltyThreshold = DefaultPenaltyThreshold
	}
	return &TextStrategy{source: source, penaltyThreshold: penaltyThreshold, logger: logger}
}

func (s *TextStrategy) Name() string { return "text" }

// CanProcess reports whether any text is recoverable from the input.
func (s *TextStrategy) CanProcess(ctx context.Context, in *Input) bool {
	text, _, err := s.acquire(ctx, in)
	return err == nil && strings.TrimSpace(text) != ""
}

func (s *TextStrategy) acquire(ctx context.Context, in *Input) (string, map[string]any, error) {
	if in.Text != "" {
		return in.Text, map[string]any{"engine": "caller", "num_pages": 0}, nil
	}
	if !in.acquired {
		in.acquired = true
		if s.source == nil {
			return "", nil, nil
		}
		in.acquiredText, in.acquiredMeta, in.acquiredErr = s.source.Extract(ctx, in.Data)
	}
	return in.acquiredText, in.acquiredMeta, in.acquiredErr
}

func (s *TextStrategy) Extract(ctx context.Context, in *Input, cfg *formconfig.FormConfig) (fields.ExtractionResult, error) {
	rawText, srcMeta, err := s.acquire(ctx, in)
	if err != nil {
		return fields.ExtractionResult{}, err
	}
	patterns := MergePatterns(cfg)
	normText := normalizeText(rawText)

	out := fields.NewResult()

	// Pass 1: regex-based search, robust to values spanning lines.
	for name, pats := range patterns {
		var bestVal *string
		var bestConf float32
		hits := 0
		for _, pat := range pats {
			re, err := regexp.Compile(`(?ims)` + pat)
			if err != nil {
				// malformed pattern: skipped at single-pattern granularity
				s.logger.Debug("skipping malformed pattern", "field", name, "error", err)
				continue
			}
			m := re.FindStringSubmatch(normText)
			if m == nil || len(m) < 2 {
				continue
			}
			hits++
			candidate := strings.TrimSpace(m[1])
			if conf := Score(name, candidate); conf > bestConf {
				bestConf = conf
				bestVal = fields.String(candidate)
			}
		}
		if bestVal != nil {
			if hits > 1 && bestConf > s.penaltyThreshold {
				bestConf -= multiHitPenalty
			}
			out.Fields[name] = fields.FieldValue{
				Name:       name,
				Value:      bestVal,
				Confidence: fields.Clamp(bestConf),
				Source:     s.Name(),
			}
		} else {
			// explicit "not found" is a first-class outcome
			out.Fields[name] = fields.FieldValue{Name: name, Confidence: 0.0, Source: s.Name()}
		}
	}

	// Pass 2: label-based key->value scanning over the raw lines. Overrides
	// only when it found a value and the regex pass had none or scored lower.
	for name, cand := range scanKeyValues(rawText) {
		cur, ok := out.Fields[name]
		if cand.Value == "" {
			continue
		}
		if !ok || cur.Value == nil || cand.Confidence > cur.Confidence {
			out.Fields[name] = fields.FieldValue{
				Name:       name,
				Value:      fields.String(cand.Value),
				Confidence: cand.Confidence,
				Source:     s.Name(),
				Meta:       map[string]any{"method": "kv"},
			}
		}
	}

	for k, v := range srcMeta {
		out.DocMeta[k] = v
	}
	out.DocMeta[constants.ContainsMarkerKey] = reMarker.MatchString(rawText)
	out.TextDigest = digest(rawText)
	return out, nil
}

// normalizeText collapses noisy whitespace but preserves newlines so
// multi-line captures stay possible.
func normalizeText(text string) string {
	t := reNBSP.ReplaceAllString(text, " ")
	t = reHyphenEOL.ReplaceAllString(t, "")
	t = reTabCR.ReplaceAllString(t, " ")
	t = reSpaceRun.ReplaceAllString(t, " ")
	return t
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
