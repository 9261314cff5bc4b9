package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
)

// OCR text is strictly less trustworthy than an embedded text layer: base
// scores are capped, then the whole match is scaled down. Both dampeners are
// kept as-is from the reference behavior rather than collapsed into one.
const (
	ocrScoreCeiling = 0.6
	ocrScale        = 0.9
)

// OCRStrategy applies the same pattern logic as the text strategy to
// OCR-recovered text, with dampened confidence.
type OCRStrategy struct {
	source OCRSource
	logger *slog.Logger
}

func NewOCRStrategy(source OCRSource, logger *slog.Logger) *OCRStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStrategy{source: source, logger: logger}
}

func (s *OCRStrategy) Name() string { return "ocr" }

// CanProcess reports whether the OCR toolchain is reachable and there are
// document bytes to rasterize. Unavailability means "produces nothing",
// never an error.
func (s *OCRStrategy) CanProcess(_ context.Context, in *Input) bool {
	return s.source != nil && s.source.Available() && len(in.Data) > 0
}

func (s *OCRStrategy) Extract(ctx context.Context, in *Input, cfg *formconfig.FormConfig) (fields.ExtractionResult, error) {
	text, srcMeta, err := s.source.Recognize(ctx, in.Data)
	if err != nil {
		return fields.ExtractionResult{}, err
	}

	patterns := DefaultPatterns
	if cfg != nil && len(cfg.Patterns) > 0 {
		patterns = cfg.Patterns
	}

	out := fields.NewResult()
	for name, pats := range patterns {
		var value *string
		var base float32
		for _, pat := range pats {
			re, err := regexp.Compile(`(?im)` + pat)
			if err != nil {
				s.logger.Debug("skipping malformed pattern", "field", name, "error", err)
				continue
			}
			m := re.FindStringSubmatch(text)
			if m == nil || len(m) < 2 {
				continue
			}
			v := strings.TrimSpace(m[1])
			conf := Score(name, v)
			if conf > ocrScoreCeiling {
				conf = ocrScoreCeiling
			}
			if conf > base {
				base = conf
				value = fields.String(v)
			}
		}
		out.Fields[name] = fields.FieldValue{
			Name:       name,
			Value:      value,
			Confidence: fields.Clamp(base * ocrScale),
			Source:     s.Name(),
		}
	}

	for k, v := range srcMeta {
		out.DocMeta[k] = v
	}
	out.DocMeta["ocr"] = true
	out.TextDigest = digest(text)
	return out, nil
}
