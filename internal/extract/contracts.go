package extract

import (
	"context"

	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
)

// Input is one document handed to the strategies. Either Data (raw document
// bytes) or Text (pre-extracted text) must be set; when Text is set the text
// strategy skips acquisition entirely.
type Input struct {
	Filename string
	Data     []byte
	Text     string

	// acquisition cache so CanProcess and Extract don't read the document twice
	acquired     bool
	acquiredText string
	acquiredMeta map[string]any
	acquiredErr  error
}

// Strategy is one independent method of producing field values from a
// document. The set of strategies is closed and known at composition time;
// the pipeline runs every strategy whose CanProcess reports true.
type Strategy interface {
	Name() string
	CanProcess(ctx context.Context, in *Input) bool
	Extract(ctx context.Context, in *Input, cfg *formconfig.FormConfig) (fields.ExtractionResult, error)
}

// TextSource recovers the embedded text layer from document bytes.
// Implementations return an empty string when no text is recoverable; the
// meta map carries at least "engine" and "num_pages".
type TextSource interface {
	Extract(ctx context.Context, data []byte) (text string, meta map[string]any, err error)
}

// OCRSource recovers text from document bytes via optical character
// recognition. Available reports up front whether the OCR toolchain is
// reachable at all.
type OCRSource interface {
	Available() bool
	Recognize(ctx context.Context, data []byte) (text string, meta map[string]any, err error)
}
