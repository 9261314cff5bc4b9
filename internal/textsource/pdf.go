package textsource

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/claims-extractor/internal/ocr"
)

// Extractor recovers a PDF's embedded text layer. The pure-Go reader is
// tried first for better portability; pdftotext is the fallback for files
// it cannot parse.
type Extractor struct {
	pdftotext string
	runner    ocr.Runner
	logger    *slog.Logger
}

func NewExtractor(pdftotext string, runner ocr.Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.NewRunner()
	}
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	return &Extractor{pdftotext: pdftotext, runner: runner, logger: logger}
}

// Extract returns the embedded text and engine metadata. An empty string
// with a nil error means no text layer is recoverable; callers treat that
// as "strategy cannot process".
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, map[string]any, error) {
	if text, pages, err := readEmbeddedText(data); err == nil && strings.TrimSpace(text) != "" {
		return text, map[string]any{"engine": "pdf", "num_pages": pages}, nil
	} else if err != nil {
		e.logger.Debug("pure-go pdf read failed, falling back to pdftotext", "error", err)
	}

	text, pages, err := e.pdftotextFallback(ctx, data)
	meta := map[string]any{"engine": "pdftotext", "num_pages": pages}
	if err != nil {
		return "", meta, fmt.Errorf("pdftotext: %w", err)
	}
	return text, meta, nil
}

// readEmbeddedText walks every page with the pure-Go reader. The library
// panics on some malformed files, so the recover converts that into an
// ordinary error and lets the fallback engine have a go.
func readEmbeddedText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}
	pages = r.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	return b.String(), pages, nil
}

func (e *Extractor) pdftotextFallback(ctx context.Context, data []byte) (string, int, error) {
	tmpDir, err := os.MkdirTemp("", "ce-text-*")
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", 0, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, _, err := e.runner.Run(ctx, e.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", pdfPath, "-")
	if err != nil {
		return "", 0, err
	}
	text := string(out)
	// A form-feed \f is used as page separator by default
	pages := 1 + strings.Count(text, "\f")
	return text, pages, nil
}
