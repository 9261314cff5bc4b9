package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/claims-extractor/internal/common"
)

// Extractor rasterizes PDF bytes with pdftoppm and runs tesseract per page.
type Extractor struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger

	probeOnce sync.Once
	available bool
}

func NewExtractor(cfg common.OCRConfig, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Available reports whether both the rasterizer and the OCR engine can be
// found. Probed once per extractor.
func (e *Extractor) Available() bool {
	e.probeOnce.Do(func() {
		for _, bin := range []string{e.cfg.Pdftoppm, e.cfg.Tesseract} {
			if _, err := exec.LookPath(bin); err != nil {
				e.logger.Debug("ocr tool not found", "bin", bin, "error", err)
				return
			}
		}
		e.available = true
	})
	return e.available
}

// Recognize renders each page to PNG and OCRs it, returning the joined text
// and engine metadata. Pages that fail OCR are skipped with a warning.
func (e *Extractor) Recognize(ctx context.Context, data []byte) (string, map[string]any, error) {
	start := time.Now()
	tmpDir, err := os.MkdirTemp("", "ce-ocr-*")
	if err != nil {
		return "", nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", pdfPath, prefix)
	if err != nil {
		return "", nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", nil, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	for _, img := range matches {
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", e.cfg.TesseractLang)
		if err != nil {
			e.logger.Warn("tesseract failed for page", "image", img, "error", err, "stderr", truncate(string(errb), 512))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.Write(out)
	}

	meta := map[string]any{
		"engine":    "tesseract",
		"num_pages": len(matches),
		"ocr_ms":    time.Since(start).Milliseconds(),
		"ocr_dpi":   e.cfg.DPI,
		"ocr_lang":  e.cfg.TesseractLang,
	}
	return b.String(), meta, nil
}
