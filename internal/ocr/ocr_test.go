package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/claims-extractor/internal/common"
)

// fakeRunner plays pdftoppm by writing page images next to the given prefix
// and plays tesseract by returning canned text per image.
type fakeRunner struct {
	pages     int
	pageText  map[int]string
	renderErr error
	calls     [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	if strings.Contains(name, "pdftoppm") {
		if f.renderErr != nil {
			return nil, []byte("rasterize boom"), f.renderErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}

	// tesseract <img> stdout -l <lang>
	img := args[0]
	for i, text := range f.pageText {
		if strings.HasSuffix(img, fmt.Sprintf("-%d.png", i)) {
			return []byte(text), nil, nil
		}
	}
	return nil, []byte("no text"), errors.New("tesseract failed")
}

func TestRecognize(t *testing.T) {
	runner := &fakeRunner{
		pages:    2,
		pageText: map[int]string{1: "Policy: ABC-123456", 2: "Claim Amount: $1,234.56"},
	}
	e := NewExtractor(common.OCRConfig{DPI: 150, TesseractLang: "eng"}, runner, nil)

	text, meta, err := e.Recognize(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Contains(t, text, "ABC-123456")
	assert.Contains(t, text, "$1,234.56")
	assert.Contains(t, text, "\f") // page break marker survives

	assert.Equal(t, "tesseract", meta["engine"])
	assert.Equal(t, 2, meta["num_pages"])
	assert.Equal(t, 150, meta["ocr_dpi"])
	assert.Equal(t, "eng", meta["ocr_lang"])

	require.GreaterOrEqual(t, len(runner.calls), 3)
	render := runner.calls[0]
	assert.Equal(t, "pdftoppm", render[0])
	assert.Equal(t, []string{"-r", "150", "-png"}, render[1:4])
}

func TestRecognize_MaxPagesCapsOutput(t *testing.T) {
	runner := &fakeRunner{
		pages:    3,
		pageText: map[int]string{1: "one", 2: "two", 3: "three"},
	}
	e := NewExtractor(common.OCRConfig{MaxPages: 2}, runner, nil)

	text, meta, err := e.Recognize(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 2, meta["num_pages"])
	assert.NotContains(t, text, "three")
}

func TestRecognize_SkipsFailedPages(t *testing.T) {
	runner := &fakeRunner{
		pages:    2,
		pageText: map[int]string{2: "only page two"},
	}
	e := NewExtractor(common.OCRConfig{}, runner, nil)

	text, _, err := e.Recognize(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "only page two", text)
}

func TestRecognize_NoPagesRendered(t *testing.T) {
	runner := &fakeRunner{pages: 0}
	e := NewExtractor(common.OCRConfig{}, runner, nil)

	_, _, err := e.Recognize(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pages rendered")
}

func TestRecognize_RasterizeError(t *testing.T) {
	runner := &fakeRunner{renderErr: errors.New("exit status 1")}
	e := NewExtractor(common.OCRConfig{}, runner, nil)

	_, _, err := e.Recognize(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftoppm")
	assert.Contains(t, err.Error(), "rasterize boom")
}

func TestNewExtractorDefaults(t *testing.T) {
	e := NewExtractor(common.OCRConfig{}, &fakeRunner{}, nil)
	assert.Equal(t, "pdftoppm", e.cfg.Pdftoppm)
	assert.Equal(t, "tesseract", e.cfg.Tesseract)
	assert.Equal(t, "eng", e.cfg.TesseractLang)
	assert.Equal(t, 200, e.cfg.DPI)
}
