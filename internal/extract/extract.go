package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
)

// PageSource records how a page's text was obtained.
type PageSource string

const (
	SourceNative     PageSource = "native"
	SourceRecognized PageSource = "recognized"
)

// PageText is the extracted text for one page, in document order.
type PageText struct {
	Number int
	Source PageSource
	Text   string
}

// Result is the outcome of extracting a whole document.
type Result struct {
	Text     string
	Pages    []PageText
	Duration time.Duration
	Warnings []string
}

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned pages, default 300
}

// Extractor converts a PDF byte stream into plain text, page by page, using
// native text extraction first and an OCR fallback per page when native
// extraction yields nothing.
type Extractor struct {
	cfg    Config
	runner Runner
	pages  func(rs io.ReadSeeker) (int, error)
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
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
		cfg.DPI = 300
	}
	return &Extractor{
		cfg:    cfg,
		runner: execRunner{logger: logger},
		pages: func(rs io.ReadSeeker) (int, error) {
			return api.PageCount(rs, nil)
		},
		logger: logger,
	}
}

// Extract walks the document in page order. Each page's native text is used
// when its trimmed form is non-empty; otherwise the page is rasterized and run
// through OCR, and that output is used even if empty. Page texts are joined
// with single newlines and the whole is trimmed. A zero-page document yields
// an empty string, not an error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()

	pageCount, err := e.pages(bytes.NewReader(data))
	if err != nil {
		e.logger.Error("extract.invalid_pdf", "error", err, "bytes", len(data))
		return Result{}, fmt.Errorf("%w: %v", common.ErrMalformedDocument, err)
	}

	tmp, err := os.CreateTemp("", "labreport-*.pdf")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			e.logger.Warn("extract.temp_cleanup_failed", "path", tmp.Name(), "error", rmErr)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close temp file: %w", err)
	}

	res := Result{Pages: make([]PageText, 0, pageCount)}
	texts := make([]string, 0, pageCount)

	for n := 1; n <= pageCount; n++ {
		native, warns := e.pageText(ctx, tmp.Name(), n)
		res.Warnings = append(res.Warnings, warns...)

		if trimmed := strings.TrimSpace(native); trimmed != "" {
			res.Pages = append(res.Pages, PageText{Number: n, Source: SourceNative, Text: trimmed})
			texts = append(texts, trimmed)
			continue
		}

		ocr, warns := e.recognizePage(ctx, tmp.Name(), n)
		res.Warnings = append(res.Warnings, warns...)
		res.Pages = append(res.Pages, PageText{Number: n, Source: SourceRecognized, Text: ocr})
		texts = append(texts, ocr)
	}

	res.Text = strings.TrimSpace(strings.Join(texts, "\n"))
	res.Duration = time.Since(start)

	e.logger.Info("extract.ok",
		"pages", pageCount,
		"recognized_pages", countRecognized(res.Pages),
		"text_bytes", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// pageText pulls the embedded text of a single page.
// pdftotext -f N -l N -layout -enc UTF-8 -eol unix <path> -
func (e *Extractor) pageText(ctx context.Context, path string, page int) (string, []string) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext,
		"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
		"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		// A failed native pass is treated as an empty page so the OCR
		// fallback still gets its chance.
		return "", []string{fmt.Sprintf("pdftotext page %d: %v: %s", page, err, errb)}
	}
	return string(out), nil
}

// recognizePage rasterizes a single page and runs OCR on the image.
func (e *Extractor) recognizePage(ctx context.Context, path string, page int) (string, []string) {
	tmpDir, err := os.MkdirTemp("", "labreport-ocr-*")
	if err != nil {
		return "", []string{fmt.Sprintf("ocr page %d: %v", page, err)}
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
		"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", []string{fmt.Sprintf("pdftoppm page %d: %v: %s", page, err, errb)}
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", []string{fmt.Sprintf("pdftoppm page %d produced no image", page)}
	}

	// tesseract <img> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, matches[0], "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", []string{fmt.Sprintf("tesseract page %d: %v: %s", page, err, errb)}
	}
	return string(out), nil
}

func countRecognized(pages []PageText) int {
	n := 0
	for _, p := range pages {
		if p.Source == SourceRecognized {
			n++
		}
	}
	return n
}
