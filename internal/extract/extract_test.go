package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
)

type runnerCall struct {
	name string
	args []string
}

// stubRunner fakes the external pdftotext/pdftoppm/tesseract binaries.
type stubRunner struct {
	calls  []runnerCall
	handle func(name string, args []string) (string, error)
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, runnerCall{name: name, args: args})
	out, err := r.handle(name, args)
	return []byte(out), nil, err
}

func (r *stubRunner) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

// pageFlag pulls the value following "-f" from a command invocation.
func pageFlag(args []string) string {
	for i, a := range args {
		if a == "-f" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func newTestExtractor(pages int, runner *stubRunner) *Extractor {
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = runner
	e.pages = func(io.ReadSeeker) (int, error) { return pages, nil }
	return e
}

func TestExtract_AllPagesNative(t *testing.T) {
	runner := &stubRunner{handle: func(name string, args []string) (string, error) {
		if name != "pdftotext" {
			t.Fatalf("unexpected command %s", name)
		}
		return fmt.Sprintf("  page %s text  \n", pageFlag(args)), nil
	}}
	e := newTestExtractor(3, runner)

	res, err := e.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "page 1 text\npage 2 text\npage 3 text"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if got := runner.count("tesseract"); got != 0 {
		t.Errorf("expected no OCR calls, got %d", got)
	}
	for i, p := range res.Pages {
		if p.Source != SourceNative {
			t.Errorf("page %d: expected native source, got %s", i+1, p.Source)
		}
	}
}

func TestExtract_OCRFallbackForEmptyPage(t *testing.T) {
	runner := &stubRunner{}
	runner.handle = func(name string, args []string) (string, error) {
		switch name {
		case "pdftotext":
			if pageFlag(args) == "2" {
				return "   \n", nil // page 2 has no embedded text
			}
			return "native " + pageFlag(args), nil
		case "pdftoppm":
			// emulate the rendered page image so the OCR step finds it
			prefix := args[len(args)-1]
			if err := os.WriteFile(prefix+"-2.png", []byte("png"), 0o644); err != nil {
				t.Fatalf("write fake image: %v", err)
			}
			return "", nil
		case "tesseract":
			return "recognized 2\n", nil
		}
		t.Fatalf("unexpected command %s", name)
		return "", nil
	}
	e := newTestExtractor(3, runner)

	res, err := e.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "native 1\nrecognized 2\n\nnative 3"
	if res.Text != want {
		t.Errorf("expected %q, got %q", want, res.Text)
	}
	if got := runner.count("tesseract"); got != 1 {
		t.Errorf("expected exactly one OCR call, got %d", got)
	}
	if res.Pages[1].Source != SourceRecognized {
		t.Errorf("expected page 2 source recognized, got %s", res.Pages[1].Source)
	}
}

func TestExtract_OCRYieldsEmptyText(t *testing.T) {
	runner := &stubRunner{}
	runner.handle = func(name string, args []string) (string, error) {
		switch name {
		case "pdftotext":
			return "", nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o644); err != nil {
				t.Fatalf("write fake image: %v", err)
			}
			return "", nil
		case "tesseract":
			return "", nil // OCR found nothing; still used
		}
		return "", nil
	}
	e := newTestExtractor(1, runner)

	res, err := e.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "" {
		t.Errorf("expected empty text, got %q", res.Text)
	}
	if got := runner.count("tesseract"); got != 1 {
		t.Errorf("expected one OCR call, got %d", got)
	}
}

func TestExtract_ZeroPages(t *testing.T) {
	runner := &stubRunner{handle: func(string, []string) (string, error) {
		t.Fatal("no commands should run for a zero-page document")
		return "", nil
	}}
	e := newTestExtractor(0, runner)

	res, err := e.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("zero pages is not an error, got: %v", err)
	}
	if res.Text != "" {
		t.Errorf("expected empty text, got %q", res.Text)
	}
}

func TestExtract_MalformedDocument(t *testing.T) {
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.runner = &stubRunner{handle: func(string, []string) (string, error) { return "", nil }}
	e.pages = func(io.ReadSeeker) (int, error) { return 0, errors.New("not a pdf") }

	_, err := e.Extract(context.Background(), []byte("garbage"))
	if !errors.Is(err, common.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestExtract_NativeFailureFallsBackToOCR(t *testing.T) {
	runner := &stubRunner{}
	runner.handle = func(name string, args []string) (string, error) {
		switch name {
		case "pdftotext":
			return "", errors.New("exit status 1")
		case "pdftoppm":
			prefix := args[len(args)-1]
			if err := os.WriteFile(prefix+"-1.png", []byte("png"), 0o644); err != nil {
				t.Fatalf("write fake image: %v", err)
			}
			return "", nil
		case "tesseract":
			return "salvaged", nil
		}
		return "", nil
	}
	e := newTestExtractor(1, runner)

	res, err := e.Extract(context.Background(), []byte("%PDF-fake"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "salvaged" {
		t.Errorf("expected OCR output, got %q", res.Text)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "pdftotext") {
		t.Errorf("expected a pdftotext warning, got %v", res.Warnings)
	}
}
