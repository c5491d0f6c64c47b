package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/syedaman12/Lab-report-interpreter/internal/extract"
	"github.com/syedaman12/Lab-report-interpreter/internal/llm"
	"github.com/syedaman12/Lab-report-interpreter/internal/pipeline"
	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, data []byte) (extract.Result, error) {
	return extract.Result{Text: string(data)}, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ context.Context, text string) llm.AnalysisReport {
	return llm.Success(llm.LabReport{
		Results:       []llm.TestResult{{Test: "Echo", Value: text, Range: "-", Status: "Normal", Analysis: "-"}},
		OverallStatus: "Healthy",
		DoctorNotes:   "-",
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStartWatcher_InitialScanFiltersExtensions(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "inbox")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "a.pdf"), "a")
	writeFile(t, filepath.Join(sub, "b.pdf"), "b")
	writeFile(t, filepath.Join(root, "notes.txt"), "skip")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, _, err := StartWatcher(ctx, WatchConfig{Root: root, InitialScan: true}, testLogger())
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case p := <-files:
			got = append(got, filepath.Base(p))
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}
	sort.Strings(got)
	if got[0] != "a.pdf" || got[1] != "b.pdf" {
		t.Errorf("initial scan emitted %v", got)
	}

	// nothing else should have been queued
	select {
	case p := <-files:
		t.Errorf("unexpected extra emission %q", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStartWatcher_RequiresRoot(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, testLogger()); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}

func TestStartWatcher_EmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, _, err := StartWatcher(ctx, WatchConfig{Root: root, Debounce: 20 * time.Millisecond}, testLogger())
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	writeFile(t, filepath.Join(root, "fresh.pdf"), "fresh")
	writeFile(t, filepath.Join(root, "ignored.tmp"), "tmp")

	select {
	case p := <-files:
		if filepath.Base(p) != "fresh.pdf" {
			t.Errorf("emitted %q", p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no emission for new pdf")
	}
}

func TestServiceRun_ProcessesWatchedFiles(t *testing.T) {
	logger := testLogger()
	st := store.New(filepath.Join(t.TempDir(), "lab_reports.json"), logger)
	p := pipeline.NewProcessor(logger, stubExtractor{}, stubAnalyzer{}, st)
	svc := NewService(p, logger)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	writeFile(t, path, "hemoglobin 13.5")

	files := make(chan string, 1)
	errs := make(chan error)
	files <- path
	close(files)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Run(ctx, files, errs)

	records, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].FileName != "report.pdf" {
		t.Errorf("file name = %q", records[0].FileName)
	}
	if !records[0].Analysis.Succeeded() {
		t.Errorf("analysis = %+v", records[0].Analysis)
	}
}

func TestServiceRun_UnreadableFileDoesNotStopLoop(t *testing.T) {
	logger := testLogger()
	st := store.New(filepath.Join(t.TempDir(), "lab_reports.json"), logger)
	p := pipeline.NewProcessor(logger, stubExtractor{}, stubAnalyzer{}, st)
	svc := NewService(p, logger)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	writeFile(t, good, "ok")

	files := make(chan string, 2)
	files <- filepath.Join(dir, "missing.pdf")
	files <- good
	close(files)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Run(ctx, files, make(chan error))

	records, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].FileName != "good.pdf" {
		t.Errorf("records = %+v", records)
	}
}
