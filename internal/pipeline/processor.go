package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
	"github.com/syedaman12/Lab-report-interpreter/internal/extract"
	"github.com/syedaman12/Lab-report-interpreter/internal/llm"
	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

// TextExtractor is stage 1: document bytes -> text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (extract.Result, error)
}

// Processor composes extraction, analysis, and persistence into the single
// "analyze an uploaded document" operation.
type Processor struct {
	Logger    *slog.Logger
	Extractor TextExtractor
	Analyzer  llm.ReportAnalyzer
	Store     *store.Store

	now func() time.Time
}

func NewProcessor(logger *slog.Logger, ex TextExtractor, an llm.ReportAnalyzer, st *store.Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: ex, Analyzer: an, Store: st, now: time.Now}
}

// ProcessUpload extracts the document text, analyzes it, and appends the
// outcome to the store. The analysis outcome is returned to the caller
// whether it succeeded or failed; an analysis failure is a normal,
// representable result, not an error. Only a malformed document or a corrupt
// store aborts the operation.
func (p *Processor) ProcessUpload(ctx context.Context, data []byte, filename string) (llm.AnalysisReport, error) {
	res, err := p.Extractor.Extract(ctx, data)
	if err != nil {
		p.Logger.Error("pipeline.extract.failed", "file_name", filename, "err", err)
		return llm.AnalysisReport{}, common.WrapError(err, fmt.Sprintf("extract %q", filename))
	}
	p.Logger.Info("pipeline.extract.ok",
		"file_name", filename,
		"pages", len(res.Pages),
		"text_bytes", len(res.Text),
		"warnings", len(res.Warnings),
	)

	analysis := p.Analyzer.Analyze(ctx, res.Text)

	rec := store.ReportRecord{
		Timestamp: p.now().Format(store.TimestampLayout),
		FileName:  filename,
		Analysis:  analysis,
	}
	index, err := p.Store.Add(rec)
	if err != nil {
		p.Logger.Error("pipeline.persist.failed", "file_name", filename, "err", err)
		return llm.AnalysisReport{}, common.WrapError(err, "persist record")
	}

	p.Logger.Info("pipeline.process.ok",
		"file_name", filename,
		"index", index,
		"succeeded", analysis.Succeeded(),
	)
	return analysis, nil
}

// Record fetches one stored record by its position. Indices are 0-based and
// positional; negative or past-the-end values fail with ErrIndexOutOfRange.
func (p *Processor) Record(index int) (store.ReportRecord, error) {
	records, err := p.Store.Load()
	if err != nil {
		return store.ReportRecord{}, err
	}
	if index < 0 || index >= len(records) {
		return store.ReportRecord{}, fmt.Errorf("%w: %d of %d", common.ErrIndexOutOfRange, index, len(records))
	}
	return records[index], nil
}

// History returns the full stored sequence in arrival order.
func (p *Processor) History() ([]store.ReportRecord, error) {
	return p.Store.Load()
}
