package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/syedaman12/Lab-report-interpreter/internal/pipeline"
)

// Service feeds watched files through the document pipeline one at a time.
type Service struct {
	Processor *pipeline.Processor
	Logger    *slog.Logger
}

func NewService(p *pipeline.Processor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Processor: p, Logger: logger}
}

// Run consumes watcher events until ctx is done. Each file is read whole and
// processed like a regular upload; a failure on one file never stops the loop.
func (s *Service) Run(ctx context.Context, files <-chan string, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			s.Logger.Error("ingest.run.watch_error", "error", err)
		case path, ok := <-files:
			if !ok {
				return
			}
			s.processFile(ctx, path)
		}
	}
}

func (s *Service) processFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.Logger.Error("ingest.read_failed", "path", path, "error", err)
		return
	}
	analysis, err := s.Processor.ProcessUpload(ctx, data, filepath.Base(path))
	if err != nil {
		s.Logger.Error("ingest.process_failed", "path", path, "error", err)
		return
	}
	s.Logger.Info("ingest.process_ok", "path", path, "succeeded", analysis.Succeeded())
}
