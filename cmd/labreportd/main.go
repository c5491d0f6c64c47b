package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
	"github.com/syedaman12/Lab-report-interpreter/internal/export"
	"github.com/syedaman12/Lab-report-interpreter/internal/extract"
	"github.com/syedaman12/Lab-report-interpreter/internal/ingest"
	"github.com/syedaman12/Lab-report-interpreter/internal/llm/openai"
	"github.com/syedaman12/Lab-report-interpreter/internal/pipeline"
	"github.com/syedaman12/Lab-report-interpreter/internal/server"
	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("no analysis API key configured; uploads will record analysis failures")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(cfg.Store.Path, logger)
	extractor := extract.NewExtractor(extract.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
	}, logger)
	analyzer := openai.NewClient(openai.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	}, logger)

	processor := pipeline.NewProcessor(logger, extractor, analyzer, st)
	exporter := export.NewService(st, logger)

	if cfg.Ingest.WatchDir != "" {
		files, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Root:        cfg.Ingest.WatchDir,
			InitialScan: true,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("failed to start watch folder", "dir", cfg.Ingest.WatchDir, "error", err)
			os.Exit(1)
		}
		svc := ingest.NewService(processor, logger)
		go svc.Run(ctx, files, errs)
		logger.Info("watch folder enabled", "dir", cfg.Ingest.WatchDir)
	}

	srv := server.NewServer(cfg.Server.HTTPAddr, processor, exporter, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("stopped")
}
