package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
	"github.com/syedaman12/Lab-report-interpreter/internal/extract"
	"github.com/syedaman12/Lab-report-interpreter/internal/llm/openai"
	"github.com/syedaman12/Lab-report-interpreter/internal/pipeline"
	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

// One-shot pipeline run: analyze a single PDF on disk, append the outcome to
// the configured store, and print the analysis JSON.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "analyze <report.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

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
	st := store.New(cfg.Store.Path, logger)

	processor := pipeline.NewProcessor(logger, extractor, analyzer, st)

	analysis, err := processor.ProcessUpload(ctx, data, filepath.Base(path))
	if err != nil {
		logger.Error("analysis failed", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	if err := enc.Encode(analysis); err != nil {
		logger.Error("encode output", "error", err)
		os.Exit(1)
	}
}
