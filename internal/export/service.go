package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

// Service produces XLSX bytes from the stored report history.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// ExportResultsXLSX returns an XLSX workbook (as bytes) with one row per test
// result across the whole history. Failed analyses still get a row so the
// export mirrors the audit trail.
func (s *Service) ExportResultsXLSX() ([]byte, error) {
	start := time.Now()

	records, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Lab Results"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultSheet, _ := f.GetSheetIndex("Sheet1")
	if defaultSheet != -1 && defaultSheet != activeIndex {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Report #",
		"Date",
		"File Name",
		"Test",
		"Value",
		"Reference Range",
		"Status",
		"Analysis",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i, rec := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if rec.Analysis.Report == nil {
			write(1, i)
			write(2, rec.Timestamp)
			write(3, rec.FileName)
			msg := "analysis failed"
			if rec.Analysis.Failure != nil {
				msg = "analysis failed: " + rec.Analysis.Failure.Error
			}
			write(8, msg)
			row++
			continue
		}

		for _, result := range rec.Analysis.Report.Results {
			write(1, i)
			write(2, rec.Timestamp)
			write(3, rec.FileName)
			write(4, result.Test)
			write(5, result.Value)
			write(6, result.Range)
			write(7, result.Status)
			write(8, result.Analysis)
			row++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "B", "B", 20) // date
	_ = f.SetColWidth(sheet, "C", "C", 28) // file
	_ = f.SetColWidth(sheet, "D", "D", 24) // test
	_ = f.SetColWidth(sheet, "E", "F", 16) // value/range
	_ = f.SetColWidth(sheet, "H", "H", 48) // analysis

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"reports", len(records),
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
