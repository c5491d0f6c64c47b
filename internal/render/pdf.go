package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

// Build renders a stored report record as a downloadable PDF. Failure records
// render the header only, keeping the audit trail viewable even when the
// analysis itself failed.
func Build(rec store.ReportRecord) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, "Lab Report Analysis", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, fmt.Sprintf("Date: %s", rec.Timestamp), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, fmt.Sprintf("File: %s", rec.FileName), "", 1, "L", false, 0, "")
	doc.Ln(4)

	if rec.Analysis.Report != nil {
		report := rec.Analysis.Report
		for _, item := range report.Results {
			doc.SetFont("Helvetica", "B", 11)
			doc.MultiCell(0, 6, fmt.Sprintf("%s: %s (%s) - %s", item.Test, item.Value, item.Range, item.Status), "", "L", false)
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, fmt.Sprintf("Analysis: %s", item.Analysis), "", "L", false)
			doc.Ln(2)
		}
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, fmt.Sprintf("Overall Status: %s", report.OverallStatus), "", "L", false)
		doc.MultiCell(0, 6, fmt.Sprintf("Doctor Notes: %s", report.DoctorNotes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
