package render

import (
	"bytes"
	"testing"

	"github.com/syedaman12/Lab-report-interpreter/internal/llm"
	"github.com/syedaman12/Lab-report-interpreter/internal/store"
)

func TestBuild_SuccessRecord(t *testing.T) {
	rec := store.ReportRecord{
		Timestamp: "2026-08-29 10:30:00",
		FileName:  "cbc.pdf",
		Analysis: llm.Success(llm.LabReport{
			Results: []llm.TestResult{
				{Test: "Hemoglobin", Value: "13.5 g/dL", Range: "13-17 g/dL", Status: "Normal", Analysis: "within range"},
				{Test: "WBC", Value: "12.1 x10^9/L", Range: "4-11 x10^9/L", Status: "High", Analysis: "possible infection"},
			},
			OverallStatus: "Needs Attention",
			DoctorNotes:   "Repeat CBC in two weeks.",
		}),
	}

	pdf, err := Build(rec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(pdf), []byte("%%EOF")) {
		t.Error("output is not terminated")
	}
}

func TestBuild_FailureRecordRendersHeaderOnly(t *testing.T) {
	rec := store.ReportRecord{
		Timestamp: "2026-08-29 10:31:00",
		FileName:  "blurry.pdf",
		Analysis:  llm.Failed("Failed to parse GPT JSON", "not json"),
	}

	pdf, err := Build(rec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}
