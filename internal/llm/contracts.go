package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// TestResult is one extracted lab measurement as classified by the analysis
// service. Status strings are stored verbatim; see constants.TestStatus for
// the canonical values.
type TestResult struct {
	Test     string `json:"test"`
	Value    string `json:"value"`
	Range    string `json:"range"`
	Status   string `json:"status"`
	Analysis string `json:"analysis"`
}

// LabReport is the success variant of an analysis outcome.
type LabReport struct {
	Results       []TestResult `json:"results"`
	OverallStatus string       `json:"overall_status"`
	DoctorNotes   string       `json:"doctor_notes"`
}

// Failure is the failure variant: a missing credential or an unparsable
// service reply. Raw preserves the unparsed reply text for diagnosis.
type Failure struct {
	Error string `json:"error"`
	Raw   string `json:"raw,omitempty"`
}

// AnalysisReport is a tagged union: exactly one of Report or Failure is set.
// It marshals as the bare variant object so the persisted store and the HTTP
// responses carry the same shape the service produced.
type AnalysisReport struct {
	Report  *LabReport
	Failure *Failure
}

// Succeeded reports whether the success variant is populated.
func (a AnalysisReport) Succeeded() bool {
	return a.Report != nil
}

func Success(r LabReport) AnalysisReport {
	return AnalysisReport{Report: &r}
}

func Failed(msg, raw string) AnalysisReport {
	return AnalysisReport{Failure: &Failure{Error: msg, Raw: raw}}
}

func (a AnalysisReport) MarshalJSON() ([]byte, error) {
	switch {
	case a.Report != nil:
		return json.Marshal(a.Report)
	case a.Failure != nil:
		return json.Marshal(a.Failure)
	default:
		return nil, fmt.Errorf("analysis report has no variant set")
	}
}

func (a *AnalysisReport) UnmarshalJSON(data []byte) error {
	var probe struct {
		Results *json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	// The "results" key distinguishes the variants in the persisted shape.
	if probe.Results != nil {
		var r LabReport
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*a = AnalysisReport{Report: &r}
		return nil
	}
	var f Failure
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = AnalysisReport{Failure: &f}
	return nil
}

// ReportAnalyzer is the interface the pipeline depends on. Analyze never
// returns a Go error: every failure mode collapses into the failure variant.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, text string) AnalysisReport
}
