package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	reportSchemaOnce sync.Once
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
)

func compiledReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildReportJSONSchema())
		if err != nil {
			reportSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("report.json", bytes.NewReader(b)); err != nil {
			reportSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		reportSchema, reportSchemaErr = compiler.Compile("report.json")
	})
	return reportSchema, reportSchemaErr
}

// ValidateReportJSON checks that data is valid JSON matching the success
// shape. The schema is compiled once and reused across calls.
func ValidateReportJSON(data []byte) error {
	schema, err := compiledReportSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match report shape: %w", err)
	}
	return nil
}
