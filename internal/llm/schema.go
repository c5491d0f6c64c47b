package llm

// BuildReportJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// success shape, as a generic map. Validation is structural only: "status" is
// deliberately a plain string, not an enum, because service-provided statuses
// are passed through verbatim.
func BuildReportJSONSchema() map[string]any {
	result := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"test":     map[string]any{"type": "string", "minLength": 1},
			"value":    map[string]any{"type": "string", "minLength": 1},
			"range":    map[string]any{"type": "string", "minLength": 1},
			"status":   map[string]any{"type": "string"},
			"analysis": map[string]any{"type": "string"},
		},
		"required": []string{"test", "value", "range", "status", "analysis"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"results": map[string]any{
				"type":  "array",
				"items": result,
			},
			"overall_status": map[string]any{"type": "string"},
			"doctor_notes":   map[string]any{"type": "string"},
		},
		"required": []string{"results", "overall_status", "doctor_notes"},
	}
}
