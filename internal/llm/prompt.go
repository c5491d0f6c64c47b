package llm

import "fmt"

// promptTemplate is the fixed single-turn instruction sent to the analysis
// service. It names every extraction target, the Low/Normal/High
// classification, and the exact JSON shape required, with one worked example.
const promptTemplate = `
You are a medical lab report analyzer. Extract all tests, values, and reference ranges.
Flag each as Low/Normal/High, and generate overall health status and doctor's notes.
Return JSON strictly in this format:

{
    "results": [
        {
            "test": "Hemoglobin",
            "value": "13.5 g/dL",
            "range": "13-17 g/dL",
            "status": "Normal",
            "analysis": "Within normal range"
        }
    ],
    "overall_status": "Healthy",
    "doctor_notes": "All parameters are within normal limits."
}

Lab report text:
%s
`

// BuildPrompt embeds the extracted document text verbatim into the fixed
// instruction template.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
