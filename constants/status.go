package constants

// TestStatus is the canonical classification for a single lab test result.
type TestStatus string

// Stable values (the analysis service is asked for these exact strings).
const (
	StatusLow    TestStatus = "Low"
	StatusNormal TestStatus = "Normal"
	StatusHigh   TestStatus = "High"
)

// Statuses lists the classifications in the order they are presented to the
// analysis service.
var Statuses = []TestStatus{StatusLow, StatusNormal, StatusHigh}

// IsKnownStatus reports whether s is one of the canonical classifications.
// Statuses returned by the analysis service are stored verbatim; this is only
// used to tag unexpected values in logs.
func IsKnownStatus(s string) bool {
	switch TestStatus(s) {
	case StatusLow, StatusNormal, StatusHigh:
		return true
	}
	return false
}
