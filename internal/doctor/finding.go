package doctor

// Severity ranks a finding. Any Error-severity finding makes doctor exit
// non-zero.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one diagnosed condition plus the fix to suggest.
type Finding struct {
	Severity        Severity `json:"severity"`
	Subject         string   `json:"subject"`
	Message         string   `json:"message"`
	SuggestedAction string   `json:"suggested_action,omitempty"`
}

// HasErrors reports whether any finding carries Error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
