package domain

// AnomalySummary aggregates a fetched anomaly list for display
type AnomalySummary struct {
	Type          string `json:"type"`          // Always "anomaly_summary"
	SchemaVersion int    `json:"schemaVersion"` // Schema version for compatibility

	TotalCount   int            `json:"totalCount"`
	Severity     SeverityCounts `json:"severity"`
	UnknownCount int            `json:"unknownCount"`
	ByType       map[string]int `json:"byType,omitempty"`

	MaxScore    float64 `json:"maxScore,omitempty"`
	HasCritical bool    `json:"hasCritical"`
	HasHigh     bool    `json:"hasHigh"`

	TopMessages []string `json:"topMessages,omitempty"`
}

// NewAnomalySummary creates a new empty summary
func NewAnomalySummary() *AnomalySummary {
	return &AnomalySummary{
		Type:   "anomaly_summary",
		ByType: make(map[string]int),
	}
}

// ErrorOutput represents a structured error for NDJSON output
type ErrorOutput struct {
	Type          string `json:"type"`           // Always "error"
	SchemaVersion int    `json:"schemaVersion"`  // Schema version for compatibility
	Code          string `json:"code"`           // Machine-readable error code
	Message       string `json:"message"`        // Human-readable message
	Hint          string `json:"hint,omitempty"` // Suggested next step
}

// NewErrorOutput creates a new error output
// Note: SchemaVersion should be set by the caller (output package)
func NewErrorOutput(code, message string) *ErrorOutput {
	return &ErrorOutput{
		Type:    "error",
		Code:    code,
		Message: message,
	}
}
