package domain

import "time"

// Anomaly is a flagged log event produced by the backend's detection runs
type Anomaly struct {
	ID        int      `json:"id"`
	Timestamp string   `json:"timestamp"`
	Type      string   `json:"type"`
	Severity  Severity `json:"severity"`
	Score     *float64 `json:"score,omitempty"`
	Message   *string  `json:"message,omitempty"`
	LogID     *int     `json:"log_id,omitempty"`
}

// Time parses the ISO-8601 timestamp. The backend emits naive UTC values
// without an offset, so both forms are accepted.
func (a Anomaly) Time() (time.Time, bool) {
	if a.Timestamp == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, a.Timestamp); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MessageText returns the message or an empty string when absent
func (a Anomaly) MessageText() string {
	if a.Message == nil {
		return ""
	}
	return *a.Message
}

// ScoreValue returns the score and whether it was supplied
func (a Anomaly) ScoreValue() (float64, bool) {
	if a.Score == nil {
		return 0, false
	}
	return *a.Score, true
}

// ParsedLog is a single parsed log line stored by the backend
type ParsedLog struct {
	ID           int      `json:"id"`
	Timestamp    string   `json:"timestamp,omitempty"`
	Level        string   `json:"level,omitempty"`
	Message      string   `json:"message,omitempty"`
	Endpoint     string   `json:"endpoint,omitempty"`
	ResponseTime *float64 `json:"response_time,omitempty"`
	IP           string   `json:"ip,omitempty"`
}
