package domain

import "encoding/json"

// UploadedFile is a log file selected for ingestion. It is streamed once and
// never persisted.
type UploadedFile struct {
	Path string
	Name string
	Size int64
}

// Selected reports whether a file has been chosen
func (f UploadedFile) Selected() bool {
	return f.Path != ""
}

// UploadAck acknowledges a /logs/upload request
type UploadAck struct {
	Status string `json:"status"`
	Saved  int    `json:"saved"`
}

// DetectionResult acknowledges a detection trigger. Regular runs report
// Detected; security runs report TotalDetected.
type DetectionResult struct {
	Status        string `json:"status"`
	Detected      int    `json:"detected,omitempty"`
	TotalDetected int    `json:"total_detected,omitempty"`
}

// Count returns whichever detection count the backend populated
func (r DetectionResult) Count() int {
	if r.TotalDetected > 0 {
		return r.TotalDetected
	}
	return r.Detected
}

// RootCause is the backend's free-form root-cause analysis
type RootCause struct {
	Status   string          `json:"status"`
	Analysis json.RawMessage `json:"analysis"`
}
