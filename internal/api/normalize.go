package api

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/vburojevic/logscope/internal/domain"
)

// arrayItems returns the elements of a JSON array payload. Objects, null,
// scalars and invalid JSON all yield nil so list views degrade to empty.
func arrayItems(data []byte) []gjson.Result {
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return nil
	}
	res := gjson.ParseBytes(data)
	if !res.IsArray() {
		return nil
	}
	return res.Array()
}

func nonNegative(r gjson.Result) int {
	return max(0, int(r.Int()))
}

func optionalFloat(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

func decodeAnomalies(data []byte) []domain.Anomaly {
	items := arrayItems(data)
	out := make([]domain.Anomaly, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		a := domain.Anomaly{
			ID:        int(item.Get("id").Int()),
			Timestamp: item.Get("timestamp").String(),
			Type:      item.Get("type").String(),
			Severity:  domain.ParseSeverity(item.Get("severity").String()),
			Score:     optionalFloat(item.Get("score")),
		}
		if m := item.Get("message"); m.Type == gjson.String {
			msg := m.String()
			a.Message = &msg
		}
		if l := item.Get("log_id"); l.Type == gjson.Number {
			id := int(l.Int())
			a.LogID = &id
		}
		out = append(out, a)
	}
	return out
}

func decodeSummary(p string, data []byte) (domain.MetricsSummary, error) {
	if !gjson.ValidBytes(data) {
		return domain.MetricsSummary{}, &ShapeError{Path: p, Want: "object"}
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return domain.MetricsSummary{}, &ShapeError{Path: p, Want: "object"}
	}
	sev := res.Get("severity")
	return domain.MetricsSummary{
		TotalLogs:         nonNegative(res.Get("total_logs")),
		ErrorCount:        nonNegative(res.Get("error_count")),
		ErrorRate:         res.Get("error_rate").Float(),
		AvgResponseTime:   res.Get("avg_response_time").Float(),
		StdevResponseTime: res.Get("stdev_response_time").Float(),
		Severity: domain.SeverityCounts{
			Low:      nonNegative(sev.Get("low")),
			Medium:   nonNegative(sev.Get("medium")),
			High:     nonNegative(sev.Get("high")),
			Critical: nonNegative(sev.Get("critical")),
		},
	}, nil
}

func decodeDaily(data []byte) []domain.DailyMetricPoint {
	items := arrayItems(data)
	out := make([]domain.DailyMetricPoint, 0, len(items))
	for i, item := range items {
		out = append(out, domain.DailyMetricPoint{
			Index:      i,
			Label:      domain.DayLabel(i),
			ErrorCount: nonNegative(item.Get("error_count")),
		})
	}
	return out
}

// decodeTopErrors accepts both a bare array and a {"data": [...]} envelope.
// Entries may use path/count instead of endpoint/error_count.
func decodeTopErrors(data []byte) []domain.TopErrorEntry {
	items := arrayItems(data)
	if items == nil && gjson.ValidBytes(data) {
		if wrapped := gjson.GetBytes(data, "data"); wrapped.IsArray() {
			items = wrapped.Array()
		}
	}

	out := make([]domain.TopErrorEntry, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		endpoint := item.Get("endpoint").String()
		if endpoint == "" {
			endpoint = item.Get("path").String()
		}
		if endpoint == "" {
			endpoint = "unknown"
		}
		count := item.Get("error_count")
		if !count.Exists() {
			count = item.Get("count")
		}
		out = append(out, domain.TopErrorEntry{
			Endpoint:     endpoint,
			ErrorCount:   nonNegative(count),
			ErrorPercent: optionalFloat(item.Get("error_percent")),
		})
	}
	return out
}

// decodeEach unmarshals every object element of an array payload into T,
// skipping elements that do not fit.
func decodeEach[T any](data []byte) []T {
	items := arrayItems(data)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(item.Raw), &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeAck reads an acknowledgement object. The fields are informational
// only, so an unexpected shape leaves the zero value.
func decodeAck[T any](data []byte) T {
	var v T
	if gjson.ValidBytes(data) && gjson.ParseBytes(data).IsObject() {
		_ = json.Unmarshal(data, &v)
	}
	return v
}
