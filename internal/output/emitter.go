package output

import (
	"io"

	"github.com/vburojevic/logscope/internal/domain"
)

// Emitter wraps NDJSONWriter with list helpers that reuse one encoder.
type Emitter struct {
	w *NDJSONWriter
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: NewNDJSONWriter(w)}
}

func (e *Emitter) Writer() *NDJSONWriter { return e.w }
func (e *Emitter) Error(code, msg string, hint ...string) error {
	return e.w.WriteError(code, msg, hint...)
}
func (e *Emitter) Warning(msg string) error              { return e.w.WriteWarning(msg) }
func (e *Emitter) Summary(s domain.MetricsSummary) error { return e.w.WriteMetricsSummary(s) }

func (e *Emitter) Anomalies(list []domain.Anomaly) error {
	return each(list, e.w.WriteAnomaly)
}
func (e *Emitter) Daily(points []domain.DailyMetricPoint) error {
	return each(points, e.w.WriteDaily)
}
func (e *Emitter) TopErrors(list []domain.TopErrorEntry) error {
	return each(list, e.w.WriteTopError)
}
func (e *Emitter) AnomalyTypes(list []domain.AnomalyTypeCount) error {
	return each(list, e.w.WriteAnomalyType)
}
func (e *Emitter) SlowEndpoints(list []domain.SlowEndpoint) error {
	return each(list, e.w.WriteSlowEndpoint)
}
func (e *Emitter) Downtime(list []domain.DowntimeIndicator) error {
	return each(list, e.w.WriteDowntime)
}
func (e *Emitter) ParsedLogs(list []domain.ParsedLog) error {
	return each(list, e.w.WriteParsedLog)
}

func each[T any](items []T, write func(T) error) error {
	for _, item := range items {
		if err := write(item); err != nil {
			return err
		}
	}
	return nil
}
