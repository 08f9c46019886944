// Package upload drives the fixed ingest sequence that follows a log file
// selection: upload, detection, security detection and a metrics warm-up.
package upload

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/vburojevic/logscope/internal/api"
	"github.com/vburojevic/logscope/internal/domain"
	"go.uber.org/zap"
)

// Step identifies one stage of the sequence
type Step int

const (
	StepUpload Step = iota + 1
	StepDetect
	StepSecurity
	StepWarmup
)

// Steps lists the stages in execution order
var Steps = []Step{StepUpload, StepDetect, StepSecurity, StepWarmup}

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepDetect:
		return "anomaly detection"
	case StepSecurity:
		return "security detection"
	case StepWarmup:
		return "metrics warm-up"
	default:
		return fmt.Sprintf("step %d", int(s))
	}
}

// View is a navigation target
type View string

const ViewMetrics View = "metrics"

// ErrBusy is returned when a submission is already running
var ErrBusy = errors.New("upload already in progress")

// StepError reports which stage aborted the sequence
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Backend is the subset of the API client the sequence needs
type Backend interface {
	UploadLog(ctx context.Context, f domain.UploadedFile) (domain.UploadAck, error)
	RunDetection(ctx context.Context) (domain.DetectionResult, error)
	RunSecurityDetection(ctx context.Context) (domain.DetectionResult, error)
	DailyMetrics(ctx context.Context) ([]domain.DailyMetricPoint, error)
}

// Notifier surfaces a user-visible failure notice
type Notifier interface {
	Notify(message string)
}

// Navigator switches the active view
type Navigator interface {
	Navigate(v View)
}

// NotifierFunc adapts a func to Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// NavigatorFunc adapts a func to Navigator
type NavigatorFunc func(v View)

func (f NavigatorFunc) Navigate(v View) { f(v) }

// Result summarizes a completed submission
type Result struct {
	Skipped   bool
	Ack       domain.UploadAck
	Detection domain.DetectionResult
	Security  domain.DetectionResult
}

// Orchestrator runs one submission at a time
type Orchestrator struct {
	Backend   Backend
	Notifier  Notifier
	Navigator Navigator
	// Progress, when set, is called before each step starts
	Progress func(Step)
	Logger   *zap.Logger

	busy atomic.Bool
}

// Busy reports whether a submission is running
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// Submit runs the sequence for file. With no file selected it does nothing
// and returns a skipped result. Any failing step ends the attempt; calling
// Submit again starts over from the upload.
func (o *Orchestrator) Submit(ctx context.Context, file domain.UploadedFile) (Result, error) {
	if !file.Selected() {
		return Result{Skipped: true}, nil
	}
	if !o.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer o.busy.Store(false)

	log := o.logger().With(zap.String("file", file.Path))
	var res Result

	run := func(step Step, fn func() error) error {
		if o.Progress != nil {
			o.Progress(step)
		}
		log.Debug("upload step", zap.Stringer("step", step))
		if err := fn(); err != nil {
			return &StepError{Step: step, Err: err}
		}
		return nil
	}

	err := run(StepUpload, func() (err error) {
		res.Ack, err = o.Backend.UploadLog(ctx, file)
		return err
	})
	if err == nil {
		err = run(StepDetect, func() (err error) {
			res.Detection, err = o.Backend.RunDetection(ctx)
			return err
		})
	}
	if err == nil {
		err = run(StepSecurity, func() (err error) {
			res.Security, err = o.Backend.RunSecurityDetection(ctx)
			return err
		})
	}
	if err == nil {
		err = run(StepWarmup, func() error {
			_, err := o.Backend.DailyMetrics(ctx)
			return err
		})
	}

	if err != nil {
		log.Warn("upload aborted", zap.Error(err))
		if o.Notifier != nil {
			o.Notifier.Notify(Notice(err))
		}
		return res, err
	}

	log.Debug("upload complete", zap.Int("saved", res.Ack.Saved))
	if o.Navigator != nil {
		o.Navigator.Navigate(ViewMetrics)
	}
	return res, nil
}

// Notice renders the single user-visible message for a failed submission
func Notice(err error) string {
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return fmt.Sprintf("Upload failed: %v", err)
	}
	if msg := api.ServerMessage(stepErr.Err); msg != "" {
		return fmt.Sprintf("Upload failed during %s: %s", stepErr.Step, msg)
	}
	if api.IsNetworkError(stepErr.Err) {
		return fmt.Sprintf("Upload failed during %s: backend unreachable", stepErr.Step)
	}
	if status := api.StatusCode(stepErr.Err); status != 0 {
		return fmt.Sprintf("Upload failed during %s: status %d", stepErr.Step, status)
	}
	if stepErr.Err != nil {
		return fmt.Sprintf("Upload failed during %s: %v", stepErr.Step, stepErr.Err)
	}
	return fmt.Sprintf("Upload failed during %s", stepErr.Step)
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
