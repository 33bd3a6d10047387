package harvest

import (
	"context"
	"time"
)

// ProgressPhase identifies a pipeline phase.
type ProgressPhase string

const (
	PhaseSearching ProgressPhase = "searching"
	PhaseScraping  ProgressPhase = "scraping"
	PhaseCompleted ProgressPhase = "completed"
)

// Phase weights for calculating overall progress.
const (
	SearchingWeight = 0.2
	ScrapingWeight  = 0.8
)

// ProgressEvent is emitted as the pipeline advances.
type ProgressEvent struct {
	Phase    ProgressPhase
	Step     string
	Progress float64
	Elapsed  time.Duration
	Details  map[string]any
}

// ProgressCallback receives progress events.
type ProgressCallback func(event ProgressEvent)

type progressContextKey string

const (
	progressStartTimeKey progressContextKey = "progress_start_time"
	progressCallbackKey  progressContextKey = "progress_callback"
)

// WithProgressTracking adds progress tracking to a context.
func WithProgressTracking(ctx context.Context, callback ProgressCallback) context.Context {
	ctx = context.WithValue(ctx, progressStartTimeKey, time.Now())
	ctx = context.WithValue(ctx, progressCallbackKey, callback)
	return ctx
}

// ProgressTracker emits progress events for the callback stored in the
// context, if any.
type ProgressTracker struct {
	startTime time.Time
	callback  ProgressCallback
}

func NewProgressTracker(ctx context.Context) *ProgressTracker {
	startTime, _ := ctx.Value(progressStartTimeKey).(time.Time)
	callback, _ := ctx.Value(progressCallbackKey).(ProgressCallback)

	if startTime.IsZero() {
		startTime = time.Now()
	}

	return &ProgressTracker{
		startTime: startTime,
		callback:  callback,
	}
}

func (pt *ProgressTracker) Emit(phase ProgressPhase, step string, progress float64, details map[string]any) {
	if pt.callback == nil {
		return
	}

	pt.callback(ProgressEvent{
		Phase:    phase,
		Step:     step,
		Progress: progress,
		Elapsed:  time.Since(pt.startTime),
		Details:  details,
	})
}

// ProgressEventChannel returns a buffered channel and a callback feeding
// it. Events are dropped instead of blocking the pipeline.
func ProgressEventChannel() (<-chan ProgressEvent, ProgressCallback) {
	ch := make(chan ProgressEvent, 10)

	callback := func(event ProgressEvent) {
		select {
		case ch <- event:
		default:
		}
	}

	return ch, callback
}
