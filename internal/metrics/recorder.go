package metrics

import "time"

// PageOutcome labels the result of one page build.
type PageOutcome string

const (
	PageBuilt   PageOutcome = "built"
	PageCached  PageOutcome = "cached"
	PageInvalid PageOutcome = "invalid"
	PageDraft   PageOutcome = "draft"
	PageFailed  PageOutcome = "failed"
)

// BuildOutcome labels the result of a whole build.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildFailed   BuildOutcome = "failed"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds, pages and plugin hooks.
// Implementations must be safe for concurrent use: page metrics are recorded
// from parallel page builds.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	ObservePageDuration(d time.Duration)
	IncPageOutcome(outcome PageOutcome)
	ObserveHookDuration(hook string, d time.Duration, success bool)
	SetPagesInFlight(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)      {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)              {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)                    {}
func (NoopRecorder) ObservePageDuration(time.Duration)               {}
func (NoopRecorder) IncPageOutcome(PageOutcome)                      {}
func (NoopRecorder) ObserveHookDuration(string, time.Duration, bool) {}
func (NoopRecorder) SetPagesInFlight(int)                            {}
