package pipeline

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Result is what a successful build returns.
type Result struct {
	// Pages holds every built page in content discovery order. A page served
	// from the cache for a byte-identical file appears once per file.
	Pages  []*page.Page
	Report Report
}

// Failure records a content file dropped by a per-page error.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Report summarizes a build.
type Report struct {
	BuildID    string        `json:"build_id"`
	Discovered int           `json:"discovered"`
	Indexed    int           `json:"indexed"`
	Built      int           `json:"built"`
	Cached     int           `json:"cached"`
	Invalid    int           `json:"invalid"`
	Drafts     int           `json:"drafts"`
	Failed     int           `json:"failed"`
	Failures   []Failure     `json:"failures,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// tally accumulates page outcomes from concurrent builds.
type tally struct {
	mu     sync.Mutex
	report *Report
}

func (t *tally) add(path string, o Outcome, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch o {
	case OutcomeBuilt:
		t.report.Built++
	case OutcomeCached:
		t.report.Cached++
	case OutcomeInvalid:
		t.report.Invalid++
	case OutcomeDraft:
		t.report.Drafts++
	case OutcomeFailed:
		t.report.Failed++
		if err != nil {
			t.report.Failures = append(t.report.Failures, Failure{Path: path, Error: err.Error()})
		}
	}
}
