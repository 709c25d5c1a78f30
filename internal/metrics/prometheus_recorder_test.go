package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("index", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildSuccess)
	pr.IncPageOutcome(PageBuilt)
	pr.IncPageOutcome(PageBuilt)
	pr.IncPageOutcome(PageDraft)
	pr.ObservePageDuration(2 * time.Millisecond)
	pr.ObserveHookDuration("beforeBuild", time.Millisecond, true)
	pr.SetPagesInFlight(3)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.pageOutcome.WithLabelValues("built")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.pageOutcome.WithLabelValues("draft")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(pr.inFlight), 0)

	expected := `
# HELP pagebuilder_pages_total Page builds by outcome
# TYPE pagebuilder_pages_total counter
pagebuilder_pages_total{outcome="built"} 2
pagebuilder_pages_total{outcome="draft"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pagebuilder_pages_total"))
}

func TestPrometheusRecorder_WriteFile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome(BuildFailed)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, pr.WriteFile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `pagebuilder_build_outcomes_total{outcome="failed"} 1`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncPageOutcome(PageFailed)
		pr.ObserveHookDuration("afterBuild", time.Millisecond, false)
		pr.SetPagesInFlight(1)
	})
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.IncBuildOutcome(BuildCanceled)
		r.ObserveStageDuration("load", time.Second)
	})
}
