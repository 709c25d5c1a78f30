// Package metrics records build metrics.
//
// Components depend on the Recorder interface and default to NoopRecorder, so
// no call site needs a nil check. The CLI swaps in a PrometheusRecorder when a
// metrics file is requested.
package metrics
