// Package site holds the shared state of one build: tag collections, the data
// namespace and the include table.
//
// The state is created empty when a build starts and populated by the
// sequential load and index phases. During the parallel page phase it is read
// by every page builder and may be mutated by plugin hooks, so every store is
// guarded by its own lock. Snapshot methods return shallow copies suitable for
// building a render context.
package site
