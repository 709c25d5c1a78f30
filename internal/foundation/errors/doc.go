// Package errors provides the classified error primitives used across the page
// build pipeline.
//
// Every failure the pipeline surfaces to a caller is a ClassifiedError carrying
// a category (filesystem, validation, render, plugin, ...), a severity and
// structured context. Per-file failures are logged and skipped by the
// coordinator; global-phase failures are returned as fatal errors.
//
// Example usage:
//
//	err := errors.FileSystemError("content root not found").
//		WithContext("root", root).
//		WithCause(statErr).
//		Build()
package errors
