// Package indexer runs the full validation and collection pass over content
// files. It must complete before any page is rendered because every render
// context exposes the complete collection set.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter/schema"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
)

// ErrReadFailed indicates a content file could not be read.
var ErrReadFailed = errors.New("content read failed")

// Options configures an Indexer.
type Options struct {
	// IncludeDrafts indexes draft pages too. When false, drafts contribute no
	// collection entries.
	IncludeDrafts bool
	Logger        *slog.Logger
}

// Indexer appends validated content into tag collections.
type Indexer struct {
	collections   *site.Collections
	includeDrafts bool
	logger        *slog.Logger
}

// InvalidFile is a content file rejected during indexing.
type InvalidFile struct {
	Path string
	// Fields lists schema violations; empty when the frontmatter could not be parsed at all.
	Fields []schema.FieldError
	Err    error
}

// Result summarizes one indexing pass.
type Result struct {
	Files   int
	Indexed int
	Drafts  int
	Invalid []InvalidFile
}

// New returns an Indexer writing into collections.
func New(collections *site.Collections, opts Options) *Indexer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{collections: collections, includeDrafts: opts.IncludeDrafts, logger: logger}
}

// Index processes files in order. Invalid files are reported in the result and
// skipped; only read failures and cancellation abort the pass.
func (ix *Indexer) Index(ctx context.Context, files []string) (*Result, error) {
	res := &Result{Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		raw, err := os.ReadFile(path) // #nosec G304 -- paths come from the walker
		if err != nil {
			return res, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
		}
		ix.indexFile(path, raw, res)
	}

	ix.logger.Info("Content indexed",
		logfields.Count(res.Indexed),
		slog.Int("invalid", len(res.Invalid)),
		slog.Int("drafts", res.Drafts))
	return res, nil
}

func (ix *Indexer) indexFile(path string, raw []byte, res *Result) {
	matter, err := frontmatter.Parse(raw)
	if err != nil {
		ix.logger.Warn("Skipping content with unparsable frontmatter", logfields.File(path), logfields.Error(err))
		res.Invalid = append(res.Invalid, InvalidFile{Path: path, Err: err})
		return
	}

	fm, err := schema.Validate(matter.Data)
	if err != nil {
		invalid := InvalidFile{Path: path, Err: err}
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			invalid.Fields = verr.Fields
			ix.logger.Warn("Skipping content with invalid frontmatter",
				logfields.File(path), logfields.Fields(verr.FieldNames()), logfields.Error(err))
		}
		res.Invalid = append(res.Invalid, invalid)
		return
	}

	if draft, _ := fm[schema.FieldDraft].(bool); draft && !ix.includeDrafts {
		ix.logger.Debug("Draft not indexed", logfields.File(path))
		res.Drafts++
		return
	}

	entry := site.Entry{
		Frontmatter: fm,
		Content:     string(matter.Content),
		FilePath:    path,
	}
	if v, ok := fm[schema.FieldPermalink].(string); ok {
		entry.OutputPath = v
	}
	if v, ok := fm[schema.FieldAlias].(string); ok {
		entry.AliasPath = v
	}

	tags, _ := fm[schema.FieldTags].([]string)
	for _, tag := range tags {
		ix.collections.Append(tag, entry)
		ix.logger.Debug("Indexed content", logfields.File(path), logfields.Tag(tag))
	}
	res.Indexed++
}
