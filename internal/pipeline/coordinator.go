package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/indexer"
	"git.home.luguber.info/inful/pagebuilder/internal/loader"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/plugin"
	"git.home.luguber.info/inful/pagebuilder/internal/walker"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Stage names used in logs and metrics.
const (
	StageLoadData     = "load_data"
	StageLoadIncludes = "load_includes"
	StageDiscover     = "discover"
	StageIndex        = "index"
	StageBeforeBuild  = "before_build"
	StagePages        = "pages"
	StageAfterBuild   = "after_build"
)

// Build runs the whole pipeline. Per-page failures are logged and counted in
// the report; loading, discovery, indexing and (under plugin.Fatal) hook
// failures abort the build and no pages are returned.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	p.building.Lock()
	defer p.building.Unlock()

	start := time.Now()
	id := uuid.NewString()
	p.buildID.Store(id)
	defer p.buildID.Store("")

	log := p.logger.With(logfields.BuildID(id))
	report := Report{BuildID: id}
	log.Info("Build started",
		logfields.Path(p.opts.ContentDir),
		slog.Int("concurrency", p.opts.Concurrency),
		slog.String("hook_errors", p.bus.Policy().String()))

	pages, err := p.run(ctx, log, &report)
	report.Duration = time.Since(start)
	p.recorder.ObserveBuildDuration(report.Duration)
	if err != nil {
		p.recorder.IncBuildOutcome(buildOutcome(err))
		log.Error("Build failed", logfields.Error(err), logfields.Since(start))
		return nil, err
	}
	p.recorder.IncBuildOutcome(metrics.BuildSuccess)

	log.Info("Build complete",
		logfields.Count(len(pages)),
		slog.Int("cached", report.Cached),
		slog.Int("invalid", report.Invalid),
		slog.Int("drafts", report.Drafts),
		slog.Int("failed", report.Failed),
		logfields.Since(start))
	return &Result{Pages: pages, Report: report}, nil
}

// Index runs only the load and index phases, leaving the state populated. It
// reports every content file the schema rejects.
func (p *Pipeline) Index(ctx context.Context) (*indexer.Result, error) {
	p.building.Lock()
	defer p.building.Unlock()
	_, res, err := p.prepare(ctx, p.logger)
	return res, err
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, report *Report) ([]*page.Page, error) {
	files, indexed, err := p.prepare(ctx, log)
	if err != nil {
		return nil, err
	}
	report.Discovered = len(files)
	report.Indexed = indexed.Indexed

	if err := p.stage(log, StageBeforeBuild, func() error {
		return p.bus.BeforeBuild(ctx)
	}); err != nil {
		return nil, classify(StageBeforeBuild, err)
	}

	var pages []*page.Page
	if err := p.stage(log, StagePages, func() error {
		var err error
		pages, err = p.buildPages(ctx, log, files, report)
		return err
	}); err != nil {
		return nil, classify(StagePages, err)
	}

	if err := p.stage(log, StageAfterBuild, func() error {
		return p.bus.AfterBuild(ctx, pages)
	}); err != nil {
		return nil, classify(StageAfterBuild, err)
	}
	return pages, nil
}

// prepare resets the shared state and runs the sequential phases: data,
// includes, discovery and the full indexing pass.
func (p *Pipeline) prepare(ctx context.Context, log *slog.Logger) ([]string, *indexer.Result, error) {
	p.state.Reset()
	p.resetCache()

	ld := loader.New(log)
	if err := p.stage(log, StageLoadData, func() error {
		return ld.LoadData(ctx, p.opts.DataDir, p.state.Data)
	}); err != nil {
		return nil, nil, classify(StageLoadData, err)
	}
	if err := p.stage(log, StageLoadIncludes, func() error {
		return ld.LoadIncludes(ctx, p.opts.IncludesDir, p.state.Includes)
	}); err != nil {
		return nil, nil, classify(StageLoadIncludes, err)
	}

	var files []string
	if err := p.stage(log, StageDiscover, func() error {
		var err error
		files, err = walker.Walk(ctx, p.opts.ContentDir, p.content)
		sort.Strings(files)
		return err
	}); err != nil {
		return nil, nil, classify(StageDiscover, err)
	}

	var res *indexer.Result
	if err := p.stage(log, StageIndex, func() error {
		var err error
		ix := indexer.New(p.state.Collections, indexer.Options{IncludeDrafts: p.opts.IncludeDrafts, Logger: log})
		res, err = ix.Index(ctx, files)
		return err
	}); err != nil {
		return nil, nil, classify(StageIndex, err)
	}
	return files, res, nil
}

// buildPages fans BuildPage out over files with at most Concurrency in flight.
// Results keep discovery order.
func (p *Pipeline) buildPages(ctx context.Context, log *slog.Logger, files []string, report *Report) ([]*page.Page, error) {
	results := make([]*page.Page, len(files))
	counts := &tally{report: report}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			pg, outcome, err := p.guardedBuildPage(gctx, file)
			counts.add(file, outcome, err)
			if err != nil {
				if abortsBuild(err) {
					return err
				}
				log.Error("Page build failed; skipping", logfields.File(file), logfields.Error(err))
				return nil
			}
			results[i] = pg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := make([]*page.Page, 0, len(results))
	for _, pg := range results {
		if pg != nil {
			pages = append(pages, pg)
		}
	}
	return pages, nil
}

// guardedBuildPage runs BuildPage, turning a panic into a per-page failure.
func (p *Pipeline) guardedBuildPage(ctx context.Context, path string) (pg *page.Page, outcome Outcome, err error) {
	start := time.Now()
	p.recorder.SetPagesInFlight(int(p.inFlight.Add(1)))
	defer func() {
		if r := recover(); r != nil {
			pg, outcome = nil, OutcomeFailed
			err = fmt.Errorf("panic: %v", r)
			p.logger.Debug("Recovered page build panic", logfields.File(path), slog.String("stack", string(debug.Stack())))
		}
		p.recorder.SetPagesInFlight(int(p.inFlight.Add(-1)))
		p.recorder.ObservePageDuration(time.Since(start))
		p.recorder.IncPageOutcome(outcome.metric())
	}()
	return p.BuildPage(ctx, path)
}

// abortsBuild reports errors that must stop the whole build rather than one page.
func abortsBuild(err error) bool {
	var herr *plugin.HookError
	return errors.As(err, &herr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (p *Pipeline) stage(log *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.recorder.ObserveStageDuration(name, time.Since(start))
	if err == nil {
		log.Info("Stage complete", logfields.Stage(name), logfields.Since(start))
	}
	return err
}

// classify wraps a global-phase failure into the error taxonomy.
func classify(stage string, err error) error {
	if err == nil {
		return nil
	}
	var b *ferrors.ErrorBuilder
	var herr *plugin.HookError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b = ferrors.WrapError(err, ferrors.CategoryCanceled, "build canceled")
	case errors.As(err, &herr):
		b = ferrors.WrapError(err, ferrors.CategoryPlugin, "plugin hook failed").
			WithContext("plugin", herr.Plugin).
			WithContext("hook", herr.Hook)
	case errors.Is(err, walker.ErrRootNotFound), errors.Is(err, walker.ErrRootNotDirectory),
		errors.Is(err, walker.ErrWalkFailed), errors.Is(err, loader.ErrReadFailed),
		errors.Is(err, indexer.ErrReadFailed):
		b = ferrors.FileSystemError("filesystem failure").WithCause(err)
	case errors.Is(err, loader.ErrParseFailed):
		b = ferrors.WrapError(err, ferrors.CategoryParse, "parse failure")
	default:
		b = ferrors.WrapError(err, ferrors.CategoryBuild, "build failed")
	}
	return b.Fatal().WithContext("stage", stage).Build()
}

func buildOutcome(err error) metrics.BuildOutcome {
	if ferrors.HasCategory(err, ferrors.CategoryCanceled) {
		return metrics.BuildCanceled
	}
	return metrics.BuildFailed
}
