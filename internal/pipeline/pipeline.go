// Package pipeline builds pages: it loads data and includes, indexes content
// into collections, then renders every content file through the per-page
// state machine under a bounded concurrency limit, dispatching plugin hooks
// along the way.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/cache"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/plugin"
	"git.home.luguber.info/inful/pagebuilder/internal/render"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
	"git.home.luguber.info/inful/pagebuilder/internal/walker"
)

// DefaultConcurrency bounds in-flight page builds when Options leaves it unset.
const DefaultConcurrency = 5

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	ContentDir  string
	DataDir     string
	IncludesDir string

	// Concurrency is the maximum number of pages built at once.
	Concurrency int
	// IncludeDrafts keeps pages flagged draft: true.
	IncludeDrafts bool
	// HookPolicy decides whether a failing plugin hook aborts the build.
	HookPolicy plugin.Policy

	MarkdownExtensions []string
	Markdown           render.MarkdownOptions

	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Cache, when set, is shared across builds and owned by the caller.
	// Otherwise every build starts with an empty cache.
	Cache *cache.Store
}

// Pipeline is the build coordinator. It is the Host every plugin hook receives.
type Pipeline struct {
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder

	state    *site.State
	renderer *render.Renderer
	bus      *plugin.Bus
	content  walker.Predicate

	cache       *cache.Store
	sharedCache bool

	// building serializes Build and Index; both reset the shared state.
	building sync.Mutex
	buildID  atomic.Value
	inFlight atomic.Int64
}

// New returns a pipeline with no plugins registered.
func New(opts Options) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if len(opts.MarkdownExtensions) == 0 {
		opts.MarkdownExtensions = render.DefaultMarkdownExtensions
	}
	opts.ContentDir = absolute(opts.ContentDir)
	opts.DataDir = absolute(opts.DataDir)
	opts.IncludesDir = absolute(opts.IncludesDir)

	p := &Pipeline{
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		state:    site.NewState(),
		renderer: render.New(render.Options{
			Markup:             render.NewMarkdown(opts.Markdown),
			MarkdownExtensions: opts.MarkdownExtensions,
		}),
		cache: opts.Cache,
	}
	p.content = walker.Extensions(append([]string{".html", ".htm"}, p.renderer.MarkdownExtensions()...)...)
	if p.cache != nil {
		p.sharedCache = true
	} else {
		p.cache = cache.New()
	}
	p.buildID.Store("")
	p.bus = plugin.NewBus(p,
		plugin.WithPolicy(opts.HookPolicy),
		plugin.WithLogger(opts.Logger),
		plugin.WithObserver(func(hook, _ string, d time.Duration, err error) {
			p.recorder.ObserveHookDuration(hook, d, err == nil)
		}),
	)
	return p
}

func absolute(dir string) string {
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// Use registers a plugin; see plugin.Bus.Use.
func (p *Pipeline) Use(ctx context.Context, pl plugin.Plugin) error {
	return p.bus.Use(ctx, pl)
}

// Plugins returns the registered plugins in registration order.
func (p *Pipeline) Plugins() []plugin.Plugin {
	return p.bus.Plugins()
}

func (p *Pipeline) Collections() *site.Collections { return p.state.Collections }
func (p *Pipeline) Data() *site.Data               { return p.state.Data }
func (p *Pipeline) Includes() *site.Includes       { return p.state.Includes }
func (p *Pipeline) Logger() *slog.Logger           { return p.logger }

// BuildID identifies the build in progress, or "" between builds.
func (p *Pipeline) BuildID() string {
	id, _ := p.buildID.Load().(string)
	return id
}

// Cache returns the page cache. It is emptied at the start of every build
// unless it was supplied through Options.Cache.
func (p *Pipeline) Cache() *cache.Store {
	return p.cache
}

func (p *Pipeline) resetCache() {
	if !p.sharedCache {
		p.cache.Clear()
	}
}

var _ plugin.Host = (*Pipeline)(nil)
