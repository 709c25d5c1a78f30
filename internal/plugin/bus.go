package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Observer is notified after every hook invocation.
type Observer func(hook, plugin string, d time.Duration, err error)

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithPolicy sets the hook error policy (default Fatal).
func WithPolicy(p Policy) BusOption {
	return func(b *Bus) { b.policy = p }
}

// WithLogger sets the logger used for dispatch and tolerated failures.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver installs a callback invoked after each hook call.
func WithObserver(o Observer) BusOption {
	return func(b *Bus) { b.observe = o }
}

type registration struct {
	plugin Plugin
	name   string
	slots  Hooks
}

// Bus holds plugins in registration order and dispatches hooks to them.
//
// It is safe for concurrent use: page hooks are triggered from many page builds
// at once. A trigger dispatches to the plugins registered when it started;
// plugins added by a handler are seen from the next trigger on.
type Bus struct {
	host    Host
	policy  Policy
	logger  *slog.Logger
	observe Observer

	mu      sync.RWMutex
	plugins []registration
}

// NewBus returns an empty bus whose handlers receive host.
func NewBus(host Host, opts ...BusOption) *Bus {
	b := &Bus{host: host, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the configured hook error policy.
func (b *Bus) Policy() Policy {
	return b.policy
}

// Use appends p. When p can initialize, the bus triggers
// beforePluginInitialized, runs Initialize, then triggers
// afterPluginInitialized, all before returning.
func (b *Bus) Use(ctx context.Context, p Plugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil plugin")
	}
	meta := p.Metadata()
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	reg := registration{plugin: p, name: meta.Name, slots: slotsOf(p)}
	b.mu.Lock()
	b.plugins = append(b.plugins, reg)
	b.mu.Unlock()

	b.logger.Debug("Plugin registered",
		logfields.Plugin(meta.Name), logfields.Version(meta.Version), slog.Any("hooks", Has(p)))

	if reg.slots.Initialize == nil {
		return nil
	}
	if err := b.BeforePluginInitialized(ctx, p); err != nil {
		return err
	}
	if err := b.dispatch(ctx, HookInitialize, reg, func(h Hooks) func(context.Context) error {
		return bindHost(h.Initialize, b.host)
	}); err != nil {
		return err
	}
	return b.AfterPluginInitialized(ctx, p)
}

// Plugins returns the registered plugins in registration order.
func (b *Bus) Plugins() []Plugin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Plugin, len(b.plugins))
	for i, r := range b.plugins {
		out[i] = r.plugin
	}
	return out
}

func (b *Bus) BeforeBuild(ctx context.Context) error {
	return b.trigger(ctx, HookBeforeBuild, func(h Hooks) func(context.Context) error {
		return bindHost(h.BeforeBuild, b.host)
	})
}

func (b *Bus) AfterBuild(ctx context.Context, pages []*page.Page) error {
	return b.trigger(ctx, HookAfterBuild, func(h Hooks) func(context.Context) error {
		if h.AfterBuild == nil {
			return nil
		}
		return func(ctx context.Context) error { return h.AfterBuild(ctx, b.host, pages) }
	})
}

func (b *Bus) BeforeBuildPage(ctx context.Context, p *page.Page) error {
	return b.trigger(ctx, HookBeforeBuildPage, func(h Hooks) func(context.Context) error {
		return bindPage(h.BeforeBuildPage, b.host, p)
	})
}

func (b *Bus) AfterBuildPage(ctx context.Context, p *page.Page) error {
	return b.trigger(ctx, HookAfterBuildPage, func(h Hooks) func(context.Context) error {
		return bindPage(h.AfterBuildPage, b.host, p)
	})
}

func (b *Bus) BeforeRenderContent(ctx context.Context, p *page.Page) error {
	return b.trigger(ctx, HookBeforeRenderContent, func(h Hooks) func(context.Context) error {
		return bindPage(h.BeforeRenderContent, b.host, p)
	})
}

func (b *Bus) AfterRenderContent(ctx context.Context, p *page.Page) error {
	return b.trigger(ctx, HookAfterRenderContent, func(h Hooks) func(context.Context) error {
		return bindPage(h.AfterRenderContent, b.host, p)
	})
}

func (b *Bus) BeforeRenderLayout(ctx context.Context, p *page.Page) error {
	return b.trigger(ctx, HookBeforeRenderLayout, func(h Hooks) func(context.Context) error {
		return bindPage(h.BeforeRenderLayout, b.host, p)
	})
}

func (b *Bus) AfterRenderLayout(ctx context.Context, p *page.Page) error {
	return b.trigger(ctx, HookAfterRenderLayout, func(h Hooks) func(context.Context) error {
		return bindPage(h.AfterRenderLayout, b.host, p)
	})
}

func (b *Bus) BeforePluginInitialized(ctx context.Context, p Plugin) error {
	return b.trigger(ctx, HookBeforePluginInitialized, func(h Hooks) func(context.Context) error {
		return bindPlugin(h.BeforePluginInitialized, b.host, p)
	})
}

func (b *Bus) AfterPluginInitialized(ctx context.Context, p Plugin) error {
	return b.trigger(ctx, HookAfterPluginInitialized, func(h Hooks) func(context.Context) error {
		return bindPlugin(h.AfterPluginInitialized, b.host, p)
	})
}

// trigger runs hook on every registered plugin that implements it, one at a
// time, in registration order.
func (b *Bus) trigger(ctx context.Context, hook string, pick func(Hooks) func(context.Context) error) error {
	b.mu.RLock()
	plugins := make([]registration, len(b.plugins))
	copy(plugins, b.plugins)
	b.mu.RUnlock()

	for _, reg := range plugins {
		if err := b.dispatch(ctx, hook, reg, pick); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) dispatch(ctx context.Context, hook string, reg registration, pick func(Hooks) func(context.Context) error) error {
	fn := pick(reg.slots)
	if fn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := invoke(ctx, fn)
	if b.observe != nil {
		b.observe(hook, reg.name, time.Since(start), err)
	}
	if err == nil {
		return nil
	}

	herr := &HookError{Plugin: reg.name, Hook: hook, Err: err}
	if b.policy == LogAndContinue {
		b.logger.Error("Plugin hook failed; continuing",
			logfields.Plugin(reg.name), logfields.Hook(hook), logfields.Error(err))
		return nil
	}
	return herr
}

// invoke converts a panicking handler into an error.
func invoke(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

func bindHost(fn HostFunc, h Host) func(context.Context) error {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) error { return fn(ctx, h) }
}

func bindPage(fn PageFunc, h Host, p *page.Page) func(context.Context) error {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) error { return fn(ctx, h, p) }
}

func bindPlugin(fn PluginFunc, h Host, p Plugin) func(context.Context) error {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context) error { return fn(ctx, h, p) }
}
