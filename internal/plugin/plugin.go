// Package plugin defines the hooks a build plugin may implement and the Bus
// that dispatches them.
//
// A plugin is any value with Metadata. Every hook is optional: the Bus checks
// which capability interfaces a plugin implements when it is registered and
// only ever calls those. Hooks for one event run strictly one after another in
// registration order.
package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
)

// Plugin represents a build plugin.
type Plugin interface {
	// Metadata returns the plugin's identity.
	Metadata() Metadata
}

// Metadata describes a plugin.
type Metadata struct {
	// Name is the plugin identifier used in logs and hook errors.
	Name string

	// Version is the plugin version tag (e.g., "v1.0.0").
	Version string

	// Description is an optional human-readable summary.
	Description string
}

// String returns a human-readable representation of the metadata.
func (m Metadata) String() string {
	return m.Name + "@" + m.Version
}

// Validate checks that the metadata identifies a plugin.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin %s: version is required", m.Name)
	}
	return nil
}

// Host is the pipeline surface handed to every hook. Plugins may read and
// mutate the shared site state and register further plugins.
type Host interface {
	Collections() *site.Collections
	Data() *site.Data
	Includes() *site.Includes
	// Use registers another plugin, running its initialization hooks.
	Use(ctx context.Context, p Plugin) error
	Logger() *slog.Logger
	// BuildID identifies the build in progress; empty outside a build.
	BuildID() string
}

// Initializer is implemented by plugins that need setup when registered.
type Initializer interface {
	Initialize(ctx context.Context, h Host) error
}

// BeforeBuildHook runs after indexing, before any page is built.
type BeforeBuildHook interface {
	BeforeBuild(ctx context.Context, h Host) error
}

// AfterBuildHook receives every built page once the fan-out has settled.
type AfterBuildHook interface {
	AfterBuild(ctx context.Context, h Host, pages []*page.Page) error
}

// BeforeBuildPageHook runs on a fresh page before its frontmatter is parsed.
type BeforeBuildPageHook interface {
	BeforeBuildPage(ctx context.Context, h Host, p *page.Page) error
}

// AfterBuildPageHook runs once permalinks are set, before the page is cached.
type AfterBuildPageHook interface {
	AfterBuildPage(ctx context.Context, h Host, p *page.Page) error
}

type BeforeRenderContentHook interface {
	BeforeRenderContent(ctx context.Context, h Host, p *page.Page) error
}

type AfterRenderContentHook interface {
	AfterRenderContent(ctx context.Context, h Host, p *page.Page) error
}

type BeforeRenderLayoutHook interface {
	BeforeRenderLayout(ctx context.Context, h Host, p *page.Page) error
}

type AfterRenderLayoutHook interface {
	AfterRenderLayout(ctx context.Context, h Host, p *page.Page) error
}

// BeforePluginInitializedHook observes another plugin about to initialize.
type BeforePluginInitializedHook interface {
	BeforePluginInitialized(ctx context.Context, h Host, p Plugin) error
}

// AfterPluginInitializedHook observes another plugin that finished initializing.
type AfterPluginInitializedHook interface {
	AfterPluginInitialized(ctx context.Context, h Host, p Plugin) error
}
