package plugin

import (
	"context"

	"git.home.luguber.info/inful/pagebuilder/internal/page"
)

// Hook names as reported in logs and HookError.
const (
	HookInitialize              = "initialize"
	HookBeforeBuild             = "beforeBuild"
	HookAfterBuild              = "afterBuild"
	HookBeforeBuildPage         = "beforeBuildPage"
	HookAfterBuildPage          = "afterBuildPage"
	HookBeforeRenderContent     = "beforeRenderContent"
	HookAfterRenderContent      = "afterRenderContent"
	HookBeforeRenderLayout      = "beforeRenderLayout"
	HookAfterRenderLayout       = "afterRenderLayout"
	HookBeforePluginInitialized = "beforePluginInitialized"
	HookAfterPluginInitialized  = "afterPluginInitialized"
)

type (
	HostFunc   func(ctx context.Context, h Host) error
	PageFunc   func(ctx context.Context, h Host, p *page.Page) error
	PagesFunc  func(ctx context.Context, h Host, pages []*page.Page) error
	PluginFunc func(ctx context.Context, h Host, p Plugin) error
)

// Hooks is a plugin assembled from optional handler slots. Nil slots are
// skipped. It is convenient for small plugins and tests that do not warrant
// a dedicated type.
type Hooks struct {
	Meta Metadata

	Initialize              HostFunc
	BeforeBuild             HostFunc
	AfterBuild              PagesFunc
	BeforeBuildPage         PageFunc
	AfterBuildPage          PageFunc
	BeforeRenderContent     PageFunc
	AfterRenderContent      PageFunc
	BeforeRenderLayout      PageFunc
	AfterRenderLayout       PageFunc
	BeforePluginInitialized PluginFunc
	AfterPluginInitialized  PluginFunc
}

// Metadata implements Plugin.
func (h *Hooks) Metadata() Metadata {
	return h.Meta
}

// slotsOf resolves the handlers a plugin provides. A *Hooks contributes its
// populated slots; any other plugin contributes the capability interfaces it
// implements.
func slotsOf(p Plugin) Hooks {
	if h, ok := p.(*Hooks); ok {
		return *h
	}

	var s Hooks
	if v, ok := p.(Initializer); ok {
		s.Initialize = v.Initialize
	}
	if v, ok := p.(BeforeBuildHook); ok {
		s.BeforeBuild = v.BeforeBuild
	}
	if v, ok := p.(AfterBuildHook); ok {
		s.AfterBuild = v.AfterBuild
	}
	if v, ok := p.(BeforeBuildPageHook); ok {
		s.BeforeBuildPage = v.BeforeBuildPage
	}
	if v, ok := p.(AfterBuildPageHook); ok {
		s.AfterBuildPage = v.AfterBuildPage
	}
	if v, ok := p.(BeforeRenderContentHook); ok {
		s.BeforeRenderContent = v.BeforeRenderContent
	}
	if v, ok := p.(AfterRenderContentHook); ok {
		s.AfterRenderContent = v.AfterRenderContent
	}
	if v, ok := p.(BeforeRenderLayoutHook); ok {
		s.BeforeRenderLayout = v.BeforeRenderLayout
	}
	if v, ok := p.(AfterRenderLayoutHook); ok {
		s.AfterRenderLayout = v.AfterRenderLayout
	}
	if v, ok := p.(BeforePluginInitializedHook); ok {
		s.BeforePluginInitialized = v.BeforePluginInitialized
	}
	if v, ok := p.(AfterPluginInitializedHook); ok {
		s.AfterPluginInitialized = v.AfterPluginInitialized
	}
	return s
}

// Has reports which hook names p implements, in dispatch-table order.
func Has(p Plugin) []string {
	s := slotsOf(p)
	var names []string
	add := func(present bool, name string) {
		if present {
			names = append(names, name)
		}
	}
	add(s.Initialize != nil, HookInitialize)
	add(s.BeforeBuild != nil, HookBeforeBuild)
	add(s.AfterBuild != nil, HookAfterBuild)
	add(s.BeforeBuildPage != nil, HookBeforeBuildPage)
	add(s.AfterBuildPage != nil, HookAfterBuildPage)
	add(s.BeforeRenderContent != nil, HookBeforeRenderContent)
	add(s.AfterRenderContent != nil, HookAfterRenderContent)
	add(s.BeforeRenderLayout != nil, HookBeforeRenderLayout)
	add(s.AfterRenderLayout != nil, HookAfterRenderLayout)
	add(s.BeforePluginInitialized != nil, HookBeforePluginInitialized)
	add(s.AfterPluginInitialized != nil, HookAfterPluginInitialized)
	return names
}
