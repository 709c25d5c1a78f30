package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"git.home.luguber.info/inful/pagebuilder/internal/cache"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter/schema"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/render"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
)

// BuildPage runs one content file through the page state machine.
//
// Invalid and draft files return (nil, OutcomeInvalid|OutcomeDraft, nil): they
// are omissions, not failures. A byte-identical file built earlier returns the
// cached page without firing any hook. The collections, data and includes of
// the last Build or Index are used as render context.
func (p *Pipeline) BuildPage(ctx context.Context, path string) (*page.Page, Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, OutcomeFailed, err
	}
	log := p.logger.With(logfields.File(path))

	raw, err := os.ReadFile(path) // #nosec G304 -- paths come from the walker
	if err != nil {
		return nil, OutcomeFailed, fmt.Errorf("read content: %w", err)
	}

	digest := cache.Digest(raw)
	store := p.Cache()
	if cached, ok := store.Get(digest); ok {
		log.Debug("Page served from cache", logfields.Digest(digest))
		return cached, OutcomeCached, nil
	}

	pg := page.New(path, page.LogicalName(p.opts.ContentDir, path), digest)
	if err := p.bus.BeforeBuildPage(ctx, pg); err != nil {
		return nil, OutcomeFailed, err
	}

	matter, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, OutcomeFailed, fmt.Errorf("parse frontmatter: %w", err)
	}
	pg.Frontmatter = matter.Data
	pg.Body = string(matter.Content)

	fm, err := schema.Validate(matter.Data)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			log.Warn("Skipping page with invalid frontmatter", logfields.Fields(verr.FieldNames()), logfields.Error(err))
		}
		return nil, OutcomeInvalid, nil
	}
	pg.Frontmatter = fm

	if pg.Draft() && !p.opts.IncludeDrafts {
		log.Info("Skipping draft page")
		return nil, OutcomeDraft, nil
	}

	if err := p.bus.BeforeRenderContent(ctx, pg); err != nil {
		return nil, OutcomeFailed, err
	}
	data := render.NewContext(pg.Frontmatter, p.state)
	pg.Output, err = p.renderer.Template(ctx, path, pg.Body, data)
	if err != nil {
		return nil, OutcomeFailed, err
	}
	if err := p.bus.AfterRenderContent(ctx, pg); err != nil {
		return nil, OutcomeFailed, err
	}

	pg.Output, err = p.renderer.Markup(pg.Output, path)
	if err != nil {
		return nil, OutcomeFailed, err
	}

	if layout := p.resolveLayout(pg); layout != nil {
		pg.Layout = layout
		data = render.NewContext(render.MergeFields(layout.Frontmatter, pg.Frontmatter), p.state).
			WithContent(pg.Output)
		if err := p.bus.BeforeRenderLayout(ctx, pg); err != nil {
			return nil, OutcomeFailed, err
		}
		pg.Output, err = p.renderer.Template(ctx, layout.Path, layout.Body, data)
		if err != nil {
			return nil, OutcomeFailed, err
		}
		if err := p.bus.AfterRenderLayout(ctx, pg); err != nil {
			return nil, OutcomeFailed, err
		}
	}

	if err := p.permalinks(ctx, pg, data); err != nil {
		return nil, OutcomeFailed, err
	}
	if pg.Fingerprint, err = page.Fingerprint(pg.Frontmatter, pg.Body); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("fingerprint: %w", err)
	}

	if err := p.bus.AfterBuildPage(ctx, pg); err != nil {
		return nil, OutcomeFailed, err
	}

	store.Put(digest, pg)
	log.Debug("Page built", logfields.Permalink(pg.Permalinks.Clean))
	return pg, OutcomeBuilt, nil
}

// resolveLayout picks frontmatter.layout, falling back to the global
// data.layout string. A name without a matching include yields no layout.
func (p *Pipeline) resolveLayout(pg *page.Page) *site.Include {
	name := pg.LayoutName()
	if name == "" {
		name, _ = p.state.Data.String("layout")
	}
	if name == "" {
		return nil
	}
	inc, ok := p.state.Includes.Get(name)
	if !ok {
		p.logger.Debug("Layout not found; page left unwrapped", logfields.File(pg.Path), logfields.Layout(name))
		return nil
	}
	return inc
}

// permalinks renders the alias and permalink fields against data. Pages
// without a permalink keep the defaults set by page.New.
func (p *Pipeline) permalinks(ctx context.Context, pg *page.Page, data render.Context) error {
	if alias, ok := pg.Frontmatter[schema.FieldAlias].(string); ok && alias != "" {
		out, err := p.renderer.Template(ctx, pg.Path+"#alias", alias, data)
		if err != nil {
			return err
		}
		pg.Permalinks.Alias = out
	}
	if permalink, ok := pg.Frontmatter[schema.FieldPermalink].(string); ok && permalink != "" {
		out, err := p.renderer.Template(ctx, pg.Path+"#permalink", permalink, data)
		if err != nil {
			return err
		}
		pg.Permalinks.Clean = page.CleanPath(out)
		pg.Permalinks.Filesystem = page.FilesystemPath(pg.Permalinks.Clean)
	}
	return nil
}
