package render

import (
	"maps"

	"git.home.luguber.info/inful/pagebuilder/internal/site"
)

// Reserved context keys.
const (
	KeyIncludes    = "includes"
	KeyCollections = "collections"
	KeyData        = "data"
	KeyContent     = "content"
)

// Context is the data a template body is rendered against: the active
// frontmatter fields merged with read-only views of the site state. It is
// rebuilt for every render call and never persisted.
type Context map[string]any

// NewContext merges fields with snapshots of st. The reserved keys win over
// frontmatter keys of the same name.
func NewContext(fields map[string]any, st *site.State) Context {
	ctx := make(Context, len(fields)+4)
	maps.Copy(ctx, fields)
	if st != nil {
		ctx[KeyIncludes] = st.Includes.Snapshot()
		ctx[KeyCollections] = st.Collections.Snapshot()
		ctx[KeyData] = st.Data.Snapshot()
	}
	return ctx
}

// WithContent returns a copy of c with the rendered page content injected,
// as used for layout rendering.
func (c Context) WithContent(content string) Context {
	out := maps.Clone(c)
	if out == nil {
		out = Context{}
	}
	out[KeyContent] = content
	return out
}

// Includes returns the include table carried by the context.
func (c Context) Includes() map[string]*site.Include {
	inc, _ := c[KeyIncludes].(map[string]*site.Include)
	return inc
}

// MergeFields overlays page on base; page values win on key conflicts.
func MergeFields(base, page map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(page))
	maps.Copy(out, base)
	maps.Copy(out, page)
	return out
}
