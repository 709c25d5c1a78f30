package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
)

// ValidateCmd implements the 'validate' command: load, discover and index,
// then list every content file the frontmatter schema rejects.
type ValidateCmd struct {
	SourceFlags
}

func (v *ValidateCmd) Run(g *Global) error {
	v.SourceFlags.apply(g.Config)
	if err := g.Config.Validate(); err != nil {
		return err
	}

	res, err := newPipeline(g, metrics.NoopRecorder{}).Index(g.Ctx)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(g.Config.ContentDir)
	if err != nil {
		root = g.Config.ContentDir
	}
	for _, inv := range res.Invalid {
		rel, relErr := filepath.Rel(root, inv.Path)
		if relErr != nil {
			rel = inv.Path
		}
		if len(inv.Fields) == 0 {
			_, _ = fmt.Fprintf(g.Stdout, "%s: %v\n", rel, inv.Err)
			continue
		}
		msgs := make([]string, 0, len(inv.Fields))
		for _, f := range inv.Fields {
			msgs = append(msgs, f.String())
		}
		_, _ = fmt.Fprintf(g.Stdout, "%s: %s\n", rel, strings.Join(msgs, "; "))
	}
	_, _ = fmt.Fprintf(g.Stdout, "%d files checked, %d valid, %d drafts, %d invalid\n",
		res.Files, res.Indexed, res.Drafts, len(res.Invalid))

	if len(res.Invalid) > 0 {
		return ferrors.ValidationError("content failed frontmatter validation").
			WithContext("invalid", len(res.Invalid)).Build()
	}
	return nil
}
