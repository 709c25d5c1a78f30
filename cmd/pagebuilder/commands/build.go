package commands

import (
	"encoding/json"
	"io"
	"os"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/page"
	"git.home.luguber.info/inful/pagebuilder/internal/pipeline"
	"git.home.luguber.info/inful/pagebuilder/internal/plugin"
	"git.home.luguber.info/inful/pagebuilder/internal/render"
)

// BuildCmd implements the 'build' command. Nothing is written besides the
// manifest (and the optional metrics file).
type BuildCmd struct {
	SourceFlags

	Concurrency   int    `help:"Maximum pages built at once (overrides config)"`
	Output        string `short:"o" help:"Write the manifest to this file instead of stdout" type:"path"`
	IncludeOutput bool   `name:"include-output" help:"Embed rendered page output in the manifest"`
	Pretty        bool   `help:"Indent the JSON manifest"`
	MetricsFile   string `name:"metrics-file" help:"Write Prometheus text-format build metrics to this file" type:"path"`
}

// Manifest is the JSON document printed by 'build'.
type Manifest struct {
	BuildID string          `json:"build_id"`
	Pages   []ManifestPage  `json:"pages"`
	Report  pipeline.Report `json:"report"`
}

// ManifestPage describes one built page.
type ManifestPage struct {
	Source      string          `json:"source"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Tags        []string        `json:"tags"`
	Layout      string          `json:"layout,omitempty"`
	Permalinks  page.Permalinks `json:"permalinks"`
	Digest      string          `json:"digest"`
	Fingerprint string          `json:"fingerprint"`
	Bytes       int             `json:"bytes"`
	Output      string          `json:"output,omitempty"`
}

func (b *BuildCmd) Run(g *Global) error {
	b.SourceFlags.apply(g.Config)
	if b.Concurrency != 0 {
		g.Config.Concurrency = b.Concurrency
	}
	if err := g.Config.Validate(); err != nil {
		return err
	}

	var prom *metrics.PrometheusRecorder
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	p := newPipeline(g, recorder)
	res, buildErr := p.Build(g.Ctx)

	if prom != nil {
		if err := prom.WriteFile(b.MetricsFile); err != nil {
			g.Logger.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	return b.writeManifest(g.Stdout, newManifest(res, b.IncludeOutput))
}

func (b *BuildCmd) writeManifest(stdout io.Writer, m Manifest) error {
	w := stdout
	if b.Output != "" {
		f, err := os.Create(b.Output) // #nosec G304 -- path is supplied by the operator
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create manifest file").
				WithContext("path", b.Output).Build()
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	enc := json.NewEncoder(w)
	if b.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(m); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode manifest").Build()
	}
	return nil
}

func newManifest(res *pipeline.Result, withOutput bool) Manifest {
	m := Manifest{BuildID: res.Report.BuildID, Report: res.Report, Pages: make([]ManifestPage, 0, len(res.Pages))}
	for _, pg := range res.Pages {
		mp := ManifestPage{
			Source:      pg.Path,
			Name:        pg.Name,
			Title:       pg.DisplayTitle(),
			Tags:        pg.Tags(),
			Permalinks:  pg.Permalinks,
			Digest:      pg.Digest,
			Fingerprint: pg.Fingerprint,
			Bytes:       len(pg.Output),
		}
		if mp.Tags == nil {
			mp.Tags = []string{}
		}
		if pg.Layout != nil {
			mp.Layout = pg.Layout.Name
		}
		if withOutput {
			mp.Output = pg.Output
		}
		m.Pages = append(m.Pages, mp)
	}
	return m
}

// newPipeline translates the configuration into pipeline options.
func newPipeline(g *Global, recorder metrics.Recorder) *pipeline.Pipeline {
	opts := pipelineOptions(g.Config)
	opts.Logger = g.Logger
	opts.Recorder = recorder
	return pipeline.New(opts)
}

// pipelineOptions expects cfg to have passed Validate.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	policy := plugin.Fatal
	if cfg.HookErrors == config.HookErrorsLog {
		policy = plugin.LogAndContinue
	}
	return pipeline.Options{
		ContentDir:         cfg.ContentDir,
		DataDir:            cfg.DataDir,
		IncludesDir:        cfg.IncludesDir,
		Concurrency:        cfg.Concurrency,
		IncludeDrafts:      cfg.IncludeDrafts,
		HookPolicy:         policy,
		MarkdownExtensions: cfg.Markdown.Extensions,
		Markdown: render.MarkdownOptions{
			HardWraps: cfg.Markdown.HardWraps,
			SafeHTML:  !cfg.Markdown.AllowsRawHTML(),
		},
	}
}
