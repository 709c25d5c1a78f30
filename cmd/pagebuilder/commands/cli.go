// Package commands implements the pagebuilder command line.
package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/version"
	"github.com/alecthomas/kong"
)

// Global carries what every subcommand needs.
type Global struct {
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build every page and print a JSON manifest"`
	Validate ValidateCmd `cmd:"" help:"Check content frontmatter without rendering"`
}

// SourceFlags override the source directories from the configuration.
type SourceFlags struct {
	Content  string `name:"content" help:"Content directory" type:"path"`
	Data     string `name:"data" help:"Data directory" type:"path"`
	Includes string `name:"includes" help:"Includes (layouts and partials) directory" type:"path"`
	Drafts   bool   `name:"drafts" help:"Include draft pages"`
}

func (s SourceFlags) apply(cfg *config.Config) {
	if s.Content != "" {
		cfg.ContentDir = s.Content
	}
	if s.Data != "" {
		cfg.DataDir = s.Data
	}
	if s.Includes != "" {
		cfg.IncludesDir = s.Includes
	}
	if s.Drafts {
		cfg.IncludeDrafts = true
	}
}

// errExit carries a kong-requested exit (--help, --version) out of parsing.
type errExit int

func (e errExit) Error() string { return "exit" }

// Main parses args, runs the selected command and returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pagebuilder"),
		kong.Description("Render a tree of content, data and layout files into pages."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(errExit(code)) }),
	)
	if err != nil {
		return ferrors.NewCLIErrorAdapter(false, nil).WithOutput(stderr).Handle(err)
	}

	kctx, code, err := parse(parser, args)
	if kctx == nil {
		if err != nil {
			_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")
		}
		return code
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return ferrors.NewCLIErrorAdapter(cli.Verbose, newLogger(config.Default().Logging, cli.Verbose, stderr)).
			WithOutput(stderr).Handle(err)
	}
	logger := newLogger(cfg.Logging, cli.Verbose, stderr)
	slog.SetDefault(logger)
	logger.Debug("Configuration loaded", slog.String("config", cfg.String()))

	err = kctx.Run(&Global{Ctx: ctx, Config: cfg, Logger: logger, Stdout: stdout})
	return ferrors.NewCLIErrorAdapter(cli.Verbose, logger).WithOutput(stderr).Handle(err)
}

// parse runs kong, converting its exit requests into a return code.
func parse(parser *kong.Kong, args []string) (kctx *kong.Context, code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			var exit errExit
			if e, ok := r.(error); ok && errors.As(e, &exit) {
				kctx, code, err = nil, int(exit), nil
				return
			}
			panic(r)
		}
	}()
	kctx, err = parser.Parse(args)
	if err != nil {
		return nil, 2, err
	}
	return kctx, 0, nil
}

func newLogger(cfg config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := config.NormalizeLogLevel(string(cfg.Level)).SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(string(cfg.Format)) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
