// Package loader reads data files and include files into the shared site state.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
	"git.home.luguber.info/inful/pagebuilder/internal/walker"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

var (
	// ErrReadFailed indicates a data or include file could not be read.
	ErrReadFailed = errors.New("file read failed")

	// ErrParseFailed indicates a data or include file could not be parsed.
	ErrParseFailed = errors.New("file parse failed")
)

// DataExtensions are the structured-data dialects understood by LoadData.
var DataExtensions = []string{".json", ".yaml", ".yml"}

// Loader fills site stores from directories. A missing root directory is not
// an error: the namespace simply stays empty.
type Loader struct {
	logger *slog.Logger
}

// New returns a Loader logging to logger (slog.Default when nil).
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Key derives the namespace key of a file: its base name without extension.
func Key(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadData parses every data file below root into data.
// Key collisions are last-write-wins and logged as warnings.
func (l *Loader) LoadData(ctx context.Context, root string, data *site.Data) error {
	files, err := l.discover(ctx, root, walker.Visible(walker.Extensions(DataExtensions...)))
	if err != nil || len(files) == 0 {
		return err
	}

	for _, path := range files {
		raw, err := os.ReadFile(path) // #nosec G304 -- paths come from the walker
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
		}
		value, err := ParseData(path, raw)
		if err != nil {
			return err
		}
		key := Key(path)
		if data.Set(key, value) {
			l.logger.Warn("Data key overwritten by later file", logfields.Name(key), logfields.File(path))
		}
		l.logger.Debug("Loaded data file", logfields.Name(key), logfields.File(path))
	}

	l.logger.Info("Data loaded", logfields.Path(root), logfields.Count(len(files)))
	return nil
}

// ParseData decodes raw according to the dialect implied by path's extension.
//
// JSON files are plain object notation. YAML files may be wrapped in a `---`
// frontmatter block, in which case the block is the data.
func ParseData(path string, raw []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v, err := oj.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
		}
		return v, nil
	default:
		fm, body, had, err := frontmatter.Split(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
		}
		src := body
		if had {
			src = fm
		}
		var v any
		if err := yaml.Unmarshal(src, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
		}
		return v, nil
	}
}

// LoadIncludes reads every visible file below root as {frontmatter, template
// body}. Include frontmatter is not validated.
func (l *Loader) LoadIncludes(ctx context.Context, root string, includes *site.Includes) error {
	files, err := l.discover(ctx, root, walker.Visible(walker.Any))
	if err != nil || len(files) == 0 {
		return err
	}

	for _, path := range files {
		raw, err := os.ReadFile(path) // #nosec G304 -- paths come from the walker
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
		}
		m, err := frontmatter.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
		}
		name := Key(path)
		inc := &site.Include{Name: name, Path: path, Frontmatter: m.Data, Body: string(m.Content)}
		if prev := includes.Set(name, inc); prev != nil {
			l.logger.Warn("Include overwritten by later file",
				logfields.Name(name), logfields.File(path), slog.String("previous", prev.Path))
		}
	}

	l.logger.Info("Includes loaded", logfields.Path(root), logfields.Count(len(files)))
	return nil
}

func (l *Loader) discover(ctx context.Context, root string, match walker.Predicate) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	files, err := walker.Walk(ctx, root, match)
	if errors.Is(err, walker.ErrRootNotFound) {
		l.logger.Debug("Directory not found, skipping", logfields.Path(root))
		return nil, nil
	}
	return files, err
}
