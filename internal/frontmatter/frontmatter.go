// Package frontmatter splits `---` delimited YAML frontmatter from file bodies.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Matter is the parsed {data, content} split of a document.
type Matter struct {
	Data    map[string]any
	Content []byte
	// Had reports whether the document carried a frontmatter block at all.
	Had bool
}

// Parse splits content and decodes the frontmatter block.
//
// A document without frontmatter yields an empty Data map and the full input
// as Content.
func Parse(content []byte) (Matter, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Matter{}, err
	}
	data, err := ParseYAML(fm)
	if err != nil {
		return Matter{}, fmt.Errorf("frontmatter: %w", err)
	}
	return Matter{Data: data, Content: body, Had: had}, nil
}

// Split separates YAML frontmatter (`---` delimited) from the body.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		closeEOF := []byte(nl + "---")
		if bytes.HasSuffix(content, closeEOF) {
			end := len(content) - len(closeEOF)
			return content[start : end+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
