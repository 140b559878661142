// Package frontmatter splits and parses YAML frontmatter (`---` delimited)
// from Markdown content.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter is returned when a frontmatter block opens but
// never closes.
var ErrMissingClosingDelimiter = errors.New("frontmatter: missing closing delimiter")

var delimiter = []byte("---\n")

// Split separates YAML frontmatter from the Markdown body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	if !bytes.HasPrefix(content, delimiter) {
		return nil, content, false, nil
	}

	rest := content[len(delimiter):]
	if bytes.HasPrefix(rest, delimiter) {
		// Empty frontmatter block.
		return []byte{}, rest[len(delimiter):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		// A document ending exactly at the closing delimiter.
		if tail := []byte("\n---"); bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+1], nil, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return rest[:idx+1], rest[idx+len(closeSeq):], true, nil
}

// Parse splits content and unmarshals the frontmatter into a map. Documents
// without frontmatter yield an empty map and the full body.
func Parse(content []byte) (fields map[string]any, body []byte, err error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	fields = map[string]any{}
	if had && len(fm) > 0 {
		if err := yaml.Unmarshal(fm, &fields); err != nil {
			return nil, nil, fmt.Errorf("frontmatter: parse yaml: %w", err)
		}
	}
	return fields, body, nil
}
