// Package transforms ships the built-in transform and collect plugins:
// markdown and JSON content normalization plus the default collector.
package transforms

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/tahongtrung/phenomic/internal/content"
	"github.com/tahongtrung/phenomic/internal/frontmatter"
)

// Markdown is the built-in markdown transform. It splits YAML frontmatter
// into structured fields, renders the body to HTML, and derives title and
// slug fields when the frontmatter does not provide them.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown constructs the markdown transform plugin.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

func (*Markdown) Name() string { return "transform-markdown" }

// Transform processes .md and .markdown files; other extensions pass through
// untouched.
func (m *Markdown) Transform(_ context.Context, f *content.File) error {
	if f.Extension != ".md" && f.Extension != ".markdown" {
		return nil
	}

	fields, body, err := frontmatter.Parse(f.Body)
	if err != nil {
		return err
	}
	for k, v := range fields {
		f.SetField(k, v)
	}

	var buf bytes.Buffer
	if err := m.md.Convert(body, &buf); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	f.SetField("body", buf.String())
	f.SetField("raw", string(body))

	if f.Field("title") == nil {
		if title := firstHeading(body); title != "" {
			f.SetField("title", title)
		} else {
			f.SetField("title", f.Name)
		}
	}
	if f.Field("slug") == nil {
		f.SetField("slug", Slugify(fmt.Sprint(f.Field("title"))))
	}
	return nil
}

// firstHeading returns the text of the first ATX heading, if any.
func firstHeading(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return ""
}
