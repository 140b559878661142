package linkcheck

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Issue is one broken internal link found during the audit.
type Issue struct {
	Page   string // Output-relative path of the page containing the link
	Target string // The unresolvable link target
}

func (i Issue) String() string {
	return fmt.Sprintf("broken internal link in %s: %s", i.Page, i.Target)
}

// Audit walks the output directory, extracts internal links from every HTML
// file, and reports links with no corresponding output file. When eventsURL
// is non-empty, issues are additionally published to NATS (best effort).
func Audit(ctx context.Context, outdir string, eventsURL string) ([]Issue, error) {
	pages, outputs, err := collectOutputs(outdir)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, page := range pages {
		f, err := os.Open(filepath.Join(outdir, filepath.FromSlash(page)))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", page, err)
		}
		links, err := ExtractLinks(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("extract links from %s: %w", page, err)
		}

		for _, l := range links {
			if !l.IsInternal() {
				continue
			}
			if !resolves(l.URL, page, outputs) {
				issues = append(issues, Issue{Page: page, Target: l.URL})
			}
		}
	}

	if eventsURL != "" && len(issues) > 0 {
		publishIssues(ctx, eventsURL, issues)
	}
	return issues, nil
}

// collectOutputs returns the HTML pages to audit and the set of all output
// paths (slash-separated, outdir-relative) links may resolve to.
func collectOutputs(outdir string) (pages []string, outputs map[string]struct{}, err error) {
	outputs = make(map[string]struct{})
	err = filepath.WalkDir(outdir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(outdir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		outputs[rel] = struct{}{}
		if strings.HasSuffix(rel, ".html") {
			pages = append(pages, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk output directory %s: %w", outdir, err)
	}
	return pages, outputs, nil
}

// resolves reports whether an internal link target maps to an emitted output
// file, trying the path itself, its index.html form, and its .html form.
func resolves(raw, page string, outputs map[string]struct{}) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return true // fragments and unparsable targets are not audited
	}
	target, err := url.PathUnescape(u.Path)
	if err != nil {
		return false
	}

	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = strings.TrimPrefix(target, "/")
	} else {
		resolved = path.Join(path.Dir(page), target)
	}
	resolved = strings.TrimSuffix(resolved, "/")

	candidates := []string{
		resolved,
		path.Join(resolved, "index.html"),
		resolved + ".html",
	}
	if resolved == "" {
		candidates = []string{"index.html"}
	}
	for _, c := range candidates {
		if _, ok := outputs[c]; ok {
			return true
		}
	}
	return false
}
