// Package linkcheck provides the post-build internal link audit: it parses
// every emitted HTML file and reports internal links that resolve to no
// output file. Warn-only; a build is never failed by its audit.
package linkcheck

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is a link-like construct extracted from an emitted HTML page.
type Link struct {
	URL       string // The raw URL or path
	Tag       string // HTML tag (a, img, script, link)
	Attribute string // Attribute containing the link (href, src)
}

// ExtractLinks parses HTML and collects link-like constructs.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := getAttr(n, "href"); href != "" {
					links = append(links, Link{URL: href, Tag: n.Data, Attribute: "href"})
				}
			case "img", "script":
				if src := getAttr(n, "src"); src != "" {
					links = append(links, Link{URL: src, Tag: n.Data, Attribute: "src"})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// IsInternal reports whether a link targets the generated site itself:
// root-relative or relative paths without a scheme or host.
func (l Link) IsInternal() bool {
	u, err := url.Parse(l.URL)
	if err != nil {
		return false
	}
	if u.Scheme != "" || u.Host != "" {
		return false
	}
	// Pure fragments point into the current page.
	return u.Path != "" || !strings.HasPrefix(l.URL, "#")
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
