package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Discovery enumerates files under a content directory. The scan is a single
// synchronous pass; this is a one-shot ingestion, not a watch.
type Discovery struct {
	root string
}

// NewDiscovery creates a discovery rooted at the given content directory.
func NewDiscovery(root string) *Discovery {
	return &Discovery{root: root}
}

// Root returns the content directory being scanned.
func (d *Discovery) Root() string { return d.root }

// Exists reports whether the content directory is present.
func (d *Discovery) Exists() bool {
	info, err := os.Stat(d.root)
	return err == nil && info.IsDir()
}

// Scan walks the content directory and loads every regular file. Hidden files
// and directories (dot-prefixed) are skipped.
func (d *Discovery) Scan() ([]File, error) {
	var files []File

	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != d.root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read content file %s: %w", path, err)
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		ext := filepath.Ext(name)
		files = append(files, File{
			Path:         path,
			RelativePath: rel,
			Name:         strings.TrimSuffix(name, ext),
			Extension:    ext,
			Body:         body,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
