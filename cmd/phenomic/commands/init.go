package commands

import (
	"fmt"
	"os"
)

// InitCmd writes a starter configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

const starterConfig = `# phenomic site configuration
path: .
content: content
outdir: dist

# Built-in plugins run in order; transforms first, then collectors.
plugins:
  - transform-markdown
  - transform-json
  - collector-default

# base_url: https://example.com
# prerender_workers: 50
# link_check: true
# metrics: false
`

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	path := root.Config
	if !i.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Println("Wrote", path)

	if err := os.MkdirAll("content", 0o755); err != nil {
		return fmt.Errorf("create content directory: %w", err)
	}
	return nil
}
