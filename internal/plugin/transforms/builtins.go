package transforms

import (
	"fmt"

	"github.com/tahongtrung/phenomic/internal/plugin"
)

// Builtin resolves a built-in plugin by its configured name.
func Builtin(name string) (plugin.Plugin, error) {
	switch name {
	case "transform-markdown":
		return NewMarkdown(), nil
	case "transform-json":
		return NewJSON(), nil
	case "collector-default":
		return NewCollector(), nil
	default:
		return nil, fmt.Errorf("unknown built-in plugin %q", name)
	}
}

// Defaults returns the built-in plugin set used when the configuration names
// none.
func Defaults() []plugin.Plugin {
	return []plugin.Plugin{NewMarkdown(), NewJSON(), NewCollector()}
}
