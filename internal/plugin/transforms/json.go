package transforms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tahongtrung/phenomic/internal/content"
)

// JSON is the built-in JSON transform: .json content files become structured
// fields directly.
type JSON struct{}

// NewJSON constructs the JSON transform plugin.
func NewJSON() *JSON { return &JSON{} }

func (*JSON) Name() string { return "transform-json" }

func (*JSON) Transform(_ context.Context, f *content.File) error {
	if f.Extension != ".json" {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal(f.Body, &fields); err != nil {
		return fmt.Errorf("parse json content: %w", err)
	}
	for k, v := range fields {
		f.SetField(k, v)
	}
	if f.Field("title") == nil {
		f.SetField("title", f.Name)
	}
	if f.Field("slug") == nil {
		f.SetField("slug", Slugify(fmt.Sprint(f.Field("title"))))
	}
	return nil
}
