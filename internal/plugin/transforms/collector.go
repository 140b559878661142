package transforms

import (
	"context"
	"strings"

	"github.com/tahongtrung/phenomic/internal/content"
	"github.com/tahongtrung/phenomic/internal/store"
)

// Collector is the default collector: one record per file, id derived from
// the slugified relative path, collection from the top-level content
// directory ("pages" for files at the content root).
type Collector struct{}

// NewCollector constructs the default collector plugin.
func NewCollector() *Collector { return &Collector{} }

func (*Collector) Name() string { return "collector-default" }

func (*Collector) Collect(ctx context.Context, f *content.File, st *store.Store) error {
	rel := strings.TrimSuffix(f.RelativePath, f.Extension)
	id := SlugifyPath(rel)

	collection := "pages"
	if dir, _, found := strings.Cut(rel, "/"); found {
		collection = Slugify(dir)
	}

	return st.Put(ctx, store.Record{
		ID:         id,
		Collection: collection,
		Path:       f.RelativePath,
		Data:       f.Fields,
	})
}
