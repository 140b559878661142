// Package content provides content tree discovery and the ContentFile type
// flowing through the transform/collect chains.
package content

// File represents a discovered content file moving through the ingestion
// pipeline. Transform plugins mutate it in place; collect plugins persist
// parts of it into the content store. It is discarded after collection.
type File struct {
	Path         string         // Absolute path to the file
	RelativePath string         // Path relative to the content directory, slash-separated
	Name         string         // File name without extension
	Extension    string         // File extension including the dot (".md")
	Body         []byte         // Raw file contents; transforms may replace it
	Fields       map[string]any // Structured data accumulated by transforms
}

// Field returns a structured field, or nil when absent.
func (f *File) Field(key string) any {
	if f.Fields == nil {
		return nil
	}
	return f.Fields[key]
}

// SetField stores a structured field, allocating the map on first use.
func (f *File) SetField(key string, value any) {
	if f.Fields == nil {
		f.Fields = make(map[string]any)
	}
	f.Fields[key] = value
}
