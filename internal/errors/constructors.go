package errors

// ConfigError creates a configuration error (missing plugin role, bad paths).
func ConfigError(message string) *BuildError {
	return New(CategoryConfig, message)
}

// ValidationError creates an input validation error.
func ValidationError(message string) *BuildError {
	return New(CategoryValidation, message)
}

// IngestError creates a content ingestion error.
func IngestError(message string) *BuildError {
	return New(CategoryIngest, message)
}

// BundleError creates a bundler phase error.
func BundleError(message string) *BuildError {
	return New(CategoryBundle, message)
}

// ResolveError creates a URL resolution error.
func ResolveError(message string) *BuildError {
	return New(CategoryResolve, message)
}

// PrerenderError creates a prerender fan-out error.
func PrerenderError(message string) *BuildError {
	return New(CategoryPrerender, message)
}

// ServerError creates a content API server error.
func ServerError(message string) *BuildError {
	return New(CategoryServer, message)
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *BuildError {
	return New(CategoryFileSystem, message)
}
