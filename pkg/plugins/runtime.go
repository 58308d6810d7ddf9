// Package plugins discovers plugin files and turns them into hooks.Plugin values through
// per-extension runtimes.
package plugins

import "github.com/lerenn/pkgm/pkg/hooks"

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=runtime.go -destination=mockruntime.gen.go -package=plugins

// KindMapping is the export kind of a plain key/value mapping.
const KindMapping = "mapping"

// Runtime imports plugin files of the extensions it claims.
type Runtime interface {
	// Name identifies the runtime in plugin listings and logs.
	Name() string

	// Extensions returns the lower-case file extensions handled, dot included.
	Extensions() []string

	// Open evaluates the file at path and returns its default export.
	Open(path string) (Export, error)
}

// Export describes the default export of an imported file.
type Export struct {
	// Kind is KindMapping for plain mappings; anything else names what was exported instead
	// (function, array, string, nil...).
	Kind    string
	Entries []Entry
}

// Entry is one key of a mapping export.
type Entry struct {
	Key string
	// Kind describes the value (function, string, number...).
	Kind string
	// Handler is nil when the value is not callable.
	Handler hooks.Handler
}
