package pipeline

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// FixtureSource serves pre-recorded responses from a directory of JSON
// files, keyed by the uploaded grocery list's filename. It stands in for the
// model when no live credential is configured.
type FixtureSource[T any] struct {
	dir string
}

// NewFixtureSource creates a fixture source over the given directory.
func NewFixtureSource[T any](dir string) *FixtureSource[T] {
	return &FixtureSource[T]{dir: dir}
}

// Fetch returns the recorded response for the given identifier, or absent
// when no recording exists or it fails to decode.
func (f *FixtureSource[T]) Fetch(name string) (*T, bool) {
	// Identifier comes from user input; never let it escape the fixture dir
	path := filepath.Join(f.dir, filepath.Base(name))

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("fixture not available",
			"path", path,
			"error", err,
			"component", "pipeline",
		)
		return nil, false
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		slog.Warn("fixture failed to decode",
			"path", path,
			"error", err,
			"component", "pipeline",
		)
		return nil, false
	}

	return &out, true
}
