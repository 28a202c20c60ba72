package radio

import (
	"fmt"
	"os"
)

// Loader reads one playlist entry fully into memory. Implementations return
// either the complete file contents or an error; a partial read is never
// surfaced to the station.
type Loader interface {
	ReadFully(path string) ([]byte, error)
}

// MediaError reports a playlist entry that could not be read. Stations
// contain it at the rotation step: the entry is logged, skipped, and retried
// on the next cycle through the playlist.
type MediaError struct {
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("media unavailable: %s: %v", e.Path, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// FileLoader reads playlist entries from the local filesystem.
type FileLoader struct{}

// ReadFully implements Loader.ReadFully.
func (FileLoader) ReadFully(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &MediaError{Path: path, Err: err}
	}
	return data, nil
}
