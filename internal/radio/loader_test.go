package radio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLoader_ReadFully(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	want := []byte("not really mpeg audio, but bytes are bytes")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FileLoader{}.ReadFully(path)
	if err != nil {
		t.Fatalf("ReadFully: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadFully returned %q, want %q", got, want)
	}
}

func TestFileLoader_missing_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.mp3")

	_, err := FileLoader{}.ReadFully(path)
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	var mediaErr *MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T", err)
	}
	if mediaErr.Path != path {
		t.Errorf("MediaError.Path = %q, want %q", mediaErr.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}
