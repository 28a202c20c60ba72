package radio

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestProbeTrack_untagged_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morning-show.mp3")
	writeFile(t, path, bytes.Repeat([]byte{0xAA}, 64))

	info := ProbeTrack(path)
	if info.Path != path {
		t.Errorf("Path = %q, want %q", info.Path, path)
	}
	if info.Title != "morning-show.mp3" {
		t.Errorf("Title = %q, want file name fallback", info.Title)
	}
	if info.Artist != "" {
		t.Errorf("Artist = %q, want empty", info.Artist)
	}
}

func TestProbeTrack_missing_file(t *testing.T) {
	info := ProbeTrack(filepath.Join(t.TempDir(), "gone.mp3"))
	if info.Title != "gone.mp3" {
		t.Errorf("Title = %q, want file name fallback", info.Title)
	}
	if info.Duration != 0 {
		t.Errorf("Duration = %v, want 0", info.Duration)
	}
}

func TestEstimateDuration(t *testing.T) {
	t.Run("assumes_128_kbps", func(t *testing.T) {
		// 16000 bytes per second at 128 kbps, so 48000 bytes is 3 seconds.
		path := filepath.Join(t.TempDir(), "blob.mp3")
		writeFile(t, path, make([]byte, 48000))

		if got := estimateDuration(path); got != 3*time.Second {
			t.Errorf("estimateDuration = %v, want 3s", got)
		}
	})

	t.Run("empty_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.mp3")
		writeFile(t, path, nil)

		if got := estimateDuration(path); got != 0 {
			t.Errorf("estimateDuration = %v, want 0", got)
		}
	})
}

func TestProbeDuration_unparseable_falls_back_to_estimate(t *testing.T) {
	// No valid MPEG frame anywhere, so the frame walk yields nothing and the
	// size estimate takes over.
	path := filepath.Join(t.TempDir(), "noise.mp3")
	writeFile(t, path, bytes.Repeat([]byte{0x00}, 32000))

	if got := probeDuration(path); got != 2*time.Second {
		t.Errorf("probeDuration = %v, want 2s size estimate", got)
	}
}
