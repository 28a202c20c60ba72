package radio

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// ProbeTrack builds the playlist entry for path. Tags and duration are
// best-effort: a file that defeats both probes still broadcasts fine (the
// station treats it as opaque bytes), it just shows up under its file name.
func ProbeTrack(path string) TrackInfo {
	info := TrackInfo{
		Path:  path,
		Title: filepath.Base(path),
	}

	if f, err := os.Open(path); err == nil {
		if meta, err := tag.ReadFrom(f); err == nil {
			if title := meta.Title(); title != "" {
				info.Title = title
			}
			info.Artist = meta.Artist()
		}
		f.Close()
	}

	info.Duration = probeDuration(path)
	return info
}

// probeDuration walks the MP3 frames for an exact duration, falling back to
// a size-based estimate when no frame parses.
func probeDuration(path string) time.Duration {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var (
		total   time.Duration
		frame   mp3.Frame
		skipped int
	)
	dec := mp3.NewDecoder(f)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			break
		}
		total += frame.Duration()
	}
	if total > 0 {
		return total
	}
	return estimateDuration(path)
}

// estimateDuration assumes 128 kbps constant bitrate. Rough, but it keeps
// the status output sane for files with unparseable headers.
func estimateDuration(path string) time.Duration {
	fi, err := os.Stat(path)
	if err != nil || fi.Size() == 0 {
		return 0
	}
	const bytesPerSecond = 128 * 1000 / 8
	return time.Duration(fi.Size()/bytesPerSecond) * time.Second
}
