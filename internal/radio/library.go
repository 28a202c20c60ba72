package radio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// StationSource is one scanned library entry: the directory that becomes a
// station and the playable files found inside it, in playlist order.
type StationSource struct {
	ID     string
	Dir    string
	Tracks []TrackInfo
}

// ScanLibrary discovers stations under root. Every immediate subdirectory is
// one station; every .mp3 file inside it, sorted by name, is one playlist
// entry. The root is created when missing so a fresh install boots into a
// valid, empty library instead of failing.
func ScanLibrary(root string, log *slog.Logger) ([]StationSource, error) {
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read media root: %w", err)
	}

	var sources []StationSource
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		tracks, err := scanTracks(dir)
		if err != nil {
			log.Warn("skipping unreadable station directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			continue
		}
		sources = append(sources, StationSource{
			ID:     entry.Name(),
			Dir:    dir,
			Tracks: tracks,
		})
		log.Info("station discovered",
			slog.String("station", entry.Name()),
			slog.Int("tracks", len(tracks)))
	}
	return sources, nil
}

// scanTracks lists the playable files of one station directory. os.ReadDir
// returns entries sorted by name, which fixes the playlist order.
func scanTracks(dir string) ([]TrackInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tracks []TrackInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".mp3" {
			continue
		}
		tracks = append(tracks, ProbeTrack(filepath.Join(dir, entry.Name())))
	}
	return tracks, nil
}
