package radio

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"radiocast/internal/platform/metrics"
)

// Directory owns every station in the process. It is populated once at
// startup from the scanned library; nothing adds or removes stations while
// the server runs.
type Directory struct {
	mu       sync.RWMutex
	stations map[StationID]*Station
	log      *slog.Logger
}

// NewDirectory builds one station per scanned source. Presets override the
// scanned defaults per station; sources without a preset use defaults plus
// their directory name.
func NewDirectory(sources []StationSource, presets Presets, defaults StationConfig, loader Loader, log *slog.Logger, m *metrics.Metrics) *Directory {
	if log == nil {
		log = slog.Default()
	}

	d := &Directory{
		stations: make(map[StationID]*Station, len(sources)),
		log:      log,
	}
	for _, src := range sources {
		cfg := StationConfig{
			ID:           StationID(src.ID),
			Name:         src.ID,
			BitrateKbps:  defaults.BitrateKbps,
			TickInterval: defaults.TickInterval,
			SliceBytes:   defaults.SliceBytes,
		}
		if p, ok := presets.Stations[src.ID]; ok {
			cfg = p.apply(cfg)
		}
		d.stations[cfg.ID] = NewStation(cfg, src.Tracks, loader, log, m)
	}
	return d
}

// Lookup returns the station for id, with ok false when it does not exist.
func (d *Directory) Lookup(id StationID) (*Station, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st, ok := d.stations[id]
	return st, ok
}

// List returns all stations sorted by ID for stable output.
func (d *Directory) List() []*Station {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*Station, 0, len(d.stations))
	for _, st := range d.stations {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].cfg.ID < out[j].cfg.ID })
	return out
}

// StartAll starts every station's broadcast clock. A station with nothing
// playable is logged and left idle; it still shows up in listings with
// playing false.
func (d *Directory) StartAll() {
	for _, st := range d.List() {
		if err := st.Start(); err != nil {
			if errors.Is(err, ErrNoPlaylist) {
				d.log.Warn("station idle, nothing playable",
					slog.String("station", string(st.cfg.ID)))
				continue
			}
			d.log.Error("station start failed",
				slog.String("station", string(st.cfg.ID)),
				slog.String("error", err.Error()))
		}
	}
}

// TotalListeners returns the listener count summed over all stations.
func (d *Directory) TotalListeners() int {
	n := 0
	for _, st := range d.List() {
		n += st.Listeners()
	}
	return n
}

// Close shuts every station down and waits for their client flushes.
func (d *Directory) Close() {
	for _, st := range d.List() {
		st.Close()
	}
	d.log.Info("all stations stopped")
}
