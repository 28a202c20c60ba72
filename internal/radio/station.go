package radio

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"radiocast/internal/platform/metrics"
)

const (
	// DefaultTickInterval is the broadcast clock period. Together with
	// DefaultSliceBytes it approximates a 128 kbps stream.
	DefaultTickInterval = 250 * time.Millisecond

	// DefaultSliceBytes is the number of bytes emitted per tick.
	DefaultSliceBytes = 4096

	// DefaultBitrateKbps is the advertised bitrate when a station's presets
	// do not override it.
	DefaultBitrateKbps = 128
)

var (
	// ErrNoPlaylist is returned by Start when a station has no playlist
	// entries at all, or none of them could be read. The station stays
	// non-playing; status and attach keep working.
	ErrNoPlaylist = errors.New("station has no playable tracks")

	// ErrStationClosed is returned when attaching to a station that has been
	// shut down.
	ErrStationClosed = errors.New("station is shut down")
)

// StationConfig describes one station: identity shown to listeners and the
// clock geometry of its broadcast.
type StationConfig struct {
	ID           StationID
	Name         string
	Genre        string
	BitrateKbps  int
	TickInterval time.Duration
	SliceBytes   int
}

// Station runs one looping broadcast: a ticker goroutine walks the playlist
// cyclically, slicing the loaded track's bytes to every attached client.
// All listeners of a station share a single playback position.
type Station struct {
	cfg      StationConfig
	playlist []TrackInfo
	loader   Loader
	log      *slog.Logger
	metrics  *metrics.Metrics
	registry *Registry

	mu      sync.Mutex
	cur     cursor
	buffer  []byte
	playing bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStation builds a station over playlist. The playlist order is fixed for
// the life of the station. Zero config values fall back to the Default*
// constants; metrics may be nil to disable recording (e.g. in tests).
func NewStation(cfg StationConfig, playlist []TrackInfo, loader Loader, log *slog.Logger, m *metrics.Metrics) *Station {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SliceBytes <= 0 {
		cfg.SliceBytes = DefaultSliceBytes
	}
	if cfg.BitrateKbps <= 0 {
		cfg.BitrateKbps = DefaultBitrateKbps
	}
	if cfg.Name == "" {
		cfg.Name = string(cfg.ID)
	}
	if loader == nil {
		loader = FileLoader{}
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Station{
		cfg:      cfg,
		playlist: playlist,
		loader:   loader,
		log:      log.With(slog.String("station", string(cfg.ID))),
		metrics:  m,
		registry: NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start loads the first readable track and starts the broadcast clock.
// It returns ErrNoPlaylist when nothing can play; the station is then
// permanently idle but still answers status and attach requests.
func (s *Station) Start() error {
	if len(s.playlist) == 0 {
		return ErrNoPlaylist
	}

	s.mu.Lock()
	ok := s.loadInitialLocked()
	if ok {
		s.playing = true
	}
	s.mu.Unlock()

	if !ok {
		return ErrNoPlaylist
	}

	s.wg.Add(1)
	go s.run()
	return nil
}

// Attach registers a new listener. The unplayed remainder of the current
// track is queued for immediate delivery (the catch-up write); from the next
// rotation onward the client receives every tick slice. The handle stays live
// until the sink fails, Detach is called, or the station shuts down.
func (s *Station) Attach(sink Sink, meta ClientMeta) (*Client, error) {
	c := newClient(sink, meta)

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return nil, ErrStationClosed
	}
	if s.buffer != nil && s.cur.offset < len(s.buffer) {
		// The queue is fresh and larger than one entry; this cannot block.
		c.queue <- s.buffer[s.cur.offset:]
	}
	s.registry.Add(c)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.registry.pump(c)
	}()

	s.log.Debug("listener attached",
		slog.String("client", c.ID),
		slog.String("remote", meta.RemoteAddr),
		slog.String("headers", c.HeaderStyle.String()))
	return c, nil
}

// Detach removes a listener. It is idempotent; detaching a client that
// already failed or was closed with the station is a no-op.
func (s *Station) Detach(c *Client) {
	if s.registry.Detach(c) {
		s.log.Debug("listener detached", slog.String("client", c.ID))
	}
}

// Status returns a consistent snapshot of the station.
func (s *Station) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		ID:          s.cfg.ID,
		Name:        s.cfg.Name,
		Genre:       s.cfg.Genre,
		BitrateKbps: s.cfg.BitrateKbps,
		Playing:     s.playing,
		Offset:      s.cur.offset,
		BufferLen:   len(s.buffer),
		Listeners:   s.registry.Len(),
	}
	if s.playing && s.buffer != nil {
		track := s.playlist[s.cur.track]
		st.TrackID = filepath.Base(track.Path)
		st.TrackTitle = track.Title
		st.TrackArtist = track.Artist
		if track.Duration > 0 {
			st.TrackDuration = track.Duration.Truncate(time.Second).String()
		}
	}
	return st
}

// Listeners returns the current listener count.
func (s *Station) Listeners() int {
	return s.registry.Len()
}

// Config returns the station's effective configuration.
func (s *Station) Config() StationConfig {
	return s.cfg
}

// Close stops the clock, detaches every client, and waits until all pumps
// have flushed their queued slices. It is safe to call more than once.
func (s *Station) Close() {
	s.cancel()

	// Barrier: any in-flight Attach or tick finishes before clients go away.
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()

	s.registry.CloseAll()
	s.wg.Wait()
}

// run is the broadcast clock. One tick, one slice.
func (s *Station) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances the broadcast by one slice. Everything here is pointer and
// channel bookkeeping; the per-client I/O happens in the pumps.
func (s *Station) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.playing {
		return
	}
	if s.buffer == nil {
		// Between tracks: keep advancing until an entry loads.
		s.rotateLocked()
		return
	}

	start, end, last := s.cur.sliceBounds(len(s.buffer), s.cfg.SliceBytes)
	if end > start {
		_, detached := s.registry.Broadcast(s.buffer[start:end])
		if detached > 0 {
			s.log.Warn("slow listeners detached", slog.Int("count", detached))
		}
		if s.metrics != nil {
			s.metrics.AddBroadcastBytes(string(s.cfg.ID), end-start)
		}
	}

	if last {
		s.rotateLocked()
	} else {
		s.cur.advance(end)
	}
}

// rotateLocked moves the cursor to the next playlist entry and loads it.
// On failure the buffer stays nil, so the next tick retries with the entry
// after that; the cursor never points at a stale or partially read buffer.
// Caller must hold s.mu.
func (s *Station) rotateLocked() {
	s.cur.nextTrack(len(s.playlist))
	s.buffer = nil

	entry := s.playlist[s.cur.track]
	data, err := s.loader.ReadFully(entry.Path)
	if err != nil {
		s.log.Warn("track load failed, skipping",
			slog.String("path", entry.Path),
			slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncTrackLoadFailures(string(s.cfg.ID))
		}
		return
	}

	s.buffer = data
	s.registry.PromotePending()
	s.log.Info("now playing",
		slog.String("track", entry.Title),
		slog.String("duration", entry.Duration.Truncate(time.Second).String()),
		slog.Int("bytes", len(data)))
}

// loadInitialLocked finds the first readable playlist entry, walking at most
// one full cycle from the top. It returns false when nothing can be read.
// Caller must hold s.mu.
func (s *Station) loadInitialLocked() bool {
	for range s.playlist {
		entry := s.playlist[s.cur.track]
		data, err := s.loader.ReadFully(entry.Path)
		if err == nil {
			s.buffer = data
			s.registry.PromotePending()
			s.log.Info("now playing",
				slog.String("track", entry.Title),
				slog.String("duration", entry.Duration.Truncate(time.Second).String()),
				slog.Int("bytes", len(data)))
			return true
		}
		s.log.Warn("track load failed, skipping",
			slog.String("path", entry.Path),
			slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.IncTrackLoadFailures(string(s.cfg.ID))
		}
		s.cur.nextTrack(len(s.playlist))
	}
	return false
}
