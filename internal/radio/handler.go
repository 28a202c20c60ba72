package radio

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"radiocast/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const (
	audioContentType = "audio/mpeg"

	// listenFlushTimeout caps the drain of a listen response after its
	// client is detached. A peer that stopped reading would otherwise hold
	// the last write until the kernel gives up on the connection.
	listenFlushTimeout = 5 * time.Second
)

// Handler exposes the radio HTTP endpoints using go-chi.
type Handler struct {
	dir     *Directory
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler over the given Directory. Metrics may be nil
// to disable metric recording (e.g. in tests).
func NewHandler(dir *Directory, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{dir: dir, log: log, metrics: m}
}

// ListStations handles GET /stations.
func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	type stationInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Genre      string `json:"genre,omitempty"`
		Playing    bool   `json:"playing"`
		TrackTitle string `json:"track_title,omitempty"`
		Listeners  int    `json:"listeners"`
		StatusURL  string `json:"status_url"`
		ListenURL  string `json:"listen_url"`
	}

	stations := h.dir.List()
	out := make([]stationInfo, 0, len(stations))
	for _, st := range stations {
		status := st.Status()
		out = append(out, stationInfo{
			ID:         string(status.ID),
			Name:       status.Name,
			Genre:      status.Genre,
			Playing:    status.Playing,
			TrackTitle: status.TrackTitle,
			Listeners:  status.Listeners,
			StatusURL:  "/stations/" + string(status.ID),
			ListenURL:  "/stations/" + string(status.ID) + "/listen",
		})
	}
	h.writeJSON(w, out)
}

// GetStatus handles GET /stations/{station_id}.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := StationID(chi.URLParam(r, "station_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	st, ok := h.dir.Lookup(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	h.writeJSON(w, st.Status())
}

// Listen handles GET /stations/{station_id}/listen: an unbounded audio
// response that follows the station's shared broadcast position. The
// connection stays open until the listener leaves or the station shuts down.
func (h *Handler) Listen(w http.ResponseWriter, r *http.Request) {
	id := StationID(chi.URLParam(r, "station_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	st, ok := h.dir.Lookup(id)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	// Shoutcast-style players ask for ICY headers; everyone else gets plain
	// HTTP. The audio bytes are identical either way.
	style := HeaderPlain
	if r.Header.Get("Icy-MetaData") == "1" {
		style = HeaderICY
	}

	writeListenHeaders(w, st.Status(), style)
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.log.Error("response writer does not support streaming",
			slog.String("error", err.Error()))
		return
	}

	sink := &responseSink{w: w, rc: rc, ctx: r.Context()}
	client, err := st.Attach(sink, ClientMeta{
		RemoteAddr:  r.RemoteAddr,
		HeaderStyle: style,
	})
	if err != nil {
		// The station shut down while this request was in flight; the
		// response simply ends.
		return
	}
	if h.metrics != nil {
		h.metrics.IncClientsConnected()
	}

	select {
	case <-r.Context().Done():
		st.Detach(client)
	case <-client.Done():
	}

	// The pump owns the response writer until it has flushed. The deadline
	// bounds that drain, so a peer that stopped reading cannot hold the
	// connection open past station shutdown.
	_ = rc.SetWriteDeadline(time.Now().Add(listenFlushTimeout))
	<-client.Flushed()

	h.log.Debug("listen connection closed",
		slog.String("station", string(id)),
		slog.String("client", client.ID),
		slog.String("remote", r.RemoteAddr),
		slog.Int("session_ms", int(time.Since(client.AttachedAt).Milliseconds())))
}

func (h *Handler) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("encode response failed", slog.String("error", err.Error()))
	}
}

// writeListenHeaders sends the pre-audio header block: plain HTTP for
// ordinary clients, the icy-* block for players that asked for it. No
// icy-metaint is advertised because no metadata is interleaved.
func writeListenHeaders(w http.ResponseWriter, status Status, style HeaderStyle) {
	hdr := w.Header()
	hdr.Set("Content-Type", audioContentType)
	hdr.Set("Cache-Control", "no-cache, no-store")
	hdr.Set("Connection", "close")
	if style == HeaderICY {
		hdr.Set("icy-name", status.Name)
		if status.Genre != "" {
			hdr.Set("icy-genre", status.Genre)
		}
		hdr.Set("icy-br", strconv.Itoa(status.BitrateKbps))
	}
}

// HealthzHandler handles GET /healthz.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// responseSink adapts an HTTP response to the broadcast Sink. Each write is
// flushed immediately so listeners hear slices as they are cut, and Closed
// mirrors the request context so the pump stops as soon as the listener is
// gone.
type responseSink struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	ctx context.Context
}

func (s *responseSink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, err
	}
	if err := s.rc.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

func (s *responseSink) Closed() bool {
	return s.ctx.Err() != nil
}
