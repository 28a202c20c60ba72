package radio

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// clientQueueCap bounds each client's delivery queue. The catch-up write is a
// single entry regardless of its size, so the queue only has to absorb tick
// jitter on the draining side.
const clientQueueCap = 32

// Sink is the destination a client's bytes are written to. Closed reports
// whether the destination is already gone, letting the pump stop before
// attempting a doomed write.
type Sink interface {
	Write(p []byte) (int, error)
	Closed() bool
}

// Client is the handle for one attached listener. It belongs to exactly one
// station's registry from attach until detach.
type Client struct {
	ID          string
	AttachedAt  time.Time
	RemoteAddr  string
	HeaderStyle HeaderStyle

	sink    Sink
	queue   chan []byte
	done    chan struct{}
	flushed chan struct{}

	// pending marks a client that has its catch-up bytes queued but has not
	// yet been folded into tick fan-out. The owning registry's mutex guards
	// it; the next rotation clears it.
	pending bool
}

func newClient(sink Sink, meta ClientMeta) *Client {
	return &Client{
		ID:          uuid.New().String(),
		AttachedAt:  time.Now().UTC(),
		RemoteAddr:  meta.RemoteAddr,
		HeaderStyle: meta.HeaderStyle,
		sink:        sink,
		queue:       make(chan []byte, clientQueueCap),
		done:        make(chan struct{}),
		flushed:     make(chan struct{}),
		pending:     true,
	}
}

// Done is closed once the client has been detached, whatever the reason.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Flushed is closed once the client's pump has written or discarded every
// queued slice. After Flushed the sink is never touched again.
func (c *Client) Flushed() <-chan struct{} {
	return c.flushed
}

// Alive reports whether the client is still registered.
func (c *Client) Alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Registry is the concurrency-safe set of clients attached to one station.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Add registers a client. New clients start pending: their catch-up bytes are
// already queued, and keeping them out of fan-out until the next rotation
// guarantees the catch-up and tick deliveries never overlap.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	r.clients[c.ID] = c
	r.mu.Unlock()
}

// Broadcast queues slice for every non-pending client. A client whose queue
// is full cannot keep up with the broadcast clock; it is detached on the spot
// rather than stalling the tick or skipping slices for everyone else.
func (r *Registry) Broadcast(slice []byte) (delivered, detached int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dead []*Client
	for _, c := range r.clients {
		if c.pending {
			continue
		}
		select {
		case c.queue <- slice:
			delivered++
		default:
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		r.removeLocked(c)
		detached++
	}
	return delivered, detached
}

// PromotePending folds every pending client into tick fan-out. Stations call
// it when a rotation completes, so a promoted client's first tick slice is
// the start of the newly loaded track.
func (r *Registry) PromotePending() {
	r.mu.Lock()
	for _, c := range r.clients {
		c.pending = false
	}
	r.mu.Unlock()
}

// Detach removes the client and wakes everything waiting on it. It is
// idempotent and safe from any goroutine; the return reports whether this
// call was the one that removed it.
func (r *Registry) Detach(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c.ID]; !ok {
		return false
	}
	r.removeLocked(c)
	return true
}

// CloseAll detaches every client. Slices already queued are still drained by
// each client's pump, so listeners receive what was buffered before the
// connection drops.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		r.removeLocked(c)
	}
}

// Len returns the number of registered clients, pending included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// removeLocked deletes the client and closes its channels. Caller must hold
// r.mu; closing the queue under the same mutex that guards Broadcast sends is
// what makes send-after-close impossible.
func (r *Registry) removeLocked(c *Client) {
	delete(r.clients, c.ID)
	close(c.queue)
	close(c.done)
}

// pump drains one client's queue into its sink. It is the only goroutine that
// writes to the sink, so slices arrive in exactly the order they were queued.
// The first failed write detaches the client; anything still queued after
// that is discarded.
func (r *Registry) pump(c *Client) {
	defer close(c.flushed)

	failed := false
	for slice := range c.queue {
		if failed {
			continue
		}
		if c.sink.Closed() {
			failed = true
			r.Detach(c)
			continue
		}
		if _, err := c.sink.Write(slice); err != nil {
			failed = true
			r.Detach(c)
		}
	}
}
