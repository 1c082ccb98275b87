package session

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/machinefabric/mediaplug-go/stream"
)

// Receiver maps inbound video tracks to configured stream names, assigns
// small integer stream ids, and feeds decoded units into the output queue.
//
// Track and unit callbacks run on the session's internal threads; everything
// the receiver touches from them is either behind its own mutex or already
// synchronized (registry, queue).
type Receiver struct {
	registry *stream.Registry
	queue    *stream.Queue
	names    []string

	mu       sync.Mutex
	nextID   int64
	assigned int
	byName   map[string]int64

	epoch time.Time
}

// NewReceiver wires a receiver into a recv-only session.
func NewReceiver(sess *WebRTC, registry *stream.Registry, queue *stream.Queue, names []string) *Receiver {
	r := &Receiver{
		registry: registry,
		queue:    queue,
		names:    names,
		nextID:   1,
		byName:   make(map[string]int64),
		epoch:    time.Now(),
	}
	sess.OnTrack(r.handleTrack)
	sess.OnDisconnect(r.handleDisconnect)
	return r
}

func (r *Receiver) handleTrack(t Track) {
	if t.Kind() != stream.KindVideo || len(r.names) == 0 {
		return
	}

	r.mu.Lock()
	name := r.names[r.assigned%len(r.names)]
	r.assigned++
	id := r.nextID
	r.nextID++
	r.byName[name] = id
	r.mu.Unlock()

	r.registry.Upsert(id, stream.KindVideo)
	fmt.Fprintf(os.Stderr, "[Receiver] video track %q mapped to stream %d\n", name, id)

	t.OnUnit(func(u *stream.Unit) {
		u.StreamID = id
		u.StreamName = name
		if u.DurationUs == 0 {
			u.DurationUs = 1_000_000 / 30
		}
		if u.TimestampUs == 0 {
			u.TimestampUs = time.Since(r.epoch).Microseconds()
		}
		r.queue.Enqueue(u)
	})
}

// handleDisconnect converts session loss into stream termination for every
// stream this receiver has mapped.
func (r *Receiver) handleDisconnect(code int, message string) {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.byName))
	for _, id := range r.byName {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.registry.Finish(id)
	}
	fmt.Fprintf(os.Stderr, "[Receiver] %d streams finished on disconnect (%d): %s\n", len(ids), code, message)
}
