// Package stream tracks the lifecycle of logical media streams and hands
// produced media units from collaborator callbacks to the dispatch thread.
package stream

import (
	"sync"
)

// Kind is the media kind of a stream.
type Kind int

const (
	KindAudio Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Registry maps stream ids to media kinds and liveness. Presence implies
// Active; absence implies ended or never seen. All operations are idempotent.
//
// In the publish direction every mutation happens on the dispatch thread; in
// the receive direction a collaborator disconnect callback may also mutate it,
// so the whole registry is serialized behind one mutex.
type Registry struct {
	mu       sync.Mutex
	active   map[int64]Kind
	finished map[int64]struct{}
	ever     bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		active:   make(map[int64]Kind),
		finished: make(map[int64]struct{}),
	}
}

// Upsert creates or refreshes a stream record with the given kind.
func (r *Registry) Upsert(id int64, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = kind
	r.ever = true
}

// Remove deletes a stream record. Removing an absent id is a no-op.
func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// Finish removes a stream record and counts the stream as ended. Finishing an
// id more than once counts it once.
func (r *Registry) Finish(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
	r.finished[id] = struct{}{}
}

// Contains reports whether the stream is currently active.
func (r *Registry) Contains(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}

// KindOf returns the kind of an active stream.
func (r *Registry) KindOf(id int64) (Kind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kind, ok := r.active[id]
	return kind, ok
}

// Empty reports whether no streams are active.
func (r *Registry) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active) == 0
}

// Len returns the number of active streams.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// EverActive reports whether the registry has ever held a stream. One-way:
// once set it stays set for the registry's lifetime.
func (r *Registry) EverActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ever
}

// FinishedCount returns the number of distinct streams that have ended via
// Finish.
func (r *Registry) FinishedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.finished)
}

// ActiveIDs returns a snapshot of the currently active stream ids.
func (r *Registry) ActiveIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.active))
	for id := range r.active {
		ids = append(ids, id)
	}
	return ids
}
