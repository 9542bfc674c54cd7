package dice

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Recorder collects the dice rolled during one logical operation.
//
// Enable and Disable nest: entries are cleared only when recording starts
// from a disabled state, so nested evaluations share one log. Entries stay
// readable after Disable until the next outer Enable.
type Recorder struct {
	id string

	mu      sync.Mutex
	depth   int
	entries []Entry
}

// NewRecorder creates a disabled recorder with a fresh ID.
func NewRecorder() *Recorder {
	return &Recorder{id: uuid.NewString()}
}

// ID identifies the recording session in logs and traces.
func (r *Recorder) ID() string {
	return r.id
}

// Enable starts (or nests) recording.
func (r *Recorder) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depth == 0 {
		r.entries = r.entries[:0]
	}
	r.depth++
}

// Disable ends one level of recording.
func (r *Recorder) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depth > 0 {
		r.depth--
	}
}

// Enabled reports whether rolls are currently recorded.
func (r *Recorder) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depth > 0
}

// Append adds an entry unconditionally.
func (r *Recorder) Append(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// record appends only while recording is enabled.
func (r *Recorder) record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depth > 0 {
		r.entries = append(r.entries, e)
	}
}

// Entries returns a copy of everything recorded since the last Enable.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
