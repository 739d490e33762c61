package stream

import (
	"sync"
	"time"
)

// HistoryEntry stores a published event for replay.
type HistoryEntry struct {
	Seq     uint64    // Event sequence number
	Payload []byte    // Encoded event, ready to frame
	AddedAt time.Time // When the event was published
}

// History is a thread-safe ring buffer of the most recent events of one
// collection. Sequence numbers in the buffer are contiguous; a gap clears
// it.
type History struct {
	mu       sync.RWMutex
	entries  []HistoryEntry
	head     int // Next write position (circular)
	count    int
	capacity int
	minSeq   uint64 // Oldest sequence in buffer
	maxSeq   uint64 // Newest sequence in buffer
}

// NewHistory creates a history holding up to capacity events.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1024
	}
	return &History{
		entries:  make([]HistoryEntry, capacity),
		capacity: capacity,
	}
}

// Add stores an event payload. The payload is copied.
func (h *History) Add(seq uint64, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count > 0 && seq != h.maxSeq+1 {
		h.clear()
	}

	h.entries[h.head] = HistoryEntry{
		Seq:     seq,
		Payload: append([]byte(nil), payload...),
		AddedAt: time.Now(),
	}
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}

	h.maxSeq = seq
	h.minSeq = h.entries[h.tail()].Seq
}

// tail returns the index of the oldest entry.
func (h *History) tail() int {
	return (h.head - h.count + h.capacity) % h.capacity
}

// Since returns the payloads of events (after, MaxSeq] in order. ok is false
// when some of them are no longer buffered. after == MaxSeq yields no
// payloads and ok.
func (h *History) Since(after uint64) (payloads [][]byte, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if after == h.maxSeq {
		return nil, true
	}
	if h.count == 0 || after > h.maxSeq || after+1 < h.minSeq {
		return nil, false
	}

	start := h.tail() + int(after+1-h.minSeq)
	for i := 0; i < int(h.maxSeq-after); i++ {
		payloads = append(payloads, h.entries[(start+i)%h.capacity].Payload)
	}
	return payloads, true
}

// CanResume reports whether every event after the given sequence is still
// buffered.
func (h *History) CanResume(after uint64) bool {
	_, ok := h.Since(after)
	return ok
}

// MinSeq returns the oldest buffered sequence.
func (h *History) MinSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.minSeq
}

// MaxSeq returns the newest buffered sequence.
func (h *History) MaxSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxSeq
}

// Len returns the number of buffered events.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clear()
}

func (h *History) clear() {
	clear(h.entries)
	h.head = 0
	h.count = 0
	h.minSeq = 0
	h.maxSeq = 0
}
