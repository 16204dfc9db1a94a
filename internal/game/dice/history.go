package dice

// DefaultHistoryCapacity is the number of rolls retained by a History.
const DefaultHistoryCapacity = 50

// History is a bounded, newest-first sequence of roll results backed by a
// ring buffer. It is not safe for concurrent use; Engine serializes access.
//
// Invariant: Len() <= Cap().
type History struct {
	buf  []RollResult
	head int // index of the newest entry
	n    int
}

// NewHistory creates an empty History.
//
// Precondition: capacity >= 1; smaller values use DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{buf: make([]RollResult, capacity), head: -1}
}

// Cap returns the maximum number of retained entries.
func (h *History) Cap() int { return len(h.buf) }

// Len returns the number of retained entries.
func (h *History) Len() int { return h.n }

// Push inserts r as the newest entry, evicting the oldest when full.
//
// Postcondition: Entries()[0] == r.
func (h *History) Push(r RollResult) {
	h.head = (h.head + 1) % len(h.buf)
	h.buf[h.head] = r
	if h.n < len(h.buf) {
		h.n++
	}
}

// Entries returns a copy of the retained results, newest first.
func (h *History) Entries() []RollResult {
	out := make([]RollResult, h.n)
	for i := 0; i < h.n; i++ {
		idx := (h.head - i + len(h.buf)) % len(h.buf)
		out[i] = h.buf[idx]
	}
	return out
}

// Replace discards the current contents and loads entries (newest first),
// keeping at most Cap() of them.
func (h *History) Replace(entries []RollResult) {
	h.Clear()
	if len(entries) > len(h.buf) {
		entries = entries[:len(h.buf)]
	}
	for i := len(entries) - 1; i >= 0; i-- {
		h.Push(entries[i])
	}
}

// Clear removes every entry.
func (h *History) Clear() {
	for i := range h.buf {
		h.buf[i] = RollResult{}
	}
	h.head = -1
	h.n = 0
}
