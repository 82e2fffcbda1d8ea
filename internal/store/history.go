package store

import (
	"sync"
	"time"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

// History is a concurrency-safe, time-ordered log of successful fetches.
type History struct {
	mu sync.RWMutex

	entries []weather.HistoryEntry

	// retention configuration
	maxEntries int           // max number of entries kept
	maxAge     time.Duration // optional max age of entries

	now func() time.Time
}

var _ weather.HistoryRecorder = (*History)(nil)

// NewHistory creates a History with optional limits.
// If maxEntries or maxAge is <= 0, that limit is treated as unlimited.
func NewHistory(maxEntries int, maxAge time.Duration) *History {
	return &History{
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Record appends an entry and enforces retention.
func (h *History) Record(entry weather.HistoryEntry) {
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = h.now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	h.prune()
}

// prune drops entries beyond the count limit and older than the age limit.
// Callers must hold the write lock.
func (h *History) prune() {
	if h.maxEntries > 0 && len(h.entries) > h.maxEntries {
		over := len(h.entries) - h.maxEntries
		h.entries = append([]weather.HistoryEntry(nil), h.entries[over:]...)
	}

	if h.maxAge > 0 {
		cutoff := h.now().Add(-h.maxAge)
		i := 0
		for ; i < len(h.entries); i++ {
			if !h.entries[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			h.entries = append([]weather.HistoryEntry(nil), h.entries[i:]...)
		}
	}
}

// List returns entries newest first.
func (h *History) List() []weather.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.prune()
	out := make([]weather.HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// Latest returns the most recent entry.
func (h *History) Latest() (weather.HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return weather.HistoryEntry{}, ErrNotFound
	}
	return h.entries[len(h.entries)-1], nil
}

// Clear removes every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
}
