package watchlist

import (
	"strings"
	"sync"
)

// guardKey folds title the way the store matches titles
func guardKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// inflight admits at most one outstanding operation per title.
// Titles differing only in case share a slot.
type inflight struct {
	mu     sync.Mutex
	titles map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{titles: make(map[string]struct{})}
}

// acquire claims title; the returned release must be called when the
// operation settles. ok is false if the title is already claimed.
func (f *inflight) acquire(title string) (release func(), ok bool) {
	key := guardKey(title)
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.titles[key]; busy {
		return nil, false
	}
	f.titles[key] = struct{}{}

	return func() {
		f.mu.Lock()
		delete(f.titles, key)
		f.mu.Unlock()
	}, true
}

// busy reports whether title has an outstanding operation
func (f *inflight) busy(title string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.titles[guardKey(title)]
	return ok
}
