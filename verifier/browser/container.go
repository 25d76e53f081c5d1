package browser

import (
	"sync"

	"gitlab.com/pagevet/pagevet"
)

// requestTracker remembers in-flight requests by id so a loadingFailed event
// can be reported with the method and URL that originated it. CDP delivers
// requestWillBeSent and loadingFailed on the same stream, so take always
// sees the add first for a given id.
type requestTracker struct {
	mu       sync.Mutex
	requests map[string]*pagevet.RequestInfo
}

func newRequestTracker() *requestTracker {
	return &requestTracker{requests: make(map[string]*pagevet.RequestInfo)}
}

func (r *requestTracker) add(id, method, url string) {
	r.mu.Lock()
	r.requests[id] = &pagevet.RequestInfo{Method: method, URL: url}
	r.mu.Unlock()
}

// take removes and returns the tracked request, or nil if unknown
func (r *requestTracker) take(id string) *pagevet.RequestInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil
	}
	delete(r.requests, id)
	return req
}
