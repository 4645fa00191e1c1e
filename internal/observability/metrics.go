package observability

import (
	"sync"
	"time"
)

type requestKey struct {
	path   string
	method string
	status int
}

type errorKey struct {
	path   string
	method string
	code   string
}

// Metrics keeps in-process request and error counters plus cumulative request
// latency per route. A nil receiver is a no-op so callers never need to guard.
type Metrics struct {
	mu            sync.Mutex
	requests      map[requestKey]int64
	errors        map[errorKey]int64
	totalDuration map[requestKey]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[requestKey]int64),
		errors:        make(map[errorKey]int64),
		totalDuration: make(map[requestKey]time.Duration),
	}
}

// RecordRequest counts a completed request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := requestKey{path: path, method: method, status: status}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
	m.totalDuration[key] += duration
}

// RecordError counts a request rejected with a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := errorKey{path: path, method: method, code: code}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}
