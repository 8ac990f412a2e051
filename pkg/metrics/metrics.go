// Package metrics keeps lightweight in-process request and authorization
// counters, exposed as a JSON snapshot on an admin endpoint.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

type Registry struct {
	mu       sync.RWMutex
	endpoint map[string]*EndpointStat
	authz    map[string]int64
}

type EndpointStat struct {
	Count          int64   `json:"count"`
	ErrorCount     int64   `json:"error_count"`
	TotalMillis    int64   `json:"total_millis"`
	MaxMillis      int64   `json:"max_millis"`
	AverageMillis  float64 `json:"average_millis"`
	LastStatusCode int     `json:"last_status_code"`
}

type Snapshot struct {
	GeneratedAt string                  `json:"generated_at"`
	Endpoints   map[string]EndpointStat `json:"endpoints"`
	Authz       map[string]int64        `json:"authz"`
}

// Authorization outcome labels.
const (
	AuthzAllowed       = "allowed"
	AuthzForbidden     = "forbidden"
	AuthzUnauthd       = "unauthenticated"
	AuthzOwnershipDeny = "ownership_denied"
)

func NewRegistry() *Registry {
	return &Registry{
		endpoint: map[string]*EndpointStat{},
		authz:    map[string]int64{},
	}
}

func (r *Registry) Observe(path string, status int, d time.Duration) {
	millis := d.Milliseconds()
	r.mu.Lock()
	defer r.mu.Unlock()
	stat, ok := r.endpoint[path]
	if !ok {
		stat = &EndpointStat{}
		r.endpoint[path] = stat
	}
	stat.Count++
	if status >= 400 {
		stat.ErrorCount++
	}
	stat.TotalMillis += millis
	if millis > stat.MaxMillis {
		stat.MaxMillis = millis
	}
	stat.LastStatusCode = status
	stat.AverageMillis = float64(stat.TotalMillis) / float64(stat.Count)
}

// IncAuthz counts an authorization outcome.
func (r *Registry) IncAuthz(outcome string) {
	if outcome == "" {
		return
	}
	r.mu.Lock()
	r.authz[outcome]++
	r.mu.Unlock()
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap := Snapshot{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Endpoints:   make(map[string]EndpointStat, len(r.endpoint)),
		Authz:       make(map[string]int64, len(r.authz)),
	}
	for k, v := range r.endpoint {
		snap.Endpoints[k] = *v
	}
	for k, v := range r.authz {
		snap.Authz[k] = v
	}
	return snap
}

// Handler serves the snapshot. Route it behind the admin gate.
func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(r.Snapshot())
	}
}
