package image

import "sync"

// StatsSnapshot is a copy of the generation counters
type StatsSnapshot struct {
	Total       int `json:"total"`
	Successful  int `json:"successful"`
	Failed      int `json:"failed"`
	Retries     int `json:"retries"`
	AIGenerated int `json:"aiGenerated"`
	SVGFallback int `json:"svgFallback"`
	FromPool    int `json:"fromPool"`
}

// Stats counts generation outcomes; safe for concurrent use
type Stats struct {
	mu sync.Mutex
	s  StatsSnapshot
}

// NewStats creates zeroed counters
func NewStats() *Stats {
	return &Stats{}
}

func (st *Stats) record(f func(s *StatsSnapshot)) {
	if st == nil {
		return
	}
	st.mu.Lock()
	f(&st.s)
	st.mu.Unlock()
}

// RecordPoolHit counts an image served from the shared pool
func (st *Stats) RecordPoolHit() {
	st.record(func(s *StatsSnapshot) {
		s.Total++
		s.Successful++
		s.FromPool++
	})
}

func (st *Stats) recordRetry() {
	st.record(func(s *StatsSnapshot) { s.Retries++ })
}

func (st *Stats) recordAI() {
	st.record(func(s *StatsSnapshot) {
		s.Total++
		s.Successful++
		s.AIGenerated++
	})
}

func (st *Stats) recordFallback() {
	st.record(func(s *StatsSnapshot) {
		s.Total++
		s.Failed++
		s.SVGFallback++
	})
}

// Snapshot returns a copy of the counters
func (st *Stats) Snapshot() StatsSnapshot {
	if st == nil {
		return StatsSnapshot{}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Reset zeroes the counters
func (st *Stats) Reset() {
	st.record(func(s *StatsSnapshot) { *s = StatsSnapshot{} })
}
