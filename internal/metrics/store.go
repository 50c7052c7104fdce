package metrics

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the number of retained metric records.
const DefaultCapacity = 5000

// Store is a capped in-memory buffer of metric records.
type Store struct {
	mu       sync.RWMutex
	metrics  []Metric
	capacity int
}

// NewStore creates a store retaining at most capacity records.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		metrics:  make([]Metric, 0, capacity),
		capacity: capacity,
	}
}

// Filter specifies filters for listing metrics.
type Filter struct {
	JobID    string
	Stage    string
	Provider string
	Success  *bool
	Limit    int
}

// Record stores a metric. A zero CreatedAt is stamped with now.
func (s *Store) Record(m *Metric) {
	if m == nil {
		return
	}

	rec := *m
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.metrics) >= s.capacity {
		copy(s.metrics, s.metrics[1:])
		s.metrics = s.metrics[:len(s.metrics)-1]
	}
	s.metrics = append(s.metrics, rec)
}

// List retrieves metrics matching the filter, newest first.
func (s *Store) List(f Filter) []Metric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = s.capacity
	}

	out := make([]Metric, 0, min(len(s.metrics), limit))
	for i := len(s.metrics) - 1; i >= 0; i-- {
		m := s.metrics[i]
		if f.JobID != "" && m.JobID != f.JobID {
			continue
		}
		if f.Stage != "" && m.Stage != f.Stage {
			continue
		}
		if f.Provider != "" && m.Provider != f.Provider {
			continue
		}
		if f.Success != nil && m.Success != *f.Success {
			continue
		}
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// JobSummary aggregates the metrics of one job, stage by stage in
// first-seen order.
func (s *Store) JobSummary(jobID string) JobSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := JobSummary{JobID: jobID}
	rollups := make(map[string]*StageRollup)
	var order []string

	for i := range s.metrics {
		m := &s.metrics[i]
		if m.JobID != jobID {
			continue
		}

		summary.Calls++
		summary.TotalTokens += m.TotalTokens
		summary.TotalSeconds += m.ExecutionSeconds
		if m.Attempt > 1 {
			summary.Retries++
		}
		if !m.Success {
			summary.Errors++
		}

		r, ok := rollups[m.Stage]
		if !ok {
			r = &StageRollup{Stage: m.Stage}
			rollups[m.Stage] = r
			order = append(order, m.Stage)
		}
		accumulate(r, m)
	}

	summary.Stages = finishRollups(rollups, order)
	return summary
}

// Summary aggregates all retained metrics across jobs.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{CallsByProvider: make(map[string]int)}
	jobs := make(map[string]bool)
	rollups := make(map[string]*StageRollup)
	var order []string

	for i := range s.metrics {
		m := &s.metrics[i]

		summary.Calls++
		summary.PromptTokens += m.PromptTokens
		summary.CompletionTokens += m.CompletionTokens
		summary.TotalTokens += m.TotalTokens
		summary.TotalSeconds += m.ExecutionSeconds
		if m.Attempt > 1 {
			summary.Retries++
		}
		if !m.Success {
			summary.Errors++
		}
		if m.JobID != "" {
			jobs[m.JobID] = true
		}
		if m.Provider != "" {
			summary.CallsByProvider[m.Provider]++
		}

		r, ok := rollups[m.Stage]
		if !ok {
			r = &StageRollup{Stage: m.Stage}
			rollups[m.Stage] = r
			order = append(order, m.Stage)
		}
		accumulate(r, m)
	}

	summary.Jobs = len(jobs)
	summary.ByStage = finishRollups(rollups, order)
	return summary
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.metrics)
}

func accumulate(r *StageRollup, m *Metric) {
	r.Calls++
	r.PromptTokens += m.PromptTokens
	r.CompletionTokens += m.CompletionTokens
	r.TotalTokens += m.TotalTokens
	r.TotalSeconds += m.ExecutionSeconds
	if m.Attempt > 1 {
		r.Retries++
	}
	if !m.Success {
		r.Errors++
	}
}

func finishRollups(rollups map[string]*StageRollup, order []string) []StageRollup {
	out := make([]StageRollup, 0, len(order))
	for _, stage := range order {
		r := rollups[stage]
		if r.Calls > 0 {
			r.AvgSeconds = r.TotalSeconds / float64(r.Calls)
		}
		out = append(out, *r)
	}
	return out
}
