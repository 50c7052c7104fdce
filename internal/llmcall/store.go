package llmcall

import (
	"sync"
)

const (
	// DefaultCapacity bounds the number of retained call records.
	DefaultCapacity = 1000

	// responseSnippetLen bounds how much response text a record keeps.
	responseSnippetLen = 500
)

// Store is a capped in-memory buffer of call records. Records are kept in
// arrival order; when full, the oldest record is dropped.
type Store struct {
	mu       sync.RWMutex
	calls    []Call
	capacity int
}

// NewStore creates a store retaining at most capacity records.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		calls:    make([]Call, 0, capacity),
		capacity: capacity,
	}
}

// QueryFilter specifies filters for listing calls.
type QueryFilter struct {
	JobID    string
	Stage    string
	Provider string
	Success  *bool
	Limit    int
}

// Record stores a call, truncating the retained response snippet.
func (s *Store) Record(call *Call) {
	if call == nil {
		return
	}

	c := *call
	if len(c.Response) > responseSnippetLen {
		c.Response = c.Response[:responseSnippetLen] + "..."
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) >= s.capacity {
		copy(s.calls, s.calls[1:])
		s.calls = s.calls[:len(s.calls)-1]
	}
	s.calls = append(s.calls, c)
}

// Get retrieves a single call by id, or nil.
func (s *Store) Get(id string) *Call {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].ID == id {
			c := s.calls[i]
			return &c
		}
	}
	return nil
}

// List retrieves calls matching the filter, newest first.
func (s *Store) List(filter QueryFilter) []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Call, 0, min(len(s.calls), filterLimit(filter)))
	for i := len(s.calls) - 1; i >= 0; i-- {
		c := s.calls[i]
		if filter.JobID != "" && c.JobID != filter.JobID {
			continue
		}
		if filter.Stage != "" && c.Stage != filter.Stage {
			continue
		}
		if filter.Provider != "" && c.Provider != filter.Provider {
			continue
		}
		if filter.Success != nil && c.Success != *filter.Success {
			continue
		}
		out = append(out, c)
		if len(out) >= filterLimit(filter) {
			break
		}
	}
	return out
}

// Len returns the number of retained records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// CountByStage returns call counts grouped by stage for a job.
func (s *Store) CountByStage(jobID string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, c := range s.calls {
		if jobID != "" && c.JobID != jobID {
			continue
		}
		counts[c.Stage]++
	}
	return counts
}

func filterLimit(filter QueryFilter) int {
	if filter.Limit > 0 {
		return filter.Limit
	}
	return DefaultCapacity
}
