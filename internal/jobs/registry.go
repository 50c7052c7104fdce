// Package jobs tracks podcast generation jobs in memory. The registry is
// the single source of truth for job state; the pipeline mutates it
// through Update and HTTP handlers read consistent snapshots out of it.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/podforge/podforge/internal/podcast"
)

var (
	// ErrNotFound is returned when no job exists for the given id.
	ErrNotFound = errors.New("job not found")
	// ErrTerminal is returned when an update targets a job that already
	// reached completed, failed, or cancelled.
	ErrTerminal = errors.New("job is in a terminal state")
)

// Registry is a thread-safe in-memory job store with a creation-ordered
// index for listing.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Job
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Job)}
}

// Create registers a new queued job for the brief and returns a snapshot
// of it.
func (r *Registry) Create(brief podcast.Brief) *Job {
	job := &Job{
		ID:         uuid.NewString(),
		Brief:      brief,
		State:      StateQueued,
		TotalSteps: podcast.TotalSteps,
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.byID[job.ID] = job
	r.order = append(r.order, job.ID)
	r.mu.Unlock()

	return job.clone()
}

// Get returns a snapshot of the job, or ErrNotFound.
func (r *Registry) Get(id string) (*Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.clone(), nil
}

// List returns snapshots of jobs, most recently created first. A
// non-positive limit returns everything after offset.
func (r *Registry) List(limit, offset int) []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(r.order) {
		return nil
	}

	var out []*Job
	for i := len(r.order) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.byID[r.order[i]].clone())
	}
	return out
}

// Len returns the number of jobs ever created.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Counts returns the number of jobs per state.
func (r *Registry) Counts() map[State]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[State]int)
	for _, job := range r.byID {
		counts[job.State]++
	}
	return counts
}

// Update applies mutate to the stored job under the write lock and
// returns the resulting snapshot. Jobs already in a terminal state
// reject further mutation; the transition INTO a terminal state is the
// last write a job accepts, which is how completion attaches artifacts
// and metadata atomically.
func (r *Registry) Update(id string, mutate func(*Job)) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if job.State.Terminal() {
		return nil, ErrTerminal
	}
	mutate(job)
	return job.clone(), nil
}

// Cancel moves a queued or processing job to cancelled. Calling it on a
// job that is already terminal is not an error; the current state is
// reported unchanged so repeated cancels are safe.
func (r *Registry) Cancel(id string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if job.State.Terminal() {
		return job.clone(), nil
	}

	now := time.Now().UTC()
	job.State = StateCancelled
	job.CurrentStep = ""
	job.CompletedAt = &now
	return job.clone(), nil
}
