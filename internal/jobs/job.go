package jobs

import (
	"time"

	"github.com/podforge/podforge/internal/podcast"
)

// State represents the lifecycle state of a generation job.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Job is the registry record for one podcast generation request. It is
// mutated only through Registry.Update so readers always observe a
// consistent snapshot.
type Job struct {
	ID    string        `json:"id"`
	Brief podcast.Brief `json:"brief"`
	State State         `json:"state"`

	// CurrentStep is the pipeline step in flight, empty before the
	// orchestrator starts and after it finishes.
	CurrentStep    string `json:"currentStep,omitempty"`
	StepsCompleted int    `json:"stepsCompleted"`
	TotalSteps     int    `json:"totalSteps"`

	// Artifacts and Metadata are attached in the same mutation that
	// moves the job to completed.
	Artifacts *podcast.Artifacts `json:"artifacts,omitempty"`
	Metadata  *podcast.Metadata  `json:"metadata,omitempty"`
	AudioPath string             `json:"audioPath,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Error string `json:"error,omitempty"`
}

// clone returns a deep copy so registry callers can never alias the
// stored record.
func (j *Job) clone() *Job {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	if j.Artifacts != nil {
		a := *j.Artifacts
		a.Scripts = append([]string(nil), j.Artifacts.Scripts...)
		c.Artifacts = &a
	}
	if j.Metadata != nil {
		m := *j.Metadata
		c.Metadata = &m
	}
	return &c
}
