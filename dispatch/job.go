package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// Job is one generated program waiting for the plotter.
type Job struct {
	ID       string
	Path     string
	Estimate time.Duration
	Created  time.Time
}

// NewJob stamps a job with a fresh ID.
func NewJob(path string, estimate time.Duration) Job {
	return Job{
		ID:       uuid.NewString(),
		Path:     path,
		Estimate: estimate,
		Created:  time.Now(),
	}
}

// State is the phase of the active job.
type State int

const (
	Idle State = iota
	Sending
	Connecting
	Running
	Waiting
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Connecting:
		return "connecting"
	case Running:
		return "running"
	case Waiting:
		return "waiting"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition is reported to the observer on every state change.
type Transition struct {
	Job      Job
	From, To State
	Err      error
}

// Stats counts finished jobs.
type Stats struct {
	Completed int
	Failed    int
	Pending   int
}
