package queue

import (
	"context"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/metrics"
)

// Job is one queued submission plus the channels its caller is waiting on.
type Job struct {
	ID      string
	Request *engine.Request
	Result  chan *engine.SubmissionResult
	Err     chan error
	Ctx     context.Context
}

type Manager struct {
	jobQueue chan *Job
}

func NewManager(capacity int) *Manager {
	return &Manager{
		jobQueue: make(chan *Job, capacity),
	}
}

func (m *Manager) Submit(job *Job) {
	m.jobQueue <- job
	metrics.QueueDepth.Set(float64(len(m.jobQueue)))
}

func (m *Manager) NextJob() <-chan *Job {
	return m.jobQueue
}
