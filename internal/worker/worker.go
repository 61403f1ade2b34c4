package worker

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tarun1sisodia/codequest-platform-sub000/internal/engine"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/metrics"
	"github.com/tarun1sisodia/codequest-platform-sub000/internal/queue"
)

// Worker drains the submission queue and executes jobs through the
// dispatcher. Submissions are fully independent, so workers share
// nothing beyond the queue itself.
type Worker struct {
	id         int
	dispatcher *engine.Dispatcher
	manager    *queue.Manager
	logger     *zerolog.Logger
}

func NewWorker(id int, dispatcher *engine.Dispatcher, manager *queue.Manager, logger *zerolog.Logger) *Worker {
	return &Worker{
		id:         id,
		dispatcher: dispatcher,
		manager:    manager,
		logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Int("worker_id", w.id).Msg("worker started")
	for {
		select {
		case job := <-w.manager.NextJob():
			metrics.ActiveWorkers.Inc()
			w.processJob(job)
			metrics.ActiveWorkers.Dec()
		case <-ctx.Done():
			w.logger.Info().Int("worker_id", w.id).Msg("worker stopping")
			return
		}
	}
}

func (w *Worker) processJob(job *queue.Job) {
	w.logger.Info().
		Int("worker_id", w.id).
		Str("job_id", job.ID).
		Str("language", string(job.Request.Language)).
		Msg("processing submission")

	result, err := w.dispatcher.Execute(job.Ctx, job.Request)
	if err != nil {
		job.Err <- err
		return
	}
	job.Result <- result
}
