// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandlerFunc is the signature every worker handler exposes.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// JobObserver wraps each job invocation; the manager hangs tracing and
// fleet-level instruments off every handler through it.
type JobObserver func(taskType string, invoke func())

// Worker wraps a polling Zeebe job worker for a single task type.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// NewWorker opens a job worker for taskType and starts polling immediately.
// Timeout is the job activation timeout, not the handler deadline; handlers
// enforce their own deadline from worker config.
func NewWorker(client zbc.Client, taskType string, maxJobsActive int, timeout time.Duration, handler JobHandlerFunc, observe JobObserver, log *zap.Logger) *Worker {
	registered := handler
	if observe != nil {
		registered = func(c worker.JobClient, job entities.Job) {
			observe(taskType, func() { handler(c, job) })
		}
	}

	w := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(registered)).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)

	return &Worker{
		worker:   w,
		logger:   log,
		taskType: taskType,
	}
}

// Close stops polling for new jobs. In-flight jobs keep running until
// AwaitClose returns.
func (w *Worker) Close() {
	w.worker.Close()
}

// AwaitClose blocks until all in-flight jobs have finished.
func (w *Worker) AwaitClose() {
	w.worker.AwaitClose()
	w.logger.Info("worker stopped", zap.String("taskType", w.taskType))
}
