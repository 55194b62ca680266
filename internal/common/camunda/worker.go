// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/common/logger"
	"people-search/internal/common/metrics"
)

// JobHandler processes one activated job. The handler completes or fails
// the job itself; a returned error is only logged.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// WorkerOptions tunes a single job worker subscription.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// StartWorker opens a job worker for taskType and records job metrics.
func StartWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, log logger.Logger) worker.JobWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	step := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			start := time.Now()
			err := handler.Handle(jc, job)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.WorkerJobsFailed.WithLabelValues(taskType, string(apperrors.FromError(err).Code)).Inc()
				log.Error("Handler returned error", map[string]interface{}{
					"jobKey": job.Key,
					"error":  err.Error(),
				})
				return
			}
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}).
		MaxJobsActive(opts.MaxJobsActive)

	if opts.Timeout > 0 {
		step = step.Timeout(opts.Timeout)
	}

	jobWorker := step.Open()
	log.Info("Worker started", map[string]interface{}{"maxJobsActive": opts.MaxJobsActive})
	return jobWorker
}
