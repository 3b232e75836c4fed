package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/visage-chat/visage/internal/metrics"
)

// JobRunner executes a single synthesis job.
type JobRunner interface {
	Run(ctx context.Context, job Job) error
}

// Pool runs jobs on a fixed number of workers with a bounded queue.
// Submissions beyond the queue capacity are rejected rather than
// blocking the caller.
type Pool struct {
	runner  JobRunner
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
}

func NewPool(runner JobRunner, workers, queueSize int) *Pool {
	return &Pool{
		runner:  runner,
		workers: workers,
		jobs:    make(chan Job, queueSize),
	}
}

// Start launches the workers. They run until Stop is called or ctx is
// canceled, whichever comes first.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(ctx, i)
	}
	slog.Info("avatar worker pool started", "workers", p.workers, "queue_size", cap(p.jobs))
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.runner.Run(ctx, job); err != nil {
				slog.Error("avatar job failed", "worker", id, "job_id", job.ID, "error", err)
			}
		}
	}
}

// Submit enqueues a job without blocking. It reports whether the job was
// accepted.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Schedule implements the orchestrator's scheduling seam for
// single-process deployments, where jobs bypass the message queue.
func (p *Pool) Schedule(_ context.Context, sessionID, emotionDescription string) error {
	job := NewJob(sessionID, emotionDescription)
	if !p.Submit(job) {
		metrics.AvatarJobsTotal.WithLabelValues("dropped").Inc()
		return fmt.Errorf("avatar queue full, dropping job for session %s", sessionID)
	}
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	slog.Info("avatar worker pool stopped")
}
