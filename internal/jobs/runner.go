package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schoolscraper/internal/monitoring"
)

// QueueSize bounds how many submitted jobs may wait for the worker.
const QueueSize = 16

// ErrQueueFull is returned by Submit when the job queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// Kind of work a job performs.
type Kind string

const (
	KindScrape Kind = "scrape"
	KindEnrich Kind = "enrich"
)

// Status of a job in its lifecycle.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job tracks one queued scrape or enrichment request.
type Job struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Status     Status    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	Records    int       `json:"records"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Parameters; which ones apply depends on Kind.
	Filters []string `json:"filters,omitempty"`
	Output  string   `json:"output,omitempty"`
	Input   string   `json:"input,omitempty"`
}

// RunFunc executes one job and reports how many records it handled.
type RunFunc func(ctx context.Context, job Job) (int, error)

// Runner executes queued jobs strictly one at a time: each job owns the only
// browser session, so there is never a second worker.
type Runner struct {
	run     RunFunc
	metrics *monitoring.Metrics
	logger  *zap.Logger

	queue    chan string
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRunner(run RunFunc, m *monitoring.Metrics, l *zap.Logger) *Runner {
	return &Runner{
		run:      run,
		metrics:  m,
		logger:   l,
		queue:    make(chan string, QueueSize),
		stopChan: make(chan struct{}),
		jobs:     make(map[string]*Job),
	}
}

// Start launches the single worker. ctx bounds every job's execution.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.worker(ctx)
}

// Stop waits for the in-flight job, if any, to finish.
func (r *Runner) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

// Submit queues a job and returns it with its assigned ID.
func (r *Runner) Submit(job Job) (Job, error) {
	job.ID = uuid.New().String()
	job.Status = StatusQueued
	now := time.Now()
	job.CreatedAt, job.UpdatedAt = now, now

	r.mu.Lock()
	stored := job
	r.jobs[job.ID] = &stored
	r.mu.Unlock()

	select {
	case r.queue <- job.ID:
		return job, nil
	default:
		r.mu.Lock()
		delete(r.jobs, job.ID)
		r.mu.Unlock()
		return Job{}, ErrQueueFull
	}
}

// Get returns a snapshot of the job with the given ID.
func (r *Runner) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-r.queue:
			r.process(ctx, id)
		}
	}
}

func (r *Runner) process(ctx context.Context, id string) {
	job, ok := r.Get(id)
	if !ok {
		return
	}
	r.update(id, func(j *Job) { j.Status = StatusRunning })
	r.logger.Info("job started", zap.String("id", id), zap.String("kind", string(job.Kind)))

	count, err := r.run(ctx, job)
	if err != nil {
		r.logger.Error("job failed", zap.String("id", id), zap.Error(err))
		r.metrics.IncErrorsTotal("job_failed")
		r.update(id, func(j *Job) {
			j.Status = StatusFailed
			j.FailReason = err.Error()
			j.Records = count
		})
		return
	}

	r.logger.Info("job completed", zap.String("id", id), zap.Int("records", count))
	r.update(id, func(j *Job) {
		j.Status = StatusCompleted
		j.Records = count
	})
}

func (r *Runner) update(id string, fn func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}
