package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/pkg/types"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown job IDs.
var ErrNotFound = errors.New("job not found")

// Manager manages scan job lifecycle: create, execute, track, store results.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	registry *scan.Registry
	opts     []scan.Option
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewManager creates a job manager that builds one executor per job from reg.
// opts are passed to every executor.
func NewManager(reg *scan.Registry, logger *slog.Logger, opts ...scan.Option) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		jobs:     make(map[string]*Job),
		registry: reg,
		opts:     append([]scan.Option{scan.WithLogger(logger)}, opts...),
		logger:   logger,
	}
}

// Create registers a new pending job scanning cfg.Target with category.
func (m *Manager) Create(cfg config.Config, category scan.Category) Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:        uuid.NewString(),
		Target:    cfg.Target,
		Category:  string(category),
		Status:    StatusPending,
		CreatedAt: time.Now(),
		cfg:       cfg,
	}
	m.jobs[job.ID] = job
	return *job
}

// Start launches the job in a background goroutine.
func (m *Manager) Start(jobID string) error {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	if job.Status != StatusPending {
		status := job.Status
		m.mu.Unlock()
		return fmt.Errorf("job %q is %s", jobID, status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job.Status = StatusRunning
	job.StartedAt = time.Now()
	job.cancel = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go m.execute(ctx, job)
	return nil
}

func (m *Manager) execute(ctx context.Context, job *Job) {
	defer m.wg.Done()
	defer job.cancel()
	defer func() {
		if r := recover(); r != nil {
			m.finish(job, nil, fmt.Errorf("panic: %v", r))
		}
	}()

	exec, err := scan.NewExecutor(&job.cfg, m.registry, scan.Category(job.Category), m.opts...)
	if err != nil {
		m.finish(job, nil, err)
		return
	}

	report, err := exec.Start(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	m.finish(job, report, err)
}

func (m *Manager) finish(job *Job, report *types.Report, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.CompletedAt = time.Now()
	job.Report = report
	switch {
	case err == nil:
		job.Status = StatusCompleted
	case errors.Is(err, context.Canceled):
		job.Status = StatusCancelled
		job.Error = err.Error()
	default:
		job.Status = StatusFailed
		job.Error = err.Error()
	}

	m.logger.Info("job finished", "job", job.ID, "status", job.Status, "error", job.Error)
}

// Get returns a snapshot of a job by ID.
func (m *Manager) Get(jobID string) (Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	return *job, nil
}

// List returns snapshots of all jobs sorted by CreatedAt descending.
func (m *Manager) List() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		result = append(result, *j)
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})
	return result
}

// Delete removes a job, cancelling it first if it is still running.
func (m *Manager) Delete(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, jobID)
	}
	if job.cancel != nil {
		job.cancel()
	}
	delete(m.jobs, jobID)
	return nil
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown cancels every running job and waits for them to finish.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	for _, job := range m.jobs {
		if job.cancel != nil && !job.Status.Done() {
			job.cancel()
		}
	}
	m.mu.RUnlock()
	m.wg.Wait()
}

// Registry returns the module registry jobs are built from.
func (m *Manager) Registry() *scan.Registry {
	return m.registry
}
