package jobs

import (
	"errors"
	"fmt"
	"sync"

	"subtitle-player/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second active job.
var ErrJobAlreadyRunning = errors.New("job already running")

// ErrStaleJob is returned when a transition names a job that is no longer current,
// for example events from a worker the host has already discarded.
var ErrStaleJob = errors.New("stale job")

// Manager tracks the one job a host runs at a time, so that a new job is never
// observed before the previous one reached a terminal state.
type Manager struct {
	mu      sync.RWMutex
	current domain.Job
}

// NewManager creates a manager with no job.
func NewManager() *Manager {
	return &Manager{}
}

// Start registers a pending job for mediaPath.
func (m *Manager) Start(jobID, mediaPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Status) {
		return ErrJobAlreadyRunning
	}

	m.current = domain.Job{
		ID:        jobID,
		MediaPath: mediaPath,
		Status:    domain.JobStatusPending,
	}
	return nil
}

// Transition validates and applies a status change for jobID.
func (m *Manager) Transition(jobID string, status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" {
		return fmt.Errorf("cannot transition without an active job")
	}
	if m.current.ID != jobID {
		return fmt.Errorf("%w: %s", ErrStaleJob, jobID)
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset forgets the current job, abandoning it if still active.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Job{}
}

// IsRunning reports whether a job is pending or running.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isActive(m.current.Status)
}

// isActive checks if a status has not reached a terminal state yet.
func isActive(status domain.JobStatus) bool {
	return status == domain.JobStatusPending || status == domain.JobStatusRunning
}

// isValidTransition enforces Pending -> Running -> Succeeded|Failed.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusPending:
		return to == domain.JobStatusRunning || to == domain.JobStatusFailed
	case domain.JobStatusRunning:
		return to == domain.JobStatusSucceeded || to == domain.JobStatusFailed
	default:
		return false
	}
}
