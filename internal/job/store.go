// Package job holds the process-wide, single-slot record of the current
// podcast job. One upload at a time owns the slot; a new upload replaces it.
package job

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// Observer is called with the new snapshot after every accepted write, in
// the order the writes were applied. It runs with the store locked, so it
// must not block or call back into the Store.
type Observer func(models.Snapshot)

// Store is the single-slot job record shared by the pipeline (writer) and the
// polling endpoints (readers). It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	current  models.Job
	observer Observer
	now      func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithObserver registers fn to receive every accepted status change.
func WithObserver(fn Observer) Option {
	return func(s *Store) {
		s.observer = fn
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an idle store with no job.
func NewStore(opts ...Option) *Store {
	s := &Store{
		current: models.Job{Phase: models.PhaseIdle},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset replaces whatever job occupies the slot with a fresh one in the
// Starting phase and returns the only handle allowed to write to it.
// Handles of earlier jobs become stale; their writes are dropped.
func (s *Store) Reset(filename string) *Handle {
	s.mu.Lock()
	s.current = models.Job{
		ID:        uuid.New(),
		Filename:  filename,
		Phase:     models.PhaseStarting,
		Images:    []string{},
		CreatedAt: s.now().UTC(),
	}
	snap := snapshotOf(s.current)
	s.notify(snap)
	s.mu.Unlock()

	return &Handle{store: s, jobID: snap.JobID}
}

// Snapshot returns the current phase and completion flag.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotOf(s.current)
}

// Result returns the finished article and images together with whether the
// job failed, all from one read. The boolean is false while the current job
// is still running (or no job was ever submitted).
func (s *Store) Result() (models.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Result{
		Article: s.current.Article,
		Images:  cloneStrings(s.current.Images),
		Failed:  s.current.Phase.IsError(),
	}, s.current.Complete
}

// Job returns a copy of the full record.
func (s *Store) Job() models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j := s.current
	j.Images = cloneStrings(s.current.Images)
	return j
}

// update applies fn to the slot if jobID still owns it and the job has not
// completed yet. Returns false when the write was dropped.
func (s *Store) update(jobID uuid.UUID, fn func(j *models.Job)) bool {
	s.mu.Lock()
	if s.current.ID != jobID {
		s.mu.Unlock()
		slog.Debug("dropping write from superseded job", "job_id", jobID, "current_job_id", s.current.ID)
		return false
	}
	if s.current.Complete {
		s.mu.Unlock()
		slog.Debug("dropping write to completed job", "job_id", jobID)
		return false
	}
	fn(&s.current)
	s.notify(snapshotOf(s.current))
	s.mu.Unlock()

	return true
}

func (s *Store) notify(snap models.Snapshot) {
	if s.observer != nil {
		s.observer(snap)
	}
}

func snapshotOf(j models.Job) models.Snapshot {
	return models.Snapshot{JobID: j.ID, Phase: j.Phase, Complete: j.Complete}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
