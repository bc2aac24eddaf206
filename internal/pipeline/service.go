package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/podzine/internal/job"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// Ack is returned by Submit once the job has been started.
type Ack struct {
	JobID    uuid.UUID `json:"job_id"`
	Filename string    `json:"filename"`
}

// JobRunner runs one job in the background. *Runner implements it.
type JobRunner interface {
	Run(h *job.Handle, audio []byte, filename string)
}

// Service is the submission and polling surface used by the HTTP layer.
type Service struct {
	store  *job.Store
	runner JobRunner
}

func NewService(store *job.Store, runner JobRunner) *Service {
	return &Service{store: store, runner: runner}
}

// Submit validates the upload, replaces the current job and starts the
// pipeline in a background goroutine. Validation errors leave the store
// untouched.
func (s *Service) Submit(ctx context.Context, audio []byte, filename string) (Ack, error) {
	if _, err := Extension(filename); err != nil {
		return Ack{}, err
	}

	h := s.store.Reset(filename)
	slog.InfoContext(ctx, "job submitted", "job_id", h.ID(), "filename", filename, "bytes", len(audio))

	go s.runner.Run(h, audio, filename)

	return Ack{JobID: h.ID(), Filename: filename}, nil
}

// Poll returns the current phase without blocking on the pipeline.
func (s *Service) Poll() models.Snapshot {
	return s.store.Snapshot()
}

// FetchResult returns the finished result, including whether the job
// failed. ok is false while the job is still running or when nothing was
// ever submitted.
func (s *Service) FetchResult() (models.Result, bool) {
	return s.store.Result()
}

// CurrentJob returns the full record of the job occupying the slot.
func (s *Service) CurrentJob() models.Job {
	return s.store.Job()
}
