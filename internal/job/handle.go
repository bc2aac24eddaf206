package job

import (
	"github.com/google/uuid"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// Handle is the write side of one job. Only the handle returned by the most
// recent Reset can change the store.
type Handle struct {
	store *Store
	jobID uuid.UUID
}

// ID returns the job this handle writes to.
func (h *Handle) ID() uuid.UUID {
	return h.jobID
}

// SetPhase records an in-progress phase.
func (h *Handle) SetPhase(phase models.Phase) bool {
	return h.store.update(h.jobID, func(j *models.Job) {
		j.Phase = phase
	})
}

// Complete stores the result and marks the job finished with phase Complete.
func (h *Handle) Complete(result models.Result) bool {
	return h.finish(models.PhaseComplete, result)
}

// Fail marks the job finished with an error phase. The article carries the
// error text so the result page still has something to show.
func (h *Handle) Fail(message string) bool {
	return h.finish(models.ErrorPhase(message), models.Result{Article: "Error: " + message})
}

func (h *Handle) finish(phase models.Phase, result models.Result) bool {
	images := cloneStrings(result.Images)
	return h.store.update(h.jobID, func(j *models.Job) {
		now := h.store.now().UTC()
		j.Phase = phase
		j.Article = result.Article
		j.Images = images
		j.Complete = true
		j.CompletedAt = &now
	})
}
