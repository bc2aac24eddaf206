package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phase is the human-readable label a poller sees for the current job.
type Phase string

const (
	PhaseIdle         Phase = "Idle"
	PhaseStarting     Phase = "Starting"
	PhaseTranscribing Phase = "Transcribing"
	PhaseWriting      Phase = "Generating article"
	PhaseIllustrating Phase = "Creating illustrations"
	PhaseComplete     Phase = "Complete"
)

const phaseErrorPrefix = "Error: "

// ErrorPhase builds the terminal phase label for a failed job.
func ErrorPhase(message string) Phase {
	return Phase(phaseErrorPrefix + message)
}

// IsError reports whether p is a terminal error phase.
func (p Phase) IsError() bool {
	return strings.HasPrefix(string(p), phaseErrorPrefix)
}

// Job is the single unit of work tracked by the server. A new upload replaces
// the previous job; the client polls GET /status until Complete is true and
// then fetches GET /result.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	Phase       Phase      `json:"status"`
	Complete    bool       `json:"complete"`
	Article     string     `json:"article"`
	Images      []string   `json:"images"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot is the cheap status view returned to pollers.
type Snapshot struct {
	JobID    uuid.UUID `json:"job_id"`
	Phase    Phase     `json:"status"`
	Complete bool      `json:"complete"`
}

// Result holds the finished output of a job. Failed is set by the store when
// the job ended in an error phase; writers leave it zero.
type Result struct {
	Article string   `json:"article"`
	Images  []string `json:"images"`
	Failed  bool     `json:"failed"`
}
