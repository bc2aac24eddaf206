package pipeline

// Outcome tags how a stage ended.
type Outcome int

const (
	// OK means the stage produced its value.
	OK Outcome = iota
	// Degraded means the stage failed but left a fallback value and the job
	// continues.
	Degraded
	// Fatal ends the job with an error phase.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StageResult is what one pipeline stage hands to the next.
type StageResult[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func stageOK[T any](v T) StageResult[T] {
	return StageResult[T]{Value: v, Outcome: OK}
}

func stageDegraded[T any](fallback T, err error) StageResult[T] {
	return StageResult[T]{Value: fallback, Outcome: Degraded, Err: err}
}

func stageFatal[T any](err error) StageResult[T] {
	return StageResult[T]{Outcome: Fatal, Err: err}
}
