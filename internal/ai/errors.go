package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
	ErrRequestRejected     = errors.New("ai provider rejected request")
	ErrEmptyTranscript     = errors.New("transcription returned no text")
)

// Classify maps a transport-level error onto the package sentinels. Errors
// that already wrap one of them are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrProviderUnavailable, ErrInferenceTimeout, ErrInvalidResponse, ErrRequestRejected, ErrEmptyTranscript} {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// FromStatus classifies an HTTP status returned by a provider API.
// Server errors and throttling mean the provider is unavailable; any other
// 4xx means the request itself was refused.
func FromStatus(status int, err error) error {
	switch {
	case status >= 500 || status == 429:
		return fmt.Errorf("%w: status %d: %v", ErrProviderUnavailable, status, err)
	case status >= 400:
		return fmt.Errorf("%w: status %d: %v", ErrRequestRejected, status, err)
	default:
		return Classify(err)
	}
}
