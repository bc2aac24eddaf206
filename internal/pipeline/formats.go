package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrMissingFilename   = errors.New("no selected file")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Formats the transcription backends accept. Matching is case-insensitive.
var supportedFormats = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"m4a":  true,
	"mp4":  true,
	"mpeg": true,
	"mpga": true,
	"webm": true,
}

// SupportedFormats returns the accepted extensions in sorted order.
func SupportedFormats() []string {
	out := make([]string, 0, len(supportedFormats))
	for f := range supportedFormats {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Extension returns the lower-cased extension of filename (without the dot)
// if it is an accepted audio format.
func Extension(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrMissingFilename
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !supportedFormats[ext] {
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, filepath.Ext(filename), strings.Join(SupportedFormats(), ", "))
	}
	return ext, nil
}
