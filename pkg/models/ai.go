// Package models contains shared data models used across the Podzine codebase.
package models

import "context"

// Transcriber turns an audio file into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}

// ArticleWriter rewrites a transcript as a formatted magazine article.
type ArticleWriter interface {
	WriteArticle(ctx context.Context, transcript string) (string, error)
}

// Illustrator generates images for a short prompt. Each returned string is a
// URL (or data URI) that a browser can render directly.
type Illustrator interface {
	Illustrate(ctx context.Context, prompt string) ([]string, error)
}

// AIProvider is the core interface that all AI integrations must implement.
// The pipeline depends on the three narrow interfaces; the factory returns this one.
type AIProvider interface {
	Transcriber
	ArticleWriter
	Illustrator
	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// TranscriptionRequest points at an audio file on local disk.
type TranscriptionRequest struct {
	AudioPath string
	Format    string // file extension without the dot, e.g. "mp3"
}
