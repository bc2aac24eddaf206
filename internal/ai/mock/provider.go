package mock

import (
	"context"

	"github.com/kiranshivaraju/podzine/internal/ai"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_            string
	TranscribeFunc   func(ctx context.Context, req models.TranscriptionRequest) (string, error)
	WriteArticleFunc func(ctx context.Context, transcript string) (string, error)
	IllustrateFunc   func(ctx context.Context, prompt string) ([]string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Transcribe(ctx context.Context, req models.TranscriptionRequest) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, req)
	}
	return "", nil
}

func (m *MockProvider) WriteArticle(ctx context.Context, transcript string) (string, error) {
	if m.WriteArticleFunc != nil {
		return m.WriteArticleFunc(ctx, transcript)
	}
	return "", nil
}

func (m *MockProvider) Illustrate(ctx context.Context, prompt string) ([]string, error) {
	if m.IllustrateFunc != nil {
		return m.IllustrateFunc(ctx, prompt)
	}
	return nil, nil
}

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		TranscribeFunc: func(_ context.Context, _ models.TranscriptionRequest) (string, error) {
			return "Welcome back to the show. Today we talk about the history of jazz in New Orleans.", nil
		},
		WriteArticleFunc: func(_ context.Context, _ string) (string, error) {
			return "<h1>Mock Article</h1><p>Mock article body for testing.</p>", nil
		},
		IllustrateFunc: func(_ context.Context, _ string) ([]string, error) {
			return []string{"https://images.example/mock.png"}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		TranscribeFunc: func(_ context.Context, _ models.TranscriptionRequest) (string, error) {
			return "", err
		},
		WriteArticleFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
		IllustrateFunc: func(_ context.Context, _ string) ([]string, error) {
			return nil, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		TranscribeFunc: func(ctx context.Context, _ models.TranscriptionRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
		WriteArticleFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
		IllustrateFunc: func(ctx context.Context, _ string) ([]string, error) {
			<-ctx.Done()
			return nil, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
