// Package providers builds the configured AI backend.
package providers

import (
	"context"
	"fmt"

	"github.com/kiranshivaraju/podzine/internal/ai/gemini"
	"github.com/kiranshivaraju/podzine/internal/ai/openai"
	"github.com/kiranshivaraju/podzine/internal/config"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// New constructs the appropriate AI provider based on config.
// Called once at server startup.
func New(ctx context.Context, cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "gemini":
		p, err := gemini.NewProvider(ctx, cfg.Gemini, gemini.Options{})
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, gemini", cfg.Provider)
	}
}
