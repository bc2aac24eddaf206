package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/podzine/internal/ai"
	"github.com/kiranshivaraju/podzine/internal/config"
	"github.com/kiranshivaraju/podzine/pkg/models"
	goopenai "github.com/sashabaranov/go-openai"
)

// Provider implements models.AIProvider using the OpenAI audio, chat and
// image endpoints.
type Provider struct {
	client *goopenai.Client
	cfg    config.OpenAIConfig
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (p *Provider) Name() string { return "openai" }

// Transcribe uploads the audio file to the transcription endpoint. The file
// extension travels with the upload and tells the API how to decode it.
func (p *Provider) Transcribe(ctx context.Context, req models.TranscriptionRequest) (string, error) {
	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    p.cfg.TranscriptionModel,
		FilePath: req.AudioPath,
		Format:   goopenai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ai.ErrEmptyTranscript
	}
	return text, nil
}

func (p *Provider) WriteArticle(ctx context.Context, transcript string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: p.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: ai.ArticlePrompt(transcript)},
		},
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in completion", ai.ErrInvalidResponse)
	}
	article := strings.TrimSpace(resp.Choices[0].Message.Content)
	if article == "" {
		return "", fmt.Errorf("%w: empty completion", ai.ErrInvalidResponse)
	}
	return article, nil
}

// Illustrate requests a single image; the model rejects n > 1.
func (p *Provider) Illustrate(ctx context.Context, prompt string) ([]string, error) {
	resp, err := p.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          p.cfg.ImageModel,
		N:              1,
		Size:           goopenai.CreateImageSize1024x1024,
		Quality:        goopenai.CreateImageQualityStandard,
		Style:          goopenai.CreateImageStyleNatural,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, classify(err)
	}

	images := make([]string, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.URL != "" {
			images = append(images, d.URL)
		}
	}
	return images, nil
}

func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return ai.FromStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return ai.FromStatus(reqErr.HTTPStatusCode, err)
	}
	return ai.Classify(err)
}

var _ models.AIProvider = (*Provider)(nil)
