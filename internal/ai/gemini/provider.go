// Package gemini implements models.AIProvider on the Google Gemini API:
// audio understanding for transcripts, text generation for articles and
// Imagen for illustrations.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kiranshivaraju/podzine/internal/ai"
	"github.com/kiranshivaraju/podzine/internal/config"
	"github.com/kiranshivaraju/podzine/pkg/models"
	"google.golang.org/genai"
)

const transcribeInstruction = "Transcribe this podcast audio verbatim. Return only the spoken words as plain text."

var audioMIMETypes = map[string]string{
	"mp3":  "audio/mpeg",
	"mpeg": "audio/mpeg",
	"mpga": "audio/mpeg",
	"wav":  "audio/wav",
	"m4a":  "audio/mp4",
	"mp4":  "audio/mp4",
	"webm": "audio/webm",
}

type Provider struct {
	client *genai.Client
	cfg    config.GeminiConfig
}

// Options tweak the underlying genai client (tests point BaseURL at a fake).
type Options struct {
	BaseURL    string
	APIVersion string
}

func NewProvider(ctx context.Context, cfg config.GeminiConfig, opts Options) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    opts.BaseURL,
			APIVersion: opts.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Provider{client: client, cfg: cfg}, nil
}

func (p *Provider) Name() string { return "gemini" }

// Transcribe sends the audio inline with a transcription instruction.
func (p *Provider) Transcribe(ctx context.Context, req models.TranscriptionRequest) (string, error) {
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribeInstruction),
			genai.NewPartFromBytes(audio, mimeType(req.Format)),
		}, genai.RoleUser),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, contents, nil)
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return "", ai.ErrEmptyTranscript
	}
	return text, nil
}

func (p *Provider) WriteArticle(ctx context.Context, transcript string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.cfg.Model, genai.Text(ai.ArticlePrompt(transcript)), nil)
	if err != nil {
		return "", classify(err)
	}

	article := strings.TrimSpace(responseText(resp))
	if article == "" {
		return "", fmt.Errorf("%w: empty response", ai.ErrInvalidResponse)
	}
	return article, nil
}

// Illustrate returns generated images as data URIs since Imagen answers
// with raw bytes rather than hosted URLs.
func (p *Provider) Illustrate(ctx context.Context, prompt string) ([]string, error) {
	resp, err := p.client.Models.GenerateImages(ctx, p.cfg.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, classify(err)
	}

	images := make([]string, 0, len(resp.GeneratedImages))
	for _, gen := range resp.GeneratedImages {
		if gen == nil || gen.Image == nil {
			continue
		}
		switch {
		case len(gen.Image.ImageBytes) > 0:
			mime := gen.Image.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			images = append(images, "data:"+mime+";base64,"+base64.StdEncoding.EncodeToString(gen.Image.ImageBytes))
		case gen.Image.GCSURI != "":
			images = append(images, gen.Image.GCSURI)
		}
	}
	return images, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func mimeType(format string) string {
	if m, ok := audioMIMETypes[strings.ToLower(format)]; ok {
		return m
	}
	return "audio/mpeg"
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return ai.FromStatus(apiErr.Code, err)
	}
	return ai.Classify(err)
}

var _ models.AIProvider = (*Provider)(nil)
