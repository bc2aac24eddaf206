// Package pipeline turns an uploaded episode into an article: it validates
// the upload, runs transcription, article writing and illustration in order,
// and records progress through a job.Handle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/kiranshivaraju/podzine/internal/ai"
	"github.com/kiranshivaraju/podzine/internal/cache"
	"github.com/kiranshivaraju/podzine/internal/job"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// ArticleFallback replaces the article when the rewrite stage fails.
const ArticleFallback = "Error generating article."

// TranscriptCache looks up and stores transcripts by audio digest.
type TranscriptCache interface {
	GetTranscript(ctx context.Context, audioDigest string) (string, bool, error)
	SetTranscript(ctx context.Context, audioDigest, transcript string, ttl time.Duration) error
}

var _ TranscriptCache = (*cache.RedisCache)(nil)

// Archive receives every completed article.
type Archive interface {
	CreateArticle(ctx context.Context, a *models.ArchivedArticle) error
}

// RunnerConfig carries the runner's optional collaborators. Nil Cache or
// Archive disables that feature.
type RunnerConfig struct {
	UploadDir string
	Timeout   time.Duration
	Cache     TranscriptCache
	CacheTTL  time.Duration
	Archive   Archive
}

// Runner executes one job end to end.
type Runner struct {
	provider models.AIProvider
	cfg      RunnerConfig
}

func NewRunner(provider models.AIProvider, cfg RunnerConfig) *Runner {
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Runner{provider: provider, cfg: cfg}
}

// Run drives the job owned by h to completion. It never returns an error:
// every failure ends up in the job's phase. Safe to call in its own goroutine.
func (r *Runner) Run(h *job.Handle, audio []byte, filename string) {
	ctx := context.Background()
	log := slog.With("job_id", h.ID(), "filename", filename, "provider", r.provider.Name())

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in pipeline", "error", rec, "stack", string(debug.Stack()))
			h.Fail(fmt.Sprintf("internal error: %v", rec))
		}
	}()

	ext, err := Extension(filename)
	if err != nil {
		log.Warn("rejecting upload", "error", err)
		h.Fail(err.Error())
		return
	}

	audioPath, err := r.writeTemp(audio, ext)
	if err != nil {
		log.Error("saving upload", "error", err)
		h.Fail("could not save upload")
		return
	}
	defer removeTemp(log, audioPath)

	h.SetPhase(models.PhaseTranscribing)
	transcript := r.transcribe(ctx, log, audio, models.TranscriptionRequest{AudioPath: audioPath, Format: ext})
	if transcript.Outcome == Fatal {
		log.Error("transcription failed", "stage", "transcribe", "error", transcript.Err)
		h.Fail(fmt.Sprintf("transcription failed: %v", transcript.Err))
		return
	}

	h.SetPhase(models.PhaseWriting)
	article := r.writeArticle(ctx, transcript.Value)
	if article.Outcome == Degraded {
		log.Warn("article generation failed", "stage", "write_article", "error", article.Err)
	}

	h.SetPhase(models.PhaseIllustrating)
	images := r.illustrate(ctx, transcript.Value)
	if images.Outcome == Degraded {
		log.Warn("illustration failed", "stage", "illustrate", "error", images.Err)
	}

	result := models.Result{Article: article.Value, Images: images.Value}
	if !h.Complete(result) {
		log.Info("job superseded before completion, result discarded")
		return
	}
	log.Info("job complete", "article_outcome", article.Outcome.String(), "image_outcome", images.Outcome.String(), "images", len(images.Value))

	r.archive(ctx, log, h, filename, transcript.Value, result)
}

func (r *Runner) transcribe(ctx context.Context, log *slog.Logger, audio []byte, req models.TranscriptionRequest) StageResult[string] {
	var digest string
	if r.cfg.Cache != nil {
		digest = cache.AudioDigest(audio)
		text, found, err := r.cfg.Cache.GetTranscript(ctx, digest)
		if err != nil {
			log.Warn("transcript cache lookup failed", "error", err)
		}
		if found {
			log.Debug("transcript cache hit", "digest", digest)
			return stageOK(text)
		}
	}

	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	text, err := r.provider.Transcribe(stageCtx, req)
	if err != nil {
		return stageFatal[string](ai.Classify(err))
	}
	if text == "" {
		return stageFatal[string](ai.ErrEmptyTranscript)
	}

	if r.cfg.Cache != nil {
		if err := r.cfg.Cache.SetTranscript(ctx, digest, text, r.cfg.CacheTTL); err != nil {
			log.Warn("transcript cache write failed", "error", err)
		}
	}
	return stageOK(text)
}

func (r *Runner) writeArticle(ctx context.Context, transcript string) StageResult[string] {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	article, err := r.provider.WriteArticle(stageCtx, transcript)
	if err != nil {
		return stageDegraded(ArticleFallback, ai.Classify(err))
	}
	if article == "" {
		return stageDegraded(ArticleFallback, fmt.Errorf("%w: empty article", ai.ErrInvalidResponse))
	}
	return stageOK(article)
}

func (r *Runner) illustrate(ctx context.Context, transcript string) StageResult[[]string] {
	stageCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	images, err := r.provider.Illustrate(stageCtx, ai.ImagePrompt(transcript))
	if err != nil {
		return stageDegraded([]string{}, ai.Classify(err))
	}
	if images == nil {
		images = []string{}
	}
	return stageOK(images)
}

func (r *Runner) archive(ctx context.Context, log *slog.Logger, h *job.Handle, filename, transcript string, result models.Result) {
	if r.cfg.Archive == nil {
		return
	}

	archiveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := r.cfg.Archive.CreateArticle(archiveCtx, &models.ArchivedArticle{
		ID:         h.ID(),
		Filename:   filename,
		Provider:   r.provider.Name(),
		Transcript: transcript,
		Article:    result.Article,
		Images:     result.Images,
		Status:     models.PhaseComplete,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Warn("archiving article failed", "error", err)
	}
}

// writeTemp stores the upload under UploadDir keeping the original extension,
// which the transcription API uses to detect the codec.
func (r *Runner) writeTemp(audio []byte, ext string) (string, error) {
	f, err := os.CreateTemp(r.cfg.UploadDir, "podcast-*."+ext)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(audio); err != nil {
		_ = f.Close()
		removeTemp(slog.Default(), f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		removeTemp(slog.Default(), f.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return f.Name(), nil
}

func removeTemp(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("removing temp audio file", "path", path, "error", err)
	}
}
