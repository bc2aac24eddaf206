package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/podzine/internal/ai"
	"github.com/kiranshivaraju/podzine/internal/ai/mock"
	"github.com/kiranshivaraju/podzine/internal/job"
	"github.com/kiranshivaraju/podzine/internal/pipeline"
	"github.com/kiranshivaraju/podzine/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// phaseRecorder collects every phase the store accepts.
type phaseRecorder struct {
	mu     sync.Mutex
	phases []models.Phase
}

func (r *phaseRecorder) observe(s models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, s.Phase)
}

func (r *phaseRecorder) seen() []models.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Phase(nil), r.phases...)
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]string
	gets    int
	sets    int
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]string{}}
}

func (c *memCache) GetTranscript(_ context.Context, digest string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.entries[digest]
	return v, ok, nil
}

func (c *memCache) SetTranscript(_ context.Context, digest, transcript string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[digest] = transcript
	return nil
}

type memArchive struct {
	mu       sync.Mutex
	articles []models.ArchivedArticle
	err      error
}

func (a *memArchive) CreateArticle(_ context.Context, art *models.ArchivedArticle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.articles = append(a.articles, *art)
	return nil
}

func newRunner(t *testing.T, p models.AIProvider, cfg pipeline.RunnerConfig) (*pipeline.Runner, string) {
	t.Helper()
	if cfg.UploadDir == "" {
		cfg.UploadDir = t.TempDir()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	return pipeline.NewRunner(p, cfg), cfg.UploadDir
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp audio files must be removed")
}

func TestRun_HappyPath(t *testing.T) {
	rec := &phaseRecorder{}
	store := job.NewStore(job.WithObserver(rec.observe))

	var gotReq models.TranscriptionRequest
	var fileExisted bool
	var gotPrompt string
	p := mock.NewMockProvider()
	p.TranscribeFunc = func(_ context.Context, req models.TranscriptionRequest) (string, error) {
		gotReq = req
		_, err := os.Stat(req.AudioPath)
		fileExisted = err == nil
		return "Today we explore the history of jazz in New Orleans and beyond.", nil
	}
	p.IllustrateFunc = func(_ context.Context, prompt string) ([]string, error) {
		gotPrompt = prompt
		return []string{"https://images.example/1.png"}, nil
	}

	runner, dir := newRunner(t, p, pipeline.RunnerConfig{})
	h := store.Reset("Episode.MP3")
	runner.Run(h, []byte("audio"), "Episode.MP3")

	assert.Equal(t, []models.Phase{
		models.PhaseStarting,
		models.PhaseTranscribing,
		models.PhaseWriting,
		models.PhaseIllustrating,
		models.PhaseComplete,
	}, rec.seen())

	res, ok := store.Result()
	require.True(t, ok)
	assert.Equal(t, "<h1>Mock Article</h1><p>Mock article body for testing.</p>", res.Article)
	assert.Equal(t, []string{"https://images.example/1.png"}, res.Images)

	assert.True(t, fileExisted)
	assert.Equal(t, "mp3", gotReq.Format)
	assert.Equal(t, dir, filepath.Dir(gotReq.AudioPath))
	assert.True(t, strings.HasSuffix(gotReq.AudioPath, ".mp3"))
	assert.Equal(t, ai.ImagePrompt("Today we explore the history of jazz in New Orleans and beyond."), gotPrompt)
	assert.Equal(t, "Generate a detailed illustration or photograph relevant to the theme: Today we explore the history of jazz in New Orlean", gotPrompt)

	assertDirEmpty(t, dir)
}

func TestRun_TranscriptionFailureIsFatal(t *testing.T) {
	rec := &phaseRecorder{}
	store := job.NewStore(job.WithObserver(rec.observe))

	var laterCalls int
	p := mock.NewMockProvider()
	p.TranscribeFunc = func(_ context.Context, _ models.TranscriptionRequest) (string, error) {
		return "", ai.ErrProviderUnavailable
	}
	p.WriteArticleFunc = func(_ context.Context, _ string) (string, error) {
		laterCalls++
		return "", nil
	}
	p.IllustrateFunc = func(_ context.Context, _ string) ([]string, error) {
		laterCalls++
		return nil, nil
	}

	runner, dir := newRunner(t, p, pipeline.RunnerConfig{})
	h := store.Reset("episode.mp3")
	runner.Run(h, []byte("audio"), "episode.mp3")

	snap := store.Snapshot()
	assert.True(t, snap.Complete)
	assert.True(t, snap.Phase.IsError())
	assert.Contains(t, string(snap.Phase), "transcription failed")

	res, ok := store.Result()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(res.Article, "Error: "))
	assert.Empty(t, res.Images)
	assert.Zero(t, laterCalls)

	assert.Equal(t, []models.Phase{models.PhaseStarting, models.PhaseTranscribing, snap.Phase}, rec.seen())
	assertDirEmpty(t, dir)
}

func TestRun_EmptyTranscriptIsFatal(t *testing.T) {
	store := job.NewStore()
	p := mock.NewMockProvider()
	p.TranscribeFunc = func(_ context.Context, _ models.TranscriptionRequest) (string, error) {
		return "", nil
	}

	runner, _ := newRunner(t, p, pipeline.RunnerConfig{})
	runner.Run(store.Reset("episode.wav"), []byte("audio"), "episode.wav")

	snap := store.Snapshot()
	assert.True(t, snap.Complete)
	assert.True(t, snap.Phase.IsError())
	assert.Contains(t, string(snap.Phase), ai.ErrEmptyTranscript.Error())
}

func TestRun_ArticleFailureIsDegraded(t *testing.T) {
	store := job.NewStore()
	p := mock.NewMockProvider()
	p.WriteArticleFunc = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("model overloaded")
	}

	runner, _ := newRunner(t, p, pipeline.RunnerConfig{})
	runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")

	snap := store.Snapshot()
	assert.Equal(t, models.PhaseComplete, snap.Phase)
	assert.True(t, snap.Complete)

	res, ok := store.Result()
	require.True(t, ok)
	assert.Equal(t, pipeline.ArticleFallback, res.Article)
	assert.Equal(t, "Error generating article.", res.Article)
	assert.Equal(t, []string{"https://images.example/mock.png"}, res.Images)
}

func TestRun_IllustrationFailureIsDegraded(t *testing.T) {
	store := job.NewStore()
	p := mock.NewMockProvider()
	p.IllustrateFunc = func(_ context.Context, _ string) ([]string, error) {
		return nil, ai.ErrRequestRejected
	}

	runner, _ := newRunner(t, p, pipeline.RunnerConfig{})
	runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")

	assert.Equal(t, models.PhaseComplete, store.Snapshot().Phase)
	res, ok := store.Result()
	require.True(t, ok)
	assert.Contains(t, res.Article, "<h1>")
	assert.NotNil(t, res.Images)
	assert.Empty(t, res.Images)
}

func TestRun_UnsupportedExtensionFailsJob(t *testing.T) {
	store := job.NewStore()
	p := mock.NewFailingProvider(errors.New("must not be called"))

	runner, dir := newRunner(t, p, pipeline.RunnerConfig{})
	runner.Run(store.Reset("episode.txt"), []byte("audio"), "episode.txt")

	snap := store.Snapshot()
	assert.True(t, snap.Complete)
	assert.True(t, snap.Phase.IsError())
	assert.Contains(t, string(snap.Phase), "unsupported audio format")
	assertDirEmpty(t, dir)
}

func TestRun_StageTimeout(t *testing.T) {
	store := job.NewStore()
	runner, _ := newRunner(t, mock.NewTimeoutProvider(), pipeline.RunnerConfig{Timeout: 50 * time.Millisecond})

	start := time.Now()
	runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")

	assert.Less(t, time.Since(start), 5*time.Second)
	snap := store.Snapshot()
	assert.True(t, snap.Complete)
	assert.Contains(t, string(snap.Phase), ai.ErrInferenceTimeout.Error())
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	store := job.NewStore()
	p := mock.NewMockProvider()
	p.WriteArticleFunc = func(_ context.Context, _ string) (string, error) {
		panic("nil map write")
	}

	runner, dir := newRunner(t, p, pipeline.RunnerConfig{})
	assert.NotPanics(t, func() {
		runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")
	})

	snap := store.Snapshot()
	assert.True(t, snap.Complete)
	assert.Equal(t, models.Phase("Error: internal error: nil map write"), snap.Phase)
	assertDirEmpty(t, dir)
}

func TestRun_TranscriptCacheHitSkipsProvider(t *testing.T) {
	store := job.NewStore()
	c := newMemCache()

	var transcribeCalls int
	p := mock.NewMockProvider()
	p.TranscribeFunc = func(_ context.Context, _ models.TranscriptionRequest) (string, error) {
		transcribeCalls++
		return "fresh transcript", nil
	}
	var articleInput string
	p.WriteArticleFunc = func(_ context.Context, transcript string) (string, error) {
		articleInput = transcript
		return "<h1>ok</h1>", nil
	}

	runner, _ := newRunner(t, p, pipeline.RunnerConfig{Cache: c, CacheTTL: time.Hour})

	runner.Run(store.Reset("a.mp3"), []byte("same audio"), "a.mp3")
	runner.Run(store.Reset("b.mp3"), []byte("same audio"), "b.mp3")

	assert.Equal(t, 1, transcribeCalls)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, 2, c.gets)
	assert.Equal(t, "fresh transcript", articleInput)
	assert.Equal(t, models.PhaseComplete, store.Snapshot().Phase)
}

func TestRun_TranscriptCacheErrorFallsBackToProvider(t *testing.T) {
	store := job.NewStore()
	c := newMemCache()
	c.getErr = errors.New("redis down")

	var transcribeCalls int
	p := mock.NewMockProvider()
	p.TranscribeFunc = func(_ context.Context, _ models.TranscriptionRequest) (string, error) {
		transcribeCalls++
		return "transcript", nil
	}

	runner, _ := newRunner(t, p, pipeline.RunnerConfig{Cache: c})
	runner.Run(store.Reset("a.mp3"), []byte("audio"), "a.mp3")

	assert.Equal(t, 1, transcribeCalls)
	assert.Equal(t, models.PhaseComplete, store.Snapshot().Phase)
}

func TestRun_ArchivesCompletedArticle(t *testing.T) {
	store := job.NewStore()
	archive := &memArchive{}

	runner, _ := newRunner(t, mock.NewMockProvider(), pipeline.RunnerConfig{Archive: archive})
	h := store.Reset("episode.mp3")
	runner.Run(h, []byte("audio"), "episode.mp3")

	require.Len(t, archive.articles, 1)
	got := archive.articles[0]
	assert.Equal(t, h.ID(), got.ID)
	assert.Equal(t, "episode.mp3", got.Filename)
	assert.Equal(t, "mock", got.Provider)
	assert.Contains(t, got.Transcript, "jazz")
	assert.Contains(t, got.Article, "<h1>")
	assert.Equal(t, []string{"https://images.example/mock.png"}, got.Images)
	assert.Equal(t, models.PhaseComplete, got.Status)
}

func TestRun_ArchiveFailureDoesNotAffectResult(t *testing.T) {
	store := job.NewStore()
	archive := &memArchive{err: errors.New("db down")}

	runner, _ := newRunner(t, mock.NewMockProvider(), pipeline.RunnerConfig{Archive: archive})
	runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")

	assert.Equal(t, models.PhaseComplete, store.Snapshot().Phase)
	res, ok := store.Result()
	require.True(t, ok)
	assert.Contains(t, res.Article, "<h1>")
}

func TestRun_FailedJobIsNotArchived(t *testing.T) {
	store := job.NewStore()
	archive := &memArchive{}

	runner, _ := newRunner(t, mock.NewFailingProvider(ai.ErrProviderUnavailable), pipeline.RunnerConfig{Archive: archive})
	runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")

	assert.True(t, store.Snapshot().Phase.IsError())
	assert.Empty(t, archive.articles)
}

func TestRun_SupersededJobDoesNotTouchStore(t *testing.T) {
	store := job.NewStore()
	archive := &memArchive{}

	runner, _ := newRunner(t, mock.NewMockProvider(), pipeline.RunnerConfig{Archive: archive})
	stale := store.Reset("old.mp3")
	current := store.Reset("new.mp3")

	runner.Run(stale, []byte("audio"), "old.mp3")

	snap := store.Snapshot()
	assert.Equal(t, current.ID(), snap.JobID)
	assert.Equal(t, models.PhaseStarting, snap.Phase)
	assert.False(t, snap.Complete)
	assert.Empty(t, archive.articles)
}

func TestRun_TempCleanupFailureIsOnlyLogged(t *testing.T) {
	store := job.NewStore()

	var blocked string
	p := mock.NewMockProvider()
	inner := p.TranscribeFunc
	p.TranscribeFunc = func(ctx context.Context, req models.TranscriptionRequest) (string, error) {
		// Replace the temp file with a non-empty directory so removing it fails.
		blocked = req.AudioPath
		require.NoError(t, os.Remove(req.AudioPath))
		require.NoError(t, os.Mkdir(req.AudioPath, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(req.AudioPath, "keep"), []byte("x"), 0o644))
		return inner(ctx, req)
	}

	runner, _ := newRunner(t, p, pipeline.RunnerConfig{})
	runner.Run(store.Reset("episode.mp3"), []byte("audio"), "episode.mp3")

	snap := store.Snapshot()
	assert.True(t, snap.Complete)
	assert.Equal(t, models.PhaseComplete, snap.Phase)

	res, ok := store.Result()
	require.True(t, ok)
	assert.False(t, res.Failed)
	assert.Equal(t, "<h1>Mock Article</h1><p>Mock article body for testing.</p>", res.Article)
	assert.Equal(t, []string{"https://images.example/mock.png"}, res.Images)

	info, err := os.Stat(blocked)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
