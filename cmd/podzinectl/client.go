package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// errNotReady is returned by result while the job is still running.
var errNotReady = errors.New("result not ready")

type ack struct {
	JobID    uuid.UUID `json:"job_id"`
	Filename string    `json:"filename"`
}

type result struct {
	Article string   `json:"article"`
	Images  []string `json:"images"`
	Failed  bool     `json:"failed"`
}

type apiError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
}

// client talks to the JSON side of the Podzine HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{
			Timeout: timeout,
			// /result redirects while the job runs; report that instead of following it.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *client) submit(ctx context.Context, path string) (ack, error) {
	f, err := os.Open(path)
	if err != nil {
		return ack{}, fmt.Errorf("open episode: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("podcast", filepath.Base(path))
	if err != nil {
		return ack{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return ack{}, fmt.Errorf("read episode: %w", err)
	}
	if err := mw.Close(); err != nil {
		return ack{}, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload", &body)
	if err != nil {
		return ack{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ack
	if err := c.do(req, http.StatusAccepted, &out); err != nil {
		return ack{}, err
	}
	return out, nil
}

func (c *client) status(ctx context.Context) (models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/status", nil)
	if err != nil {
		return models.Snapshot{}, err
	}
	var out models.Snapshot
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return models.Snapshot{}, err
	}
	return out, nil
}

func (c *client) result(ctx context.Context) (result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/result?format=json", nil)
	if err != nil {
		return result{}, err
	}
	var out result
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return result{}, err
	}
	return out, nil
}

// wait polls status every interval until the current job completes, then
// fetches its result. onPhase is called whenever the phase changes.
func (c *client) wait(ctx context.Context, interval time.Duration, onPhase func(models.Snapshot)) (result, error) {
	var last models.Phase
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := c.status(ctx)
		if err != nil {
			return result{}, err
		}
		if snap.Phase != last {
			last = snap.Phase
			if onPhase != nil {
				onPhase(snap)
			}
		}
		if snap.Complete {
			return c.result(ctx)
		}

		select {
		case <-ctx.Done():
			return result{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *client) do(req *http.Request, want int, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusSeeOther {
		return errNotReady
	}
	if resp.StatusCode != want {
		var envelope struct {
			Error apiError `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Code == "" {
			return &apiError{Status: resp.StatusCode, Code: "UNEXPECTED", Message: resp.Status}
		}
		envelope.Error.Status = resp.StatusCode
		return &envelope.Error
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
