package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/podzine/internal/api/response"
	"github.com/kiranshivaraju/podzine/internal/pipeline"
	"github.com/kiranshivaraju/podzine/internal/web"
)

// UploadField is the multipart field carrying the audio file.
const UploadField = "podcast"

// Submitter defines the interface the upload handler depends on.
type Submitter interface {
	Submit(ctx context.Context, audio []byte, filename string) (pipeline.Ack, error)
}

// NewIndexHandler returns an http.HandlerFunc for GET /.
func NewIndexHandler(pages *web.Pages, maxUploadBytes int64) http.HandlerFunc {
	formats := pipeline.SupportedFormats()
	accept := make([]string, len(formats))
	for i, f := range formats {
		accept[i] = "." + f
	}
	data := web.IndexData{
		Accept:  strings.Join(accept, ","),
		Formats: formats,
		MaxMB:   maxUploadBytes >> 20,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		pages.Render(w, http.StatusOK, web.PageIndex, data)
	}
}

// NewUploadHandler returns an http.HandlerFunc for POST /upload.
func NewUploadHandler(svc Submitter, pages *web.Pages, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile(UploadField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				response.Error(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
					"Uploaded file exceeds the size limit", map[string]int64{"max_bytes": maxUploadBytes})
			case errors.Is(err, http.ErrMissingFile) && emptyFilePart(r):
				response.Error(w, http.StatusBadRequest, "NO_FILENAME", "No selected file", nil)
			default:
				response.Error(w, http.StatusBadRequest, "NO_FILE", "No file part", nil)
			}
			return
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
					"Uploaded file exceeds the size limit", map[string]int64{"max_bytes": maxUploadBytes})
				return
			}
			slog.Warn("reading upload", "error", err)
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Could not read uploaded file", nil)
			return
		}

		ack, err := svc.Submit(r.Context(), audio, header.Filename)
		if err != nil {
			switch {
			case errors.Is(err, pipeline.ErrMissingFilename):
				response.Error(w, http.StatusBadRequest, "NO_FILENAME", "No selected file", nil)
			case errors.Is(err, pipeline.ErrUnsupportedFormat):
				response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT",
					"Unsupported audio format", map[string][]string{"supported": pipeline.SupportedFormats()})
			default:
				slog.Error("submitting job", "error", err)
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		if response.WantsJSON(r) {
			response.Accepted(w, ack)
			return
		}
		pages.Render(w, http.StatusAccepted, web.PageProcessing, web.ProcessingData{
			JobID:    ack.JobID.String(),
			Filename: ack.Filename,
		})
	}
}

// emptyFilePart reports whether the form carried the upload field without a
// filename, which is what browsers send when no file was chosen.
func emptyFilePart(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value[UploadField]
	return ok
}
