package handler

import (
	"html/template"
	"net/http"

	"github.com/kiranshivaraju/podzine/internal/api/response"
	"github.com/kiranshivaraju/podzine/internal/web"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// Poller reports the phase of the current job.
type Poller interface {
	Poll() models.Snapshot
}

// ResultFetcher returns the finished result of the current job.
type ResultFetcher interface {
	FetchResult() (models.Result, bool)
}

// JobReader returns the full record of the current job.
type JobReader interface {
	CurrentJob() models.Job
}

// NewStatusHandler returns an http.HandlerFunc for GET /status.
func NewStatusHandler(svc Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, svc.Poll())
	}
}

// NewJobHandler returns an http.HandlerFunc for GET /api/v1/job.
func NewJobHandler(svc JobReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, svc.CurrentJob())
	}
}

// NewResultHandler returns an http.HandlerFunc for GET /result. Until the job
// is complete the client is sent back to the upload page.
func NewResultHandler(svc ResultFetcher, pages *web.Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, ok := svc.FetchResult()
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		if response.WantsJSON(r) {
			response.JSON(w, res)
			return
		}

		article := template.HTML(res.Article)
		if res.Failed {
			article = template.HTML(template.HTMLEscapeString(res.Article))
		}
		pages.Render(w, http.StatusOK, web.PageResult, web.ResultData{
			Article: article,
			Images:  res.Images,
			Failed:  res.Failed,
		})
	}
}
