package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/podzine/internal/api/response"
	"github.com/kiranshivaraju/podzine/internal/store"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

// ArticleReader is the read side of the article archive.
type ArticleReader interface {
	GetArticle(ctx context.Context, id uuid.UUID) (*models.ArchivedArticle, error)
	ListArticles(ctx context.Context, filter store.ArticleFilter) ([]*models.ArchivedArticle, int, error)
}

// NewListArticlesHandler returns an http.HandlerFunc for GET /api/v1/articles.
func NewListArticlesHandler(archive ArticleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		page, err := queryInt(q.Get("page"), 1)
		if err != nil || page < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer", nil)
			return
		}
		limit, err := queryInt(q.Get("limit"), 20)
		if err != nil || limit < 1 || limit > 100 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be between 1 and 100", nil)
			return
		}

		articles, total, err := archive.ListArticles(r.Context(), store.ArticleFilter{
			Provider: q.Get("provider"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			slog.Error("listing articles", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.Collection(w, articles, response.NewPaginationMeta(page, limit, total))
	}
}

// NewGetArticleHandler returns an http.HandlerFunc for GET /api/v1/articles/{articleID}.
func NewGetArticleHandler(archive ArticleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "articleID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_ID", "articleID must be a UUID", nil)
			return
		}

		article, err := archive.GetArticle(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "Article not found", nil)
				return
			}
			slog.Error("getting article", "article_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, article)
	}
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
