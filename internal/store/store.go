package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/podzine/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the article archive. Finished jobs are appended; the live job
// never reads from here.
type Store interface {
	Ping(ctx context.Context) error

	CreateArticle(ctx context.Context, a *models.ArchivedArticle) error
	GetArticle(ctx context.Context, id uuid.UUID) (*models.ArchivedArticle, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]*models.ArchivedArticle, int, error)
}

type ArticleFilter struct {
	Provider string
	Page     int
	Limit    int
}
