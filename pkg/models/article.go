package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedArticle is a finished job kept in the optional article archive.
type ArchivedArticle struct {
	ID         uuid.UUID `db:"id"         json:"id"`
	Filename   string    `db:"filename"   json:"filename"`
	Provider   string    `db:"provider"   json:"provider"`
	Transcript string    `db:"transcript" json:"transcript"`
	Article    string    `db:"article"    json:"article"`
	Images     []string  `db:"images"     json:"images"`
	Status     Phase     `db:"status"     json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
