package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Title     string
	Content   string
	AuthorID  uuid.UUID

	// Username of the author, filled by the repository on reads
	AuthorName string
}
