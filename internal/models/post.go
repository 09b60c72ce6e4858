package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID            string    `db:"id,primaryKey,size:36"`
	Title         string    `db:"title,size:100"`
	Content       string    `db:"content"`
	CoverImageURL string    `db:"cover_image_url"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	// Categories is resolved through post_categories, never stored on the row.
	Categories []*Category `db:"-"`
}

func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns the id and both timestamps unless already set.
func (p *Post) BeforeCreate(ctx context.Context) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	return nil
}

// CategoryIDs returns the ids of the resolved categories.
func (p *Post) CategoryIDs() []string {
	ids := make([]string, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}
