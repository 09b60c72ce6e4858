package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        string    `db:"id,primaryKey,size:36"`
	Name      string    `db:"name,size:100"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(ctx context.Context) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	return nil
}

// CategoryWithCount is a category annotated with its live post count.
type CategoryWithCount struct {
	Category
	PostCount int64 `db:"post_count"`
}

// PostCategory links a post to a category. The pair is the primary key.
type PostCategory struct {
	PostID     string `db:"post_id,primaryKey"`
	CategoryID string `db:"category_id,primaryKey"`
}

func (PostCategory) TableName() string {
	return "post_categories"
}
