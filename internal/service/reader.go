package service

import (
	"context"
	"time"

	"github.com/arllen133/blogcms/internal/sanitize"
)

// DefaultExcerptLength bounds PostSummary content, in runes.
const DefaultExcerptLength = 120

// Reader is the read-only projection served to anonymous readers. Stored
// content is sanitized on the way out: excerpt mode for lists, article
// mode for single posts.
type Reader struct {
	content       *ContentService
	sanitizer     *sanitize.Sanitizer
	excerptLength int
}

// NewReader returns a Reader. A non-positive excerptLength selects
// DefaultExcerptLength.
func NewReader(content *ContentService, sanitizer *sanitize.Sanitizer, excerptLength int) *Reader {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	return &Reader{
		content:       content,
		sanitizer:     sanitizer,
		excerptLength: excerptLength,
	}
}

// PostSummary is a list entry. Content is an escaped plain-text excerpt.
type PostSummary struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	CoverImageURL string        `json:"coverImageURL"`
	CreatedAt     time.Time     `json:"createdAt"`
	Categories    []CategoryRef `json:"categories"`
}

// PostDetail is a full post. Content holds article-mode HTML.
type PostDetail struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	CoverImageURL string        `json:"coverImageURL"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Categories    []CategoryRef `json:"categories"`
}

func (r *Reader) ListPosts(ctx context.Context) ([]*PostSummary, error) {
	posts, err := r.content.ListPosts(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, &PostSummary{
			ID:            p.ID,
			Title:         p.Title,
			Content:       r.sanitizer.Excerpt(p.Content, r.excerptLength),
			CoverImageURL: p.CoverImageURL,
			CreatedAt:     p.CreatedAt,
			Categories:    p.Categories,
		})
	}
	return summaries, nil
}

func (r *Reader) GetPost(ctx context.Context, id string) (*PostDetail, error) {
	p, err := r.content.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostDetail{
		ID:            p.ID,
		Title:         p.Title,
		Content:       r.sanitizer.Article(p.Content),
		CoverImageURL: p.CoverImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Categories:    p.Categories,
	}, nil
}

func (r *Reader) ListCategories(ctx context.Context) ([]*CategoryView, error) {
	return r.content.ListCategories(ctx)
}
