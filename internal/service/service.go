// Package service implements the content service: validated mutations of
// posts and categories, full-replace category assignment, and the typed
// projections returned to the HTTP layer.
package service

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/arllen133/blogcms/internal/errors"
	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/store"
)

// ContentService is the sole writer of posts, categories and their links.
type ContentService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*ContentService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *ContentService) {
		s.logger = logger
	}
}

// WithClock replaces time.Now as the source of createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *ContentService) {
		s.now = now
	}
}

func NewContentService(st store.Store, opts ...Option) *ContentService {
	s := &ContentService{
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp is truncated to microseconds, the finest precision every
// supported database keeps.
func (s *ContentService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// fail logs store failures and normalizes foreign errors into the domain
// taxonomy. NOT_FOUND, CONSTRAINT_VIOLATION and VALIDATION_ERROR pass
// through unchanged.
func (s *ContentService) fail(ctx context.Context, op string, err error) error {
	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound, apperrors.CodeConstraintViolation, apperrors.CodeValidation:
		return err
	case apperrors.CodeUnknown:
		err = apperrors.Wrap(apperrors.CodeStoreFailure, op+": "+err.Error(), err)
	}
	s.logger.ErrorContext(ctx, "store failure",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	return err
}

// CategoryRef is a resolved category as embedded in a post.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostView is a post with its categories resolved. Content is raw.
type PostView struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	CoverImageURL string        `json:"coverImageURL"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Categories    []CategoryRef `json:"categories"`
}

// CategoryView is a category annotated with its live post count.
type CategoryView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	PostCount int64     `json:"postCount"`
}

func newPostView(p *models.Post) *PostView {
	refs := make([]CategoryRef, 0, len(p.Categories))
	for _, c := range p.Categories {
		refs = append(refs, CategoryRef{ID: c.ID, Name: c.Name})
	}
	return &PostView{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		CoverImageURL: p.CoverImageURL,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Categories:    refs,
	}
}

func newCategoryView(c *models.CategoryWithCount) *CategoryView {
	return &CategoryView{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		PostCount: c.PostCount,
	}
}
