// Package store persists posts, categories and their many-to-many
// relation on top of the orm package.
package store

import (
	"context"
	"errors"

	apperrors "github.com/arllen133/blogcms/internal/errors"
	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/orm"
)

// Store is the content store consumed by the service layer.
//
// Lookups of unknown ids fail with a NOT_FOUND error. Writes that reference
// a missing category, or that the database rejects on a constraint, fail
// with CONSTRAINT_VIOLATION. Every other failure is STORE_FAILURE.
type Store interface {
	CreatePost(ctx context.Context, post *models.Post) error
	// GetPost returns the post with its categories resolved.
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns all posts newest first, categories resolved.
	ListPosts(ctx context.Context) ([]*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	// DeletePost removes the post's join rows and then the post.
	DeletePost(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.CategoryWithCount, error)
	// ListCategories returns all categories newest first with live post counts.
	ListCategories(ctx context.Context) ([]*models.CategoryWithCount, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	// DeleteCategory removes the category's join rows and then the
	// category. Linked posts are kept.
	DeleteCategory(ctx context.Context, id string) error

	// ReplacePostCategories makes categoryIDs the post's exact category set.
	// Only missing links are inserted and stale ones deleted. Unknown
	// category ids fail with CONSTRAINT_VIOLATION before any link changes.
	ReplacePostCategories(ctx context.Context, postID string, categoryIDs []string) error
	// CategoriesExist fails with CONSTRAINT_VIOLATION naming the first
	// unknown id.
	CategoriesExist(ctx context.Context, ids []string) error

	// Transaction runs fn with a Store bound to one database transaction.
	// fn's error rolls everything back and is returned unchanged.
	Transaction(ctx context.Context, fn func(Store) error) error
}

// SQLStore implements Store over an orm.Session.
type SQLStore struct {
	session *orm.Session
}

var _ Store = (*SQLStore)(nil)

func New(session *orm.Session) *SQLStore {
	return &SQLStore{session: session}
}

func (s *SQLStore) Transaction(ctx context.Context, fn func(Store) error) error {
	err := s.session.Transaction(ctx, func(tx *orm.Session) error {
		return fn(&SQLStore{session: tx})
	})
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return translate(err, "transaction", "", "")
}

func (s *SQLStore) posts() *orm.Repository[models.Post] {
	return orm.NewRepository[models.Post](s.session)
}

func (s *SQLStore) categories() *orm.Repository[models.Category] {
	return orm.NewRepository[models.Category](s.session)
}

func (s *SQLStore) links() *orm.Repository[models.PostCategory] {
	return orm.NewRepository[models.PostCategory](s.session)
}

// translate maps orm errors onto the domain taxonomy. op names the failed
// operation for STORE_FAILURE messages; entity and id describe NOT_FOUND.
func translate(err error, op, entity, id string) error {
	var appErr *apperrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, orm.ErrNotFound):
		notFound := apperrors.NotFound(entity, id)
		notFound.Cause = err
		return notFound
	case errors.Is(err, orm.ErrConstraint):
		return &apperrors.Error{
			Code:     apperrors.CodeConstraintViolation,
			Message:  op + " violates a data constraint",
			Metadata: map[string]string{"operation": op},
			Cause:    err,
		}
	default:
		return apperrors.Wrap(apperrors.CodeStoreFailure, op+": "+err.Error(), err)
	}
}
