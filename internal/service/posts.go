package service

import (
	"context"

	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/store"
)

// CreatePost validates in and writes the post and its category links in
// one transaction. Unknown category ids fail with CONSTRAINT_VIOLATION.
func (s *ContentService) CreatePost(ctx context.Context, in PostInput) (*PostView, error) {
	fields, err := normalizePost(in)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	post := &models.Post{
		Title:         fields.Title,
		Content:       fields.Content,
		CoverImageURL: fields.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created *models.Post
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreatePost(ctx, post); err != nil {
			return err
		}
		if err := tx.ReplacePostCategories(ctx, post.ID, fields.CategoryIDs); err != nil {
			return err
		}
		created, err = tx.GetPost(ctx, post.ID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "create post", err)
	}

	s.logger.InfoContext(ctx, "post created", "post_id", created.ID, "categories", len(created.Categories))
	return newPostView(created), nil
}

// UpdatePost overwrites the post's fields and replaces its category set
// with in.CategoryIDs. createdAt is preserved, updatedAt refreshed.
func (s *ContentService) UpdatePost(ctx context.Context, id string, in PostInput) (*PostView, error) {
	fields, err := normalizePost(in)
	if err != nil {
		return nil, err
	}

	var updated *models.Post
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		post, err := tx.GetPost(ctx, id)
		if err != nil {
			return err
		}

		post.Title = fields.Title
		post.Content = fields.Content
		post.CoverImageURL = fields.CoverImageURL
		post.UpdatedAt = s.timestamp()
		if err := tx.UpdatePost(ctx, post); err != nil {
			return err
		}
		if err := tx.ReplacePostCategories(ctx, id, fields.CategoryIDs); err != nil {
			return err
		}
		updated, err = tx.GetPost(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "update post", err)
	}

	s.logger.InfoContext(ctx, "post updated", "post_id", id, "categories", len(updated.Categories))
	return newPostView(updated), nil
}

// DeletePost removes the post and its category links. A second call
// reports NOT_FOUND.
func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return s.fail(ctx, "delete post", err)
	}
	s.logger.InfoContext(ctx, "post deleted", "post_id", id)
	return nil
}

func (s *ContentService) GetPost(ctx context.Context, id string) (*PostView, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get post", err)
	}
	return newPostView(post), nil
}

// ListPosts returns every post newest first.
func (s *ContentService) ListPosts(ctx context.Context) ([]*PostView, error) {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list posts", err)
	}

	views := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p))
	}
	return views, nil
}
