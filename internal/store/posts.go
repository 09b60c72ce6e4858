package store

import (
	"context"

	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/orm"
)

func (s *SQLStore) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.posts().Create(ctx, post), "create post", "post", post.ID)
}

func (s *SQLStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts().Query().
		Where(Posts.ID.Eq(id)).
		WithPreload(orm.Preload(postCategories)).
		Take(ctx)
	if err != nil {
		return nil, translate(err, "get post", "post", id)
	}
	return post, nil
}

func (s *SQLStore) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts().Query().
		OrderBy(Posts.CreatedAt.Desc(), Posts.ID.Desc()).
		WithPreload(orm.Preload(postCategories)).
		Find(ctx)
	if err != nil {
		return nil, translate(err, "list posts", "", "")
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *SQLStore) UpdatePost(ctx context.Context, post *models.Post) error {
	return translate(s.posts().Update(ctx, post), "update post", "post", post.ID)
}

func (s *SQLStore) DeletePost(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(tx Store) error {
		txs := tx.(*SQLStore)
		if _, err := txs.links().Where(PostCategories.PostID.Eq(id)).DeleteWhere(ctx); err != nil {
			return translate(err, "delete post links", "post", id)
		}
		return translate(txs.posts().Delete(ctx, id), "delete post", "post", id)
	})
}
