package store

import (
	"context"

	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/orm"
)

func (s *SQLStore) ReplacePostCategories(ctx context.Context, postID string, categoryIDs []string) error {
	return s.Transaction(ctx, func(tx Store) error {
		txs := tx.(*SQLStore)
		if err := txs.CategoriesExist(ctx, categoryIDs); err != nil {
			return err
		}

		var current []string
		err := txs.links().Query().
			Where(PostCategories.PostID.Eq(postID)).
			Pluck(ctx, PostCategories.CategoryID, &current)
		if err != nil {
			return translate(err, "load post links", "post", postID)
		}

		wanted := make(map[string]struct{}, len(categoryIDs))
		for _, id := range categoryIDs {
			wanted[id] = struct{}{}
		}
		existing := make(map[string]struct{}, len(current))
		var removed []string
		for _, id := range current {
			existing[id] = struct{}{}
			if _, ok := wanted[id]; !ok {
				removed = append(removed, id)
			}
		}
		var added []*models.PostCategory
		for _, id := range categoryIDs {
			if _, ok := existing[id]; ok {
				continue
			}
			existing[id] = struct{}{}
			added = append(added, &models.PostCategory{PostID: postID, CategoryID: id})
		}

		if len(removed) > 0 {
			_, err := txs.links().
				Where(PostCategories.PostID.Eq(postID), PostCategories.CategoryID.In(removed...)).
				DeleteWhere(ctx)
			if err != nil {
				return translate(err, "unlink categories", "post", postID)
			}
		}

		// Identical links inserted by a concurrent writer are ignored.
		err = txs.links().BatchUpsert(ctx, added,
			orm.OnConflict(PostCategories.PostID.WithTable(""), PostCategories.CategoryID.WithTable("")),
			orm.DoUpdate(),
		)
		return translate(err, "link categories", "post", postID)
	})
}
