package store

import (
	"context"

	apperrors "github.com/arllen133/blogcms/internal/errors"
	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/orm"
)

func (s *SQLStore) CreateCategory(ctx context.Context, category *models.Category) error {
	return translate(s.categories().Create(ctx, category), "create category", "category", category.ID)
}

// withPostCount selects categories with the number of linked posts.
func (s *SQLStore) withPostCount() *orm.QueryBuilder[models.Category] {
	return s.categories().Query().
		Select(
			Categories.ID,
			Categories.Name,
			Categories.CreatedAt,
			Categories.UpdatedAt,
			PostCategories.PostID.Count("post_count"),
		).
		LeftJoin(PostCategorySchema{}, orm.On(Categories.ID, PostCategories.CategoryID)).
		GroupBy(Categories.ID, Categories.Name, Categories.CreatedAt, Categories.UpdatedAt)
}

func (s *SQLStore) GetCategory(ctx context.Context, id string) (*models.CategoryWithCount, error) {
	var rows []*models.CategoryWithCount
	if err := s.withPostCount().Where(Categories.ID.Eq(id)).Scan(ctx, &rows); err != nil {
		return nil, translate(err, "get category", "category", id)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("category", id)
	}
	return rows[0], nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]*models.CategoryWithCount, error) {
	rows := []*models.CategoryWithCount{}
	err := s.withPostCount().
		OrderBy(Categories.CreatedAt.Desc(), Categories.ID.Desc()).
		Scan(ctx, &rows)
	if err != nil {
		return nil, translate(err, "list categories", "", "")
	}
	return rows, nil
}

func (s *SQLStore) UpdateCategory(ctx context.Context, category *models.Category) error {
	return translate(s.categories().Update(ctx, category), "update category", "category", category.ID)
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id string) error {
	return s.Transaction(ctx, func(tx Store) error {
		txs := tx.(*SQLStore)
		if _, err := txs.links().Where(PostCategories.CategoryID.Eq(id)).DeleteWhere(ctx); err != nil {
			return translate(err, "delete category links", "category", id)
		}
		return translate(txs.categories().Delete(ctx, id), "delete category", "category", id)
	})
}

func (s *SQLStore) CategoriesExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	var found []string
	err := s.categories().Query().
		Where(Categories.ID.In(ids...)).
		Pluck(ctx, Categories.ID, &found)
	if err != nil {
		return translate(err, "check categories", "", "")
	}

	known := make(map[string]struct{}, len(found))
	for _, id := range found {
		known[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return apperrors.WithMetadata(apperrors.CodeConstraintViolation,
				"category "+id+" does not exist",
				map[string]string{"field": "categoryIds", "id": id})
		}
	}
	return nil
}
