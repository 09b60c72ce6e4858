package service

import (
	"context"

	apperrors "github.com/arllen133/blogcms/internal/errors"
	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/store"
)

func (s *ContentService) CreateCategory(ctx context.Context, name string) (*CategoryView, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	category := &models.Category{Name: name, CreatedAt: now, UpdatedAt: now}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := ensureUniqueName(ctx, tx, "", name); err != nil {
			return err
		}
		return tx.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, s.fail(ctx, "create category", err)
	}

	s.logger.InfoContext(ctx, "category created", "category_id", category.ID)
	return newCategoryView(&models.CategoryWithCount{Category: *category}), nil
}

func (s *ContentService) UpdateCategory(ctx context.Context, id, name string) (*CategoryView, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	var updated *models.CategoryWithCount
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureUniqueName(ctx, tx, id, name); err != nil {
			return err
		}

		category := current.Category
		category.Name = name
		category.UpdatedAt = s.timestamp()
		if err := tx.UpdateCategory(ctx, &category); err != nil {
			return err
		}
		updated, err = tx.GetCategory(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "update category", err)
	}

	s.logger.InfoContext(ctx, "category updated", "category_id", id)
	return newCategoryView(updated), nil
}

// DeleteCategory removes the category and its links. Posts that carried
// it are kept.
func (s *ContentService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return s.fail(ctx, "delete category", err)
	}
	s.logger.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}

func (s *ContentService) GetCategory(ctx context.Context, id string) (*CategoryView, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get category", err)
	}
	return newCategoryView(category), nil
}

// ListCategories returns every category newest first with post counts.
func (s *ContentService) ListCategories(ctx context.Context) ([]*CategoryView, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list categories", err)
	}

	views := make([]*CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, newCategoryView(c))
	}
	return views, nil
}

// ensureUniqueName rejects name when another category, other than
// exceptID, has the same case-folded name.
func ensureUniqueName(ctx context.Context, tx store.Store, exceptID, name string) error {
	existing, err := tx.ListCategories(ctx)
	if err != nil {
		return err
	}

	key := foldName(name)
	for _, c := range existing {
		if c.ID != exceptID && foldName(c.Name) == key {
			return apperrors.WithMetadata(apperrors.CodeConstraintViolation,
				"category name "+name+" is already in use",
				map[string]string{"field": "name", "id": c.ID})
		}
	}
	return nil
}
