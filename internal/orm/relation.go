// This file implements relation preloading for many-to-many associations
// stored in a join table.
//
// Preloading runs two extra queries per relation, never one per parent:
//  1. Load join rows whose parent column is IN the parent keys
//  2. Load targets whose key is IN the referenced child keys
//
// Usage example:
//
//	posts, err := orm.Query[models.Post](session).
//	    WithPreload(orm.Preload(orm.ManyToMany[models.Post, models.PostCategory, models.Category, string]{
//	        ParentColumn: store.PostCategories.PostID.Column(),
//	        ChildColumn:  store.PostCategories.CategoryID.Column(),
//	        TargetKey:    store.Categories.ID.Column(),
//	        LocalKey:     func(p *models.Post) string { return p.ID },
//	        Setter:       func(p *models.Post, cs []*models.Category) { p.Categories = cs },
//	    })).
//	    Find(ctx)
package orm

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/arllen133/blogcms/internal/orm/clause"
)

// ManyToMany describes parent P linked to targets C through join model J.
// K is the key type shared by parent and target primary keys.
type ManyToMany[P, J, C any, K comparable] struct {
	// ParentColumn is the join table column referencing the parent
	ParentColumn clause.Column

	// ChildColumn is the join table column referencing the target
	ChildColumn clause.Column

	// TargetKey is the target table's primary key column
	TargetKey clause.Column

	// OrderBy sorts targets within each parent
	OrderBy []clause.OrderByColumn

	LocalKey func(*P) K

	// Setter receives an empty, non-nil slice for parents without links
	Setter func(*P, []*C)
}

// Preload turns a relation into a preload executor for QueryBuilder.WithPreload.
func Preload[P, J, C any, K comparable](rel ManyToMany[P, J, C, K]) preloadExecutor[P] {
	return func(ctx context.Context, session *Session, parents []*P) error {
		if len(parents) == 0 {
			return nil
		}

		parentIDs := make([]any, 0, len(parents))
		seen := make(map[K]struct{}, len(parents))
		for _, p := range parents {
			id := rel.LocalKey(p)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			parentIDs = append(parentIDs, id)
		}

		links, err := Query[J](session).
			Where(clause.IN{Column: rel.ParentColumn, Values: parentIDs}).
			Find(ctx)
		if err != nil {
			return err
		}

		// parent key -> child keys, in join row order
		linked := make(map[K][]K, len(parentIDs))
		childIDs := make([]any, 0, len(links))
		childSeen := make(map[K]struct{}, len(links))
		for _, link := range links {
			parentKey, err := keyOf[K](link, rel.ParentColumn.Name)
			if err != nil {
				return err
			}
			childKey, err := keyOf[K](link, rel.ChildColumn.Name)
			if err != nil {
				return err
			}
			linked[parentKey] = append(linked[parentKey], childKey)
			if _, ok := childSeen[childKey]; !ok {
				childSeen[childKey] = struct{}{}
				childIDs = append(childIDs, childKey)
			}
		}

		var targets []*C
		if len(childIDs) > 0 {
			targets, err = Query[C](session).
				Where(clause.IN{Column: rel.TargetKey, Values: childIDs}).
				OrderBy(rel.OrderBy...).
				Find(ctx)
			if err != nil {
				return err
			}
		}

		// query order of each target, applied per parent
		rank := make(map[K]int, len(targets))
		byKey := make(map[K]*C, len(targets))
		for i, target := range targets {
			key, err := keyOf[K](target, rel.TargetKey.Name)
			if err != nil {
				return err
			}
			rank[key] = i
			byKey[key] = target
		}

		for _, p := range parents {
			keys := slices.Clone(linked[rel.LocalKey(p)])
			slices.SortFunc(keys, func(a, b K) int { return cmp.Compare(rank[a], rank[b]) })
			children := make([]*C, 0, len(keys))
			for _, key := range keys {
				if target, ok := byKey[key]; ok {
					children = append(children, target)
				}
			}
			rel.Setter(p, children)
		}
		return nil
	}
}

func keyOf[K comparable](model any, column string) (K, error) {
	var zero K
	v := getFieldValue(model, column)
	key, ok := v.(K)
	if !ok {
		return zero, fmt.Errorf("orm: column %q of %T is %T, want %T", column, model, v, zero)
	}
	return key, nil
}
