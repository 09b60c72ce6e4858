package store

import (
	"context"
	"fmt"

	"github.com/arllen133/blogcms/internal/orm"
)

// Foreign keys are declared without ON DELETE CASCADE. Join rows are
// removed explicitly by DeletePost and DeleteCategory.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		cover_image_url TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_categories (
		post_id TEXT NOT NULL REFERENCES posts(id),
		category_id TEXT NOT NULL REFERENCES categories(id),
		PRIMARY KEY (post_id, category_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_created_at ON categories(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_post_categories_category_id ON post_categories(category_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id VARCHAR(36) PRIMARY KEY,
		title VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		cover_image_url TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_categories (
		post_id VARCHAR(36) NOT NULL REFERENCES posts(id),
		category_id VARCHAR(36) NOT NULL REFERENCES categories(id),
		PRIMARY KEY (post_id, category_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_created_at ON categories(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_post_categories_category_id ON post_categories(category_id)`,
}

// Migrate creates the tables for the session's dialect. It is idempotent.
func Migrate(ctx context.Context, session *orm.Session) error {
	var statements []string
	switch session.Dialect().(type) {
	case *orm.SQLiteDialect:
		statements = sqliteSchema
	case *orm.PostgreSQLDialect:
		statements = postgresSchema
	default:
		return fmt.Errorf("store: no schema for dialect %s", session.Dialect().Name())
	}

	return session.Transaction(ctx, func(tx *orm.Session) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("store: migrate: %w", err)
			}
		}
		return nil
	})
}
