package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	apperrors "github.com/arllen133/blogcms/internal/errors"
	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/orm"
	"github.com/arllen133/blogcms/internal/service"
	"github.com/arllen133/blogcms/internal/store"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock advances one second per reading so every write gets a
// distinct timestamp.
type tickingClock struct {
	t time.Time
}

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	session := orm.NewSession(db, orm.SQLite)
	require.NoError(t, store.Migrate(context.Background(), session))
	return store.New(session)
}

func newTestService(t *testing.T) *service.ContentService {
	t.Helper()
	clock := &tickingClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return service.NewContentService(newTestStore(t), service.WithClock(clock.Now), service.WithLogger(logger))
}

func postInput(title string, categoryIDs ...string) service.PostInput {
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return service.PostInput{
		Title:         title,
		Content:       "<p>Hello world</p>",
		CoverImageURL: "https://x/img.png",
		CategoryIDs:   categoryIDs,
	}
}

func refIDs(refs []service.CategoryRef) []string {
	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

func mustCategory(t *testing.T, svc *service.ContentService, name string) *service.CategoryView {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return c
}

func TestCreatePostResolvesCategories(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCategory(t, svc, "Alpha")
	b := mustCategory(t, svc, "Beta")

	created, err := svc.CreatePost(ctx, postInput("  Hello  ", b.ID, a.ID, b.ID))
	require.NoError(t, err)
	assert.Equal(t, "Hello", created.Title)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, refIDs(got.Categories))
	assert.Equal(t, []service.CategoryRef{{ID: a.ID, Name: "Alpha"}, {ID: b.ID, Name: "Beta"}}, got.Categories)
	assert.Equal(t, "<p>Hello world</p>", got.Content, "content is stored verbatim")
}

func TestCreatePostWithoutCategories(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreatePost(context.Background(), postInput("bare"))
	require.NoError(t, err)
	assert.NotNil(t, created.Categories)
	assert.Empty(t, created.Categories)
}

func TestCreatePostUnknownCategory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	a := mustCategory(t, svc, "Alpha")

	_, err := svc.CreatePost(ctx, postInput("orphan", a.ID, "missing"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeConstraintViolation))
	assert.Equal(t, "missing", apperrors.GetMetadata(err)["id"])

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts, "no partial post is observable")

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Zero(t, cats[0].PostCount)
}

func TestUpdatePostReplacesCategories(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCategory(t, svc, "a")
	b := mustCategory(t, svc, "b")
	c := mustCategory(t, svc, "c")
	created, err := svc.CreatePost(ctx, postInput("post", a.ID, b.ID))
	require.NoError(t, err)

	updated, err := svc.UpdatePost(ctx, created.ID, service.PostInput{
		Title:         "post v2",
		Content:       "<h2>New body</h2>",
		CoverImageURL: "http://x/other.png",
		CategoryIDs:   []string{b.ID, c.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "post v2", updated.Title)
	assert.Equal(t, "<h2>New body</h2>", updated.Content)
	assert.Equal(t, "http://x/other.png", updated.CoverImageURL)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, refIDs(updated.Categories))
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "createdAt is preserved")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updatedAt is refreshed")

	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{b.ID, c.ID}, refIDs(got.Categories))
}

func TestUpdatePostWithEmptyCategoriesClearsSet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCategory(t, svc, "a")
	b := mustCategory(t, svc, "b")
	created, err := svc.CreatePost(ctx, postInput("post", a.ID, b.ID))
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, created.ID, postInput("post"))
	require.NoError(t, err)

	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Categories)
	assert.Empty(t, got.Categories)
}

func TestUpdatePostErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCategory(t, svc, "a")
	created, err := svc.CreatePost(ctx, postInput("post", a.ID))
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, "missing", postInput("post"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.UpdatePost(ctx, created.ID, postInput("changed", "missing"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeConstraintViolation))

	got, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "post", got.Title, "failed update is rolled back")
	assert.Equal(t, []string{a.ID}, refIDs(got.Categories))
}

func TestDeletePost(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := mustCategory(t, svc, "a")
	keep, err := svc.CreatePost(ctx, postInput("keep", a.ID))
	require.NoError(t, err)
	drop, err := svc.CreatePost(ctx, postInput("drop", a.ID))
	require.NoError(t, err)

	cat, err := svc.GetCategory(ctx, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, cat.PostCount)

	require.NoError(t, svc.DeletePost(ctx, drop.ID))

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cats[0].PostCount)

	_, err = svc.GetPost(ctx, drop.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	_, err = svc.GetPost(ctx, keep.ID)
	assert.NoError(t, err)

	err = svc.DeletePost(ctx, drop.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDeleteCategoryKeepsPosts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doomed := mustCategory(t, svc, "doomed")
	other := mustCategory(t, svc, "other")

	var ids []string
	for i := 0; i < 3; i++ {
		p, err := svc.CreatePost(ctx, postInput("post", doomed.ID, other.ID))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	require.NoError(t, svc.DeleteCategory(ctx, doomed.ID))

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.Contains(t, ids, p.ID)
		assert.Equal(t, []string{other.ID}, refIDs(p.Categories))
	}

	_, err = svc.GetCategory(ctx, doomed.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	err = svc.DeleteCategory(ctx, doomed.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListOrdering(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := mustCategory(t, svc, "first")
	second := mustCategory(t, svc, "second")
	older, err := svc.CreatePost(ctx, postInput("older"))
	require.NoError(t, err)
	newer, err := svc.CreatePost(ctx, postInput("newer"))
	require.NoError(t, err)

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, second.ID, cats[0].ID)
	assert.Equal(t, first.ID, cats[1].ID)
}

func TestCategoryNamesAreUniqueCaseInsensitively(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	golang := mustCategory(t, svc, "Go")
	rust := mustCategory(t, svc, "Rust")

	for _, name := range []string{"go", "  GO  ", "Go"} {
		_, err := svc.CreateCategory(ctx, name)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConstraintViolation), name)
	}

	_, err := svc.UpdateCategory(ctx, rust.ID, "gO")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConstraintViolation))

	renamed, err := svc.UpdateCategory(ctx, golang.ID, "GO")
	require.NoError(t, err, "a category may change the case of its own name")
	assert.Equal(t, "GO", renamed.Name)
	assert.True(t, renamed.UpdatedAt.After(renamed.CreatedAt))

	_, err = svc.UpdateCategory(ctx, "missing", "Zig")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    service.PostInput
		field string
	}{
		{"empty title", service.PostInput{Title: "   ", Content: "body", CoverImageURL: "https://x/y.png"}, "title"},
		{"long title", service.PostInput{Title: strings.Repeat("t", 101), Content: "body", CoverImageURL: "https://x/y.png"}, "title"},
		{"blank content", service.PostInput{Title: "t", Content: " \n ", CoverImageURL: "https://x/y.png"}, "content"},
		{"long content", service.PostInput{Title: "t", Content: strings.Repeat("c", 5001), CoverImageURL: "https://x/y.png"}, "content"},
		{"missing url", service.PostInput{Title: "t", Content: "body"}, "coverImageURL"},
		{"relative url", service.PostInput{Title: "t", Content: "body", CoverImageURL: "/img.png"}, "coverImageURL"},
		{"ftp url", service.PostInput{Title: "t", Content: "body", CoverImageURL: "ftp://x/y.png"}, "coverImageURL"},
		{"empty category id", service.PostInput{Title: "t", Content: "body", CoverImageURL: "https://x/y.png", CategoryIDs: []string{""}}, "categoryIds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			require.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "got %v", err)
			assert.Equal(t, tt.field, apperrors.GetMetadata(err)["field"])
		})
	}

	_, err := svc.CreateCategory(ctx, " ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	_, err = svc.CreateCategory(ctx, strings.Repeat("n", 101))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestTitleLengthCountsCharacters(t *testing.T) {
	svc := newTestService(t)

	title := strings.Repeat("é", 100)
	created, err := svc.CreatePost(context.Background(), postInput(title))
	require.NoError(t, err)
	assert.Equal(t, title, created.Title)

	// e + combining acute is normalized to a single character.
	created, err = svc.CreatePost(context.Background(), postInput("Cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", created.Title)
}

// The concrete scenario from the admin workflow: a post keeps existing
// after its only category is deleted.
func TestIntroScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c1, err := svc.CreateCategory(ctx, "TypeScript")
	require.NoError(t, err)

	p1, err := svc.CreatePost(ctx, service.PostInput{
		Title:         "Intro",
		Content:       "<p>Hi</p>",
		CoverImageURL: "https://x/img.png",
		CategoryIDs:   []string{c1.ID},
	})
	require.NoError(t, err)

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, p1.ID, posts[0].ID)
	assert.Equal(t, []service.CategoryRef{{ID: c1.ID, Name: "TypeScript"}}, posts[0].Categories)

	require.NoError(t, svc.DeleteCategory(ctx, c1.ID))

	got, err := svc.GetPost(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []service.CategoryRef{}, got.Categories)
}

// brokenStore fails every read it is asked for.
type brokenStore struct {
	store.Store
}

var errDisk = errors.New("disk on fire")

func (brokenStore) ListPosts(context.Context) ([]*models.Post, error) {
	return nil, apperrors.Wrap(apperrors.CodeStoreFailure, "list posts: disk on fire", errDisk)
}

func (brokenStore) GetCategory(context.Context, string) (*models.CategoryWithCount, error) {
	return nil, errDisk
}

func TestStoreFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	svc := service.NewContentService(brokenStore{}, service.WithLogger(logger))
	ctx := context.Background()

	_, err := svc.ListPosts(ctx)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStoreFailure))
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, buf.String(), "store failure")
	assert.Contains(t, buf.String(), "operation=\"list posts\"")

	buf.Reset()
	_, err = svc.GetCategory(ctx, "x")
	require.True(t, apperrors.IsCode(err, apperrors.CodeStoreFailure), "foreign errors become STORE_FAILURE")
	assert.ErrorIs(t, err, errDisk)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestPostWritesCheckCategoriesOnce(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	queryLog := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	session := orm.NewSession(db, orm.SQLite, orm.WithLogger(queryLog), orm.WithQueryLogging(true))
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx, session))
	svc := service.NewContentService(store.New(session))

	a := mustCategory(t, svc, "a")
	b := mustCategory(t, svc, "b")

	const existence = "SELECT categories.id FROM categories WHERE"

	buf.Reset()
	created, err := svc.CreatePost(ctx, postInput("post", a.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), existence))

	buf.Reset()
	_, err = svc.UpdatePost(ctx, created.ID, postInput("post", a.ID, b.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), existence))
}
