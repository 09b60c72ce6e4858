package store

import (
	"github.com/arllen133/blogcms/internal/models"
	"github.com/arllen133/blogcms/internal/orm"
	"github.com/arllen133/blogcms/internal/orm/clause"
	"github.com/arllen133/blogcms/internal/orm/field"
)

// Typed column references, qualified by table so they stay unambiguous in
// joined queries.
var Posts = struct {
	ID            field.String
	Title         field.String
	Content       field.String
	CoverImageURL field.String
	CreatedAt     field.Time
	UpdatedAt     field.Time
}{
	ID:            field.String{}.WithTable("posts").WithColumn("id"),
	Title:         field.String{}.WithTable("posts").WithColumn("title"),
	Content:       field.String{}.WithTable("posts").WithColumn("content"),
	CoverImageURL: field.String{}.WithTable("posts").WithColumn("cover_image_url"),
	CreatedAt:     field.Time{}.WithTable("posts").WithColumn("created_at"),
	UpdatedAt:     field.Time{}.WithTable("posts").WithColumn("updated_at"),
}

var Categories = struct {
	ID        field.String
	Name      field.String
	CreatedAt field.Time
	UpdatedAt field.Time
}{
	ID:        field.String{}.WithTable("categories").WithColumn("id"),
	Name:      field.String{}.WithTable("categories").WithColumn("name"),
	CreatedAt: field.Time{}.WithTable("categories").WithColumn("created_at"),
	UpdatedAt: field.Time{}.WithTable("categories").WithColumn("updated_at"),
}

var PostCategories = struct {
	PostID     field.String
	CategoryID field.String
}{
	PostID:     field.String{}.WithTable("post_categories").WithColumn("post_id"),
	CategoryID: field.String{}.WithTable("post_categories").WithColumn("category_id"),
}

type PostSchema struct{}

func (PostSchema) TableName() string { return "posts" }

func (PostSchema) SelectColumns() []string {
	return []string{"id", "title", "content", "cover_image_url", "created_at", "updated_at"}
}

func (PostSchema) InsertRow(m *models.Post) ([]string, []any) {
	return PostSchema{}.SelectColumns(),
		[]any{m.ID, m.Title, m.Content, m.CoverImageURL, m.CreatedAt, m.UpdatedAt}
}

func (PostSchema) UpdateMap(m *models.Post) map[string]any {
	return map[string]any{
		"title":           m.Title,
		"content":         m.Content,
		"cover_image_url": m.CoverImageURL,
		"updated_at":      m.UpdatedAt,
	}
}

func (PostSchema) PK(m *models.Post) orm.PK {
	var val any
	if m != nil {
		val = m.ID
	}
	return orm.PK{Column: clause.Column{Name: "id"}, Value: val}
}

type CategorySchema struct{}

func (CategorySchema) TableName() string { return "categories" }

func (CategorySchema) SelectColumns() []string {
	return []string{"id", "name", "created_at", "updated_at"}
}

func (CategorySchema) InsertRow(m *models.Category) ([]string, []any) {
	return CategorySchema{}.SelectColumns(), []any{m.ID, m.Name, m.CreatedAt, m.UpdatedAt}
}

func (CategorySchema) UpdateMap(m *models.Category) map[string]any {
	return map[string]any{
		"name":       m.Name,
		"updated_at": m.UpdatedAt,
	}
}

func (CategorySchema) PK(m *models.Category) orm.PK {
	var val any
	if m != nil {
		val = m.ID
	}
	return orm.PK{Column: clause.Column{Name: "id"}, Value: val}
}

// PostCategorySchema maps the join table. Its key is the (post_id,
// category_id) pair; PK reports post_id, the column rows are scoped by.
type PostCategorySchema struct{}

func (PostCategorySchema) TableName() string { return "post_categories" }

func (PostCategorySchema) SelectColumns() []string {
	return []string{"post_id", "category_id"}
}

func (PostCategorySchema) InsertRow(m *models.PostCategory) ([]string, []any) {
	return PostCategorySchema{}.SelectColumns(), []any{m.PostID, m.CategoryID}
}

func (PostCategorySchema) UpdateMap(*models.PostCategory) map[string]any {
	return map[string]any{}
}

func (PostCategorySchema) PK(m *models.PostCategory) orm.PK {
	var val any
	if m != nil {
		val = m.PostID
	}
	return orm.PK{Column: clause.Column{Name: "post_id"}, Value: val}
}

// postCategories resolves a post's categories ordered by name.
var postCategories = orm.ManyToMany[models.Post, models.PostCategory, models.Category, string]{
	ParentColumn: PostCategories.PostID.Column(),
	ChildColumn:  PostCategories.CategoryID.Column(),
	TargetKey:    Categories.ID.Column(),
	OrderBy:      []clause.OrderByColumn{Categories.Name.Asc(), Categories.ID.Asc()},
	LocalKey:     func(p *models.Post) string { return p.ID },
	Setter:       func(p *models.Post, cs []*models.Category) { p.Categories = cs },
}

func init() {
	orm.RegisterSchema[models.Post](PostSchema{})
	orm.RegisterSchema[models.Category](CategorySchema{})
	orm.RegisterSchema[models.PostCategory](PostCategorySchema{})
}
