package orm_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/arllen133/blogcms/internal/orm"
	"github.com/arllen133/blogcms/internal/orm/clause"
	"github.com/arllen133/blogcms/internal/orm/field"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Note, Tag and NoteTag form a small many-to-many fixture.
type Note struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	Tags      []*Tag    `db:"-"`
}

func (n *Note) BeforeCreate(ctx context.Context) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}

type Tag struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type NoteTag struct {
	NoteID string `db:"note_id"`
	TagID  string `db:"tag_id"`
}

type noteSchema struct{}

func (noteSchema) TableName() string       { return "notes" }
func (noteSchema) SelectColumns() []string { return []string{"id", "title", "created_at"} }
func (noteSchema) InsertRow(m *Note) ([]string, []any) {
	return []string{"id", "title", "created_at"}, []any{m.ID, m.Title, m.CreatedAt}
}
func (noteSchema) UpdateMap(m *Note) map[string]any {
	return map[string]any{"title": m.Title}
}
func (noteSchema) PK(m *Note) orm.PK {
	var val any
	if m != nil {
		val = m.ID
	}
	return orm.PK{Column: clause.Column{Name: "id"}, Value: val}
}

type tagSchema struct{}

func (tagSchema) TableName() string       { return "tags" }
func (tagSchema) SelectColumns() []string { return []string{"id", "name"} }
func (tagSchema) InsertRow(m *Tag) ([]string, []any) {
	return []string{"id", "name"}, []any{m.ID, m.Name}
}
func (tagSchema) UpdateMap(m *Tag) map[string]any {
	return map[string]any{"name": m.Name}
}
func (tagSchema) PK(m *Tag) orm.PK {
	var val any
	if m != nil {
		val = m.ID
	}
	return orm.PK{Column: clause.Column{Name: "id"}, Value: val}
}

type noteTagSchema struct{}

func (noteTagSchema) TableName() string       { return "note_tags" }
func (noteTagSchema) SelectColumns() []string { return []string{"note_id", "tag_id"} }
func (noteTagSchema) InsertRow(m *NoteTag) ([]string, []any) {
	return []string{"note_id", "tag_id"}, []any{m.NoteID, m.TagID}
}
func (noteTagSchema) UpdateMap(*NoteTag) map[string]any { return map[string]any{} }
func (noteTagSchema) PK(m *NoteTag) orm.PK {
	var val any
	if m != nil {
		val = m.NoteID
	}
	return orm.PK{Column: clause.Column{Name: "note_id"}, Value: val}
}

var (
	noteID        = field.String{}.WithTable("notes").WithColumn("id")
	noteTitle     = field.String{}.WithTable("notes").WithColumn("title")
	noteCreatedAt = field.Time{}.WithTable("notes").WithColumn("created_at")
	tagID         = field.String{}.WithTable("tags").WithColumn("id")
	tagName       = field.String{}.WithTable("tags").WithColumn("name")
	noteTagNoteID = field.String{}.WithTable("note_tags").WithColumn("note_id")
	noteTagTagID  = field.String{}.WithTable("note_tags").WithColumn("tag_id")
)

func init() {
	orm.RegisterSchema[Note](noteSchema{})
	orm.RegisterSchema[Tag](tagSchema{})
	orm.RegisterSchema[NoteTag](noteTagSchema{})
}

const fixtureDDL = `
CREATE TABLE notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE note_tags (
	note_id TEXT NOT NULL REFERENCES notes(id),
	tag_id TEXT NOT NULL REFERENCES tags(id),
	PRIMARY KEY (note_id, tag_id)
);`

// setupTestDB opens a private in-memory database with foreign keys on.
// A single connection keeps every statement on the same database.
func setupTestDB(t *testing.T, opts ...orm.SessionOption) *orm.Session {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(fixtureDDL); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	return orm.NewSession(db, orm.SQLite, opts...)
}

func mustCreateTag(t *testing.T, session *orm.Session, id, name string) *Tag {
	t.Helper()
	tag := &Tag{ID: id, Name: name}
	if err := orm.NewRepository[Tag](session).Create(context.Background(), tag); err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return tag
}
