package orm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arllen133/blogcms/internal/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		session := setupTestDB(t)
		err := session.Transaction(ctx, func(tx *orm.Session) error {
			assert.True(t, tx.InTransaction())
			return orm.NewRepository[Note](tx).Create(ctx, &Note{Title: "kept"})
		})
		require.NoError(t, err)

		count, err := orm.Query[Note](session).Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		session := setupTestDB(t)
		boom := errors.New("boom")
		err := session.Transaction(ctx, func(tx *orm.Session) error {
			if err := orm.NewRepository[Note](tx).Create(ctx, &Note{Title: "discarded"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		count, err := orm.Query[Note](session).Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})

	t.Run("RollbackOnConstraint", func(t *testing.T) {
		session := setupTestDB(t)
		err := session.Transaction(ctx, func(tx *orm.Session) error {
			note := &Note{Title: "partial"}
			if err := orm.NewRepository[Note](tx).Create(ctx, note); err != nil {
				return err
			}
			return orm.NewRepository[NoteTag](tx).Create(ctx, &NoteTag{NoteID: note.ID, TagID: "missing"})
		})
		assert.ErrorIs(t, err, orm.ErrConstraint)

		count, err := orm.Query[Note](session).Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count, "the note insert must not survive")
	})

	t.Run("RollbackOnPanic", func(t *testing.T) {
		session := setupTestDB(t)
		assert.Panics(t, func() {
			_ = session.Transaction(ctx, func(tx *orm.Session) error {
				_ = orm.NewRepository[Note](tx).Create(ctx, &Note{Title: "panicked"})
				panic("boom")
			})
		})

		count, err := orm.Query[Note](session).Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})

	t.Run("NestedReusesOuter", func(t *testing.T) {
		session := setupTestDB(t)
		err := session.Transaction(ctx, func(outer *orm.Session) error {
			return outer.Transaction(ctx, func(inner *orm.Session) error {
				assert.Same(t, outer, inner)
				return nil
			})
		})
		require.NoError(t, err)
	})

	t.Run("CommitOutsideTransaction", func(t *testing.T) {
		session := setupTestDB(t)
		assert.False(t, session.InTransaction())
		assert.Error(t, session.Commit())
		assert.Error(t, session.Rollback())
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	session, err := orm.Open(ctx, orm.SQLite, ":memory:")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", session.Dialect().Name())
	assert.NoError(t, session.Ping(ctx))
	assert.NoError(t, session.Close())
}
