package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mtenant/pkg/pg"
)

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsNotFoundError(fmt.Errorf("query: %w", pgx.ErrNoRows)))
		assert.False(t, pg.IsNotFoundError(nil))
		assert.False(t, pg.IsNotFoundError(errors.New("other")))
	})

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		dup := &pgconn.PgError{Code: "23505"}
		assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("insert: %w", dup)))
		assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
		assert.False(t, pg.IsDuplicateKeyError(nil))
	})
}

func TestConnectRejectsEmptyConnectionString(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}

func TestConnectRejectsMalformedConnectionString(t *testing.T) {
	t.Parallel()

	_, err := pg.Connect(context.Background(), pg.Config{ConnectionString: "postgres://%zz"})
	assert.ErrorIs(t, err, pg.ErrFailedToParseDBConfig)
}

func TestMigrateRequiresMigrations(t *testing.T) {
	t.Parallel()

	err := pg.Migrate(context.Background(), nil, pg.Config{}, nil, "migrations", nil)
	assert.ErrorIs(t, err, pg.ErrNoMigrations)

	err = pg.Migrate(context.Background(), nil, pg.Config{}, fstest.MapFS{}, "", nil)
	assert.ErrorIs(t, err, pg.ErrFailedToApplyMigrations)
}
