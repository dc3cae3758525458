package kv

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"freight-ops-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestSQLStore_Get(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewSQLStore(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE "key" = \$1 LIMIT \$[0-9]+`).
		WithArgs("ops.snapshots.v1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}).
			AddRow("ops.snapshots.v1", `{"L-1":{"status":"red"}}`, time.Now()))

	v, ok, err := store.Get(context.Background(), "ops.snapshots.v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"L-1":{"status":"red"}}`, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetMissing(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewSQLStore(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "kv_entries" WHERE "key" = \$1 LIMIT \$[0-9]+`).
		WithArgs("ops.none", 1).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	_, ok, err := store.Get(context.Background(), "ops.none")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SetUpserts(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewSQLStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "kv_entries"`) + `.*ON CONFLICT \("key"\) DO UPDATE SET`).
		WithArgs("ops.actionState.v1", "{}", Any{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Set(context.Background(), "ops.actionState.v1", "{}"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SQLiteRoundTrip(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, testDB.AutoMigrate(&model.KVEntry{}))

	ctx := context.Background()
	store := NewSQLStore(testDB)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "first"))
	require.NoError(t, store.Set(ctx, "k", "second"))

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)

	var count int64
	testDB.Model(&model.KVEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
