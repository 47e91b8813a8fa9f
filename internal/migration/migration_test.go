package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangerclosesec/dealroom/internal/policy"
)

func testSource() fstest.MapFS {
	return fstest.MapFS{
		"migrations/0002_more.sql": {Data: []byte("CREATE TABLE b (id INT);")},
		"migrations/0001_init.sql": {Data: []byte("CREATE TABLE a (id INT);")},
		"migrations/README.md":     {Data: []byte("notes")},
	}
}

func newTestMigrator(t *testing.T) (*Migrator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Migrator{DB: db, Source: testSource(), Dir: "migrations"}, mock
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		name     string
		wantErr  bool
	}{
		{filename: "0003_opportunities.sql", version: 3, name: "opportunities"},
		{filename: "12_add_index.sql", version: 12, name: "add_index"},
		{filename: "init.sql", wantErr: true},
		{filename: "abc_init.sql", wantErr: true},
		{filename: "0000_zero.sql", wantErr: true},
		{filename: "0004_.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, err := ParseFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("orders by version and skips non sql files", func(t *testing.T) {
		m, _ := newTestMigrator(t)

		migrations, err := m.Load()
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, 1, migrations[0].Version)
		assert.Equal(t, "init", migrations[0].Name)
		assert.Equal(t, 2, migrations[1].Version)
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		m, _ := newTestMigrator(t)
		m.Source = fstest.MapFS{
			"migrations/0001_a.sql": {Data: []byte("SELECT 1;")},
			"migrations/0001_b.sql": {Data: []byte("SELECT 1;")},
		}

		_, err := m.Load()
		assert.ErrorContains(t, err, "duplicate migration version 1")
	})

	t.Run("embedded migrations are well formed", func(t *testing.T) {
		m := NewMigrator(nil)

		migrations, err := m.Load()
		require.NoError(t, err)
		require.NotEmpty(t, migrations)
		for i, mig := range migrations {
			assert.Equal(t, i+1, mig.Version)
			assert.NotEmpty(t, mig.SQL)
		}
	})
}

func TestInitializeSchema(t *testing.T) {
	m, mock := newTestMigrator(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, m.InitializeSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only pending migrations", func(t *testing.T) {
		m, mock := newTestMigrator(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT);")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO schema_migrations").
			WithArgs(2, "more").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
		mock.ExpectExec("INSERT INTO migration_history").
			WithArgs(2, "more", true, "").
			WillReturnResult(sqlmock.NewResult(1, 1))

		applied, err := m.Migrate(ctx)
		require.NoError(t, err)
		require.Len(t, applied, 1)
		assert.Equal(t, 2, applied[0].Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing pending", func(t *testing.T) {
		m, mock := newTestMigrator(t)

		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))

		applied, err := m.Migrate(ctx)
		require.NoError(t, err)
		assert.Empty(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed migration rolls back and stops", func(t *testing.T) {
		m, mock := newTestMigrator(t)

		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT);")).
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()
		mock.ExpectExec("INSERT INTO migration_history").
			WithArgs(1, "init", false, "boom").
			WillReturnResult(sqlmock.NewResult(1, 1))

		applied, err := m.Migrate(ctx)
		assert.ErrorContains(t, err, "0001_init")
		assert.Empty(t, applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplyRowPolicies(t *testing.T) {
	m, mock := newTestMigrator(t)

	mock.ExpectBegin()
	for _, stmt := range policy.RowPolicies() {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, m.ApplyRowPolicies(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
