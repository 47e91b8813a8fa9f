// File: internal/migration/migration.go
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/dangerclosesec/dealroom"
	"github.com/dangerclosesec/dealroom/internal/policy"
	_ "github.com/lib/pq"
)

// Migration is one versioned SQL file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies the embedded schema migrations and row policies.
type Migrator struct {
	DB     *sql.DB
	Source fs.FS
	Dir    string
}

// NewMigrator creates a migrator reading the migrations embedded in the binary.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{DB: db, Source: dealroom.MigrationsFS, Dir: "migrations"}
}

// InitializeSchema creates the bookkeeping tables.
func (m *Migrator) InitializeSchema(ctx context.Context) error {
	_, err := m.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS migration_history (
		id SERIAL PRIMARY KEY,
		version INT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		success BOOLEAN NOT NULL,
		errors TEXT
	);
	`)
	return err
}

// GetCurrentVersion returns the highest applied migration version, 0 when none.
func (m *Migrator) GetCurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := m.DB.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM schema_migrations
	`).Scan(&version)
	return version, err
}

// Load reads and orders the migration files. Files must be named
// NNNN_description.sql.
func (m *Migrator) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.Source, m.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var migrations []Migration
	seen := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := ParseFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", version, prev, entry.Name())
		}
		seen[version] = entry.Name()

		body, err := fs.ReadFile(m.Source, path.Join(m.Dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// ParseFilename splits "0003_opportunities.sql" into 3 and "opportunities".
func ParseFilename(filename string) (int, string, error) {
	base := strings.TrimSuffix(filename, ".sql")
	prefix, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("invalid migration filename %q", filename)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", fmt.Errorf("invalid migration version in %q", filename)
	}
	return version, name, nil
}

// Pending returns the migrations newer than the current version.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	all, err := m.Load()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range all {
		if mig.Version > current {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Migrate applies every pending migration in order, each in its own
// transaction, and stops at the first failure. It returns the migrations
// that were applied.
func (m *Migrator) Migrate(ctx context.Context) ([]Migration, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var applied []Migration
	for _, mig := range pending {
		if err := m.ApplyMigration(ctx, mig); err != nil {
			return applied, err
		}
		applied = append(applied, mig)
	}
	return applied, nil
}

// ApplyMigration runs one migration and records it.
func (m *Migrator) ApplyMigration(ctx context.Context, mig Migration) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
		tx.Rollback()
		m.recordMigrationHistory(ctx, mig, false, err.Error())
		return fmt.Errorf("failed to apply migration %04d_%s: %w", mig.Version, mig.Name, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, name)
		VALUES ($1, $2)
	`, mig.Version, mig.Name)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.recordMigrationHistory(ctx, mig, true, "")
	return nil
}

// ApplyRowPolicies (re)creates the row-level security policies in one
// transaction.
func (m *Migrator) ApplyRowPolicies(ctx context.Context) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	for _, stmt := range policy.RowPolicies() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply row policy: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (m *Migrator) recordMigrationHistory(ctx context.Context, mig Migration, success bool, errorMsg string) {
	_, err := m.DB.ExecContext(ctx, `
		INSERT INTO migration_history (version, name, success, errors)
		VALUES ($1, $2, $3, $4)
	`, mig.Version, mig.Name, success, errorMsg)
	if err != nil {
		slog.WarnContext(ctx, "failed to record migration history", "version", mig.Version, "error", err)
	}
}
