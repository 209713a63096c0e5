package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrate upgrades databases created before the completed column existed and
// then applies the embedded goose migrations.
func (s *Store) migrate(ctx context.Context) error {
	if err := s.upgradeLegacySchema(ctx); err != nil {
		// A failed upgrade must not keep the application from starting.
		s.logger.Warn("legacy schema upgrade failed", slog.String("error", err.Error()))
	}

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	for _, r := range results {
		s.logger.Info("migration applied",
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration))
	}
	return nil
}

// upgradeLegacySchema adds the completed column to an existing todos table
// that predates it. It does nothing when the table is missing or current.
func (s *Store) upgradeLegacySchema(ctx context.Context) error {
	columns, err := s.tableColumns(ctx, "todos")
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	if _, ok := columns["completed"]; ok {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, `ALTER TABLE todos ADD COLUMN completed BOOLEAN NOT NULL DEFAULT 0`); err != nil {
		return fmt.Errorf("add completed column: %w", err)
	}
	s.logger.Info("added completed column to legacy todos table")
	return nil
}

func (s *Store) tableColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("inspect %s table: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]struct{})
	for rows.Next() {
		var (
			cid        int
			name       string
			dataType   string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scan %s schema: %w", table, err)
		}
		columns[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s schema: %w", table, err)
	}
	return columns, nil
}
