package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"todoweb/internal/models"
)

var todoColumns = []string{"id", "title", "description", "completed", "created_at"}

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: conn, logger: logger, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// List returns todos ordered by id. A non-empty query keeps only todos whose
// title or description contains it; matching is case-sensitive.
func (s *Store) List(ctx context.Context, query string) ([]models.Todo, error) {
	qb := sq.Select(todoColumns...).From("todos").OrderBy("id ASC")
	if query != "" {
		qb = qb.Where(sq.Or{
			sq.Expr("instr(title, ?) > 0", query),
			sq.Expr("instr(description, ?) > 0", query),
		})
	}

	stmt, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// Count returns the number of stored todos.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.count(ctx, nil)
}

// CountCompleted returns the number of todos marked as completed.
func (s *Store) CountCompleted(ctx context.Context) (int, error) {
	return s.count(ctx, sq.Eq{"completed": true})
}

func (s *Store) count(ctx context.Context, pred sq.Sqlizer) (int, error) {
	qb := sq.Select("COUNT(*)").From("todos")
	if pred != nil {
		qb = qb.Where(pred)
	}

	stmt, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count todos: %w", err)
	}
	return n, nil
}

// Create persists a new pending todo.
func (s *Store) Create(ctx context.Context, title, description string) (models.Todo, error) {
	if err := models.ValidateText(title, description); err != nil {
		return models.Todo{}, err
	}

	var todo models.Todo
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO todos(title, description, completed, created_at) VALUES(?, ?, 0, ?)`,
			title, description, s.now().UTC())
		if err != nil {
			return fmt.Errorf("insert todo: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("todo id: %w", err)
		}
		todo, err = getTodo(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Todo{}, err
	}

	s.logger.Debug("todo created", slog.Int64("id", todo.ID))
	return todo, nil
}

// Get fetches a single todo by id.
func (s *Store) Get(ctx context.Context, id int64) (models.Todo, error) {
	return getTodo(ctx, s.db, id)
}

func getTodo(ctx context.Context, q rowQuerier, id int64) (models.Todo, error) {
	var t models.Todo
	err := q.QueryRowContext(ctx, `SELECT id, title, description, completed, created_at FROM todos WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, notFound(id)
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("get todo %d: %w", id, err)
	}
	return t, nil
}

// Update replaces the title and description of a todo.
// Completion state and creation time are left untouched.
func (s *Store) Update(ctx context.Context, id int64, title, description string) (models.Todo, error) {
	if err := models.ValidateText(title, description); err != nil {
		return models.Todo{}, err
	}

	var todo models.Todo
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE todos SET title = ?, description = ? WHERE id = ?`, title, description, id)
		if err != nil {
			return fmt.Errorf("update todo: %w", err)
		}
		if err := expectAffected(res, id); err != nil {
			return err
		}
		todo, err = getTodo(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

// ToggleCompleted flips the completion flag of a todo.
func (s *Store) ToggleCompleted(ctx context.Context, id int64) (models.Todo, error) {
	var todo models.Todo
	err := s.runInTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE todos SET completed = NOT completed WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("toggle todo: %w", err)
		}
		if err := expectAffected(res, id); err != nil {
			return err
		}
		todo, err = getTodo(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

// Delete removes a todo by id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.runInTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
		return expectAffected(res, id)
	})
}

func expectAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id int64) error {
	return fmt.Errorf("todo %d: %w", id, models.ErrNotFound)
}
