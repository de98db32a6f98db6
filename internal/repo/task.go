package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-sync/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo { // Конструктор
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Put(ctx context.Context, id string, rec model.TaskRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, priority, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			priority = EXCLUDED.priority,
			completed = EXCLUDED.completed,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`, id, rec.OwnerID, rec.Title, rec.Description, rec.Priority, rec.Completed, rec.CreatedAt, rec.UpdatedAt)
	return r.mapError(err)
}

// Merge обновляет только переданные поля; отсутствующий id - тихий no-op
func (r *TaskRepo) Merge(ctx context.Context, id string, fields map[string]any) error {
	columns := map[string]string{
		"title":       "title",
		"description": "description",
		"priority":    "priority",
		"completed":   "completed",
		"updatedAt":   "updated_at",
	}

	sets := make([]string, 0, len(fields))
	args := []any{id}
	for key, value := range fields {
		col, ok := columns[key]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $1", strings.Join(sets, ", "))
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

// Delete идемпотентен по дизайну примитива remove
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	return err
}

func (r *TaskRepo) Snapshot(ctx context.Context) (map[string]model.TaskRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, title, description, priority, completed, created_at, COALESCE(updated_at, '')
		FROM tasks
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(map[string]model.TaskRecord)
	for rows.Next() {
		var id string
		var rec model.TaskRecord
		if err := rows.Scan(&id, &rec.OwnerID, &rec.Title, &rec.Description, &rec.Priority, &rec.Completed, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		snapshot[id] = rec
	}
	return snapshot, rows.Err()
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}
