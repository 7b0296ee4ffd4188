package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dayslot/core/internal/domain/entities"
	"github.com/dayslot/core/internal/domain/schedule"
	"github.com/dayslot/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface on Postgres.
//
// Dates and times are canonicalized in SQL on every read (to_char) so the
// application only ever sees zero-padded YYYY-MM-DD and HH:MM strings, and
// every statement is scoped to the owning user.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

const taskColumns = `
	id, owner_id, title, notes,
	to_char(date_ymd, 'YYYY-MM-DD') AS date_ymd,
	coalesce(to_char(start_time, 'HH24:MI'), '') AS start_time,
	coalesce(to_char(end_time, 'HH24:MI'), '') AS end_time,
	priority, is_all_day, created_at, updated_at, deleted_at`

func (r *TaskRepositoryImpl) ListByDate(ctx context.Context, ownerID uuid.UUID, date schedule.Date) ([]*entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM todos
		WHERE owner_id = $1 AND date_ymd = $2::date AND deleted_at IS NULL
		ORDER BY start_time ASC, priority ASC`

	var tasks []*entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, ownerID, string(date))
	if err != nil {
		return nil, fmt.Errorf("list tasks by date: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM todos
		WHERE id = $1 AND owner_id = $2`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO todos (id, owner_id, title, notes, date_ymd, start_time, end_time, priority, is_all_day)
		VALUES ($1, $2, $3, $4, $5::date, NULLIF($6, '')::time, NULLIF($7, '')::time, $8, $9)
		RETURNING created_at, updated_at`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Notes,
		string(task.Date), string(task.StartTime), string(task.EndTime),
		task.Priority, task.IsAllDay,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE todos
		SET title = $3, notes = $4, date_ymd = $5::date,
			start_time = NULLIF($6, '')::time, end_time = NULLIF($7, '')::time,
			priority = $8, is_all_day = $9, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Notes,
		string(task.Date), string(task.StartTime), string(task.EndTime),
		task.Priority, task.IsAllDay,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) SoftDelete(ctx context.Context, id, ownerID uuid.UUID, at time.Time) error {
	query := `
		UPDATE todos
		SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, ownerID, at)
	if err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}
