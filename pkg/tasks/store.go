package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const taskColumns = `id, task_code, workspace_id, project_id, title, description, priority, status,
	assigned_to, due_date, created_by, created_at, updated_at`

// Store persists tasks
type Store struct {
	db *sqlx.DB
}

// NewStore creates a task store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create inserts t. A task code collision is reported with
// storage.IsUniqueViolation so the caller can retry with a new code.
func (s *Store) Create(ctx context.Context, t *Task) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.TaskCode, t.WorkspaceID, t.ProjectID, t.Title, t.Description, t.Priority, t.Status,
		t.AssignedTo, t.DueDate, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// Get returns the task id if it belongs to workspaceID
func (s *Store) Get(ctx context.Context, workspaceID, id string) (*Task, error) {
	var t Task
	err := s.db.GetContext(ctx, &t, s.db.Rebind(`
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND workspace_id = ?`), id, workspaceID)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// List returns one page of the workspace's tasks matching f, newest first,
// and the total count
func (s *Store) List(ctx context.Context, workspaceID string, f Filter, page storage.Page) ([]*Task, int, error) {
	where := []string{"workspace_id = ?"}
	args := []interface{}{workspaceID}

	if f.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN (?)")
		args = append(args, f.Statuses)
	}
	if len(f.Priorities) > 0 {
		where = append(where, "priority IN (?)")
		args = append(args, f.Priorities)
	}
	if len(f.AssigneeIDs) > 0 {
		where = append(where, "assigned_to IN (?)")
		args = append(args, f.AssigneeIDs)
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		pattern := "%" + storage.EscapeLike(strings.ToLower(kw)) + "%"
		args = append(args, pattern, pattern)
	}
	if f.DueDate != nil {
		day := f.DueDate.UTC().Truncate(24 * time.Hour)
		where = append(where, "due_date >= ? AND due_date < ?")
		args = append(args, day, day.Add(24*time.Hour))
	}
	cond := strings.Join(where, " AND ")

	q, qargs, err := storage.In(s.db, `SELECT COUNT(*) FROM tasks WHERE `+cond, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := s.db.GetContext(ctx, &total, q, qargs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	q, qargs, err = storage.In(s.db, `SELECT `+taskColumns+` FROM tasks WHERE `+cond+`
		ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	out := []*Task{}
	if err := s.db.SelectContext(ctx, &out, q, qargs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return out, total, nil
}

// Update stores the mutable fields of t
func (s *Store) Update(ctx context.Context, t *Task) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, assigned_to = ?,
			due_date = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?`),
		t.Title, t.Description, t.Priority, t.Status, t.AssignedTo, t.DueDate, t.UpdatedAt, t.ID, t.WorkspaceID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task
func (s *Store) Delete(ctx context.Context, workspaceID, id string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ? AND workspace_id = ?`), id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// CountByStatus returns the number of tasks in each status
func (s *Store) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[Status]int, len(AllStatuses))
	for _, st := range AllStatuses {
		out[st] = 0
	}
	for rows.Next() {
		var st Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("failed to scan task count: %w", err)
		}
		out[st] = n
	}
	return out, rows.Err()
}
