package projects

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const projectColumns = `id, workspace_id, emoji, name, description, created_by, created_at, updated_at`

// Store persists projects
type Store struct {
	db *sqlx.DB
}

// NewStore creates a project store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create inserts p
func (s *Store) Create(ctx context.Context, p *Project) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.WorkspaceID, p.Emoji, p.Name, p.Description, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// Get returns the project id if it belongs to workspaceID
func (s *Store) Get(ctx context.Context, workspaceID, id string) (*Project, error) {
	var p Project
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`
		SELECT `+projectColumns+` FROM projects WHERE id = ? AND workspace_id = ?`), id, workspaceID)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("Project not found or does not belong to this workspace")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// List returns one page of the workspace's projects, newest first, and the
// total count
func (s *Store) List(ctx context.Context, workspaceID string, page storage.Page) ([]*Project, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(`SELECT COUNT(*) FROM projects WHERE workspace_id = ?`), workspaceID); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	out := []*Project{}
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(`
		SELECT `+projectColumns+` FROM projects
		WHERE workspace_id = ?
		ORDER BY created_at DESC, id ASC
		LIMIT ? OFFSET ?`), workspaceID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return out, total, nil
}

// Update stores the mutable fields of p
func (s *Store) Update(ctx context.Context, p *Project) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE projects SET emoji = ?, name = ?, description = ?, updated_at = ? WHERE id = ?`),
		p.Emoji, p.Name, p.Description, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

// Delete removes a project and its tasks in one transaction
func (s *Store) Delete(ctx context.Context, workspaceID, id string) error {
	return storage.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tasks WHERE project_id = ? AND workspace_id = ?`), id, workspaceID); err != nil {
			return fmt.Errorf("failed to delete project tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM projects WHERE id = ? AND workspace_id = ?`), id, workspaceID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

// Count returns the number of projects
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// Analytics counts the tasks of a project
func (s *Store) Analytics(ctx context.Context, projectID string, now time.Time) (*Analytics, error) {
	var a Analytics
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`
		SELECT COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status <> 'DONE' THEN 1 ELSE 0 END), 0) AS overdue_tasks,
			COALESCE(SUM(CASE WHEN status = 'DONE' THEN 1 ELSE 0 END), 0) AS completed_tasks
		FROM tasks WHERE project_id = ?`), now, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute project analytics: %w", err)
	}
	return &a, nil
}
