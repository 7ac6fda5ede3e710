package workspaces

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const workspaceColumns = `w.id, w.name, w.description, w.owner_id, w.invite_code, w.created_at, w.updated_at`

const memberColumns = `m.id, m.workspace_id, m.user_id, m.role, m.joined_at, u.name, u.email, u.avatar_url`

// Store persists workspaces and memberships. It also backs the rbac
// resolver.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a workspace store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// WorkspaceExists implements rbac.MembershipStore
func (s *Store) WorkspaceExists(ctx context.Context, workspaceID string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM workspaces WHERE id = ?`), workspaceID)
	if err != nil {
		return false, fmt.Errorf("failed to check workspace: %w", err)
	}
	return n > 0, nil
}

// MemberRole implements rbac.MembershipStore
func (s *Store) MemberRole(ctx context.Context, workspaceID, userID string) (string, bool, error) {
	var role string
	err := s.db.GetContext(ctx, &role, s.db.Rebind(`SELECT role FROM members WHERE workspace_id = ? AND user_id = ?`),
		workspaceID, userID)
	if err != nil {
		if storage.IsNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get member role: %w", err)
	}
	return role, true, nil
}

// Create inserts ws with its owner as an OWNER member. The owner's current
// workspace is set to ws when they have none.
func (s *Store) Create(ctx context.Context, ws *Workspace, owner *Member) error {
	return storage.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return createWorkspace(ctx, tx, ws, owner)
	})
}

func createWorkspace(ctx context.Context, tx *sqlx.Tx, ws *Workspace, owner *Member) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO workspaces (id, name, description, owner_id, invite_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		ws.ID, ws.Name, ws.Description, ws.OwnerID, ws.InviteCode, ws.CreatedAt, ws.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	if err := insertMember(ctx, tx, owner); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE users SET current_workspace_id = ?, updated_at = ?
		WHERE id = ? AND current_workspace_id IS NULL`),
		ws.ID, ws.CreatedAt, ws.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to set current workspace: %w", err)
	}
	return nil
}

// Get returns the workspace with id
func (s *Store) Get(ctx context.Context, id string) (*Workspace, error) {
	var ws Workspace
	err := s.db.GetContext(ctx, &ws, s.db.Rebind(`SELECT `+workspaceColumns+` FROM workspaces w WHERE w.id = ?`), id)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("Workspace not found")
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &ws, nil
}

// GetByInviteCode returns the workspace whose invite code is code
func (s *Store) GetByInviteCode(ctx context.Context, code string) (*Workspace, error) {
	var ws Workspace
	err := s.db.GetContext(ctx, &ws, s.db.Rebind(`SELECT `+workspaceColumns+` FROM workspaces w WHERE w.invite_code = ?`), code)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("Invalid invite code")
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &ws, nil
}

// ListForUser returns the workspaces userID belongs to, oldest membership
// first
func (s *Store) ListForUser(ctx context.Context, userID string) ([]*UserWorkspace, error) {
	var out []*UserWorkspace
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(`
		SELECT `+workspaceColumns+`, m.role
		FROM workspaces w
		JOIN members m ON m.workspace_id = w.id
		WHERE m.user_id = ?
		ORDER BY m.joined_at ASC, w.id ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return out, nil
}

// Update stores the name and description of ws
func (s *Store) Update(ctx context.Context, ws *Workspace) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE workspaces SET name = ?, description = ?, updated_at = ? WHERE id = ?`),
		ws.Name, ws.Description, ws.UpdatedAt, ws.ID)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	return nil
}

// SetInviteCode replaces the invite code of a workspace
func (s *Store) SetInviteCode(ctx context.Context, id, code string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE workspaces SET invite_code = ?, updated_at = ? WHERE id = ?`),
		code, at, id)
	if err != nil {
		return fmt.Errorf("failed to set invite code: %w", err)
	}
	return nil
}

// CountOwned returns how many workspaces ownerID owns
func (s *Store) CountOwned(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM workspaces WHERE owner_id = ?`), ownerID); err != nil {
		return 0, fmt.Errorf("failed to count workspaces: %w", err)
	}
	return n, nil
}

// Count returns the number of workspaces
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM workspaces`); err != nil {
		return 0, fmt.Errorf("failed to count workspaces: %w", err)
	}
	return n, nil
}

// Delete removes a workspace with its tasks, projects and memberships in one
// transaction. If deleterID's current workspace is the deleted one it is
// repointed at another workspace they belong to (or none). Every other user
// pointing at the workspace is cleared.
func (s *Store) Delete(ctx context.Context, id, deleterID string, at time.Time) error {
	return storage.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		steps := []struct {
			what  string
			query string
		}{
			{"tasks", `DELETE FROM tasks WHERE workspace_id = ?`},
			{"projects", `DELETE FROM projects WHERE workspace_id = ?`},
			{"members", `DELETE FROM members WHERE workspace_id = ?`},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, tx.Rebind(step.query), id); err != nil {
				return fmt.Errorf("failed to delete workspace %s: %w", step.what, err)
			}
		}

		var next []string
		err := tx.SelectContext(ctx, &next, tx.Rebind(`
			SELECT workspace_id FROM members WHERE user_id = ? ORDER BY joined_at ASC LIMIT 1`), deleterID)
		if err != nil {
			return fmt.Errorf("failed to find next workspace: %w", err)
		}
		var nextID *string
		if len(next) > 0 {
			nextID = &next[0]
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE users SET current_workspace_id = ?, updated_at = ?
			WHERE id = ? AND current_workspace_id = ?`),
			nextID, at, deleterID, id); err != nil {
			return fmt.Errorf("failed to repoint current workspace: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE users SET current_workspace_id = NULL, updated_at = ? WHERE current_workspace_id = ?`),
			at, id); err != nil {
			return fmt.Errorf("failed to clear current workspace: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM workspaces WHERE id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete workspace: %w", err)
		}
		return nil
	})
}

// ListMembers returns the members of a workspace, oldest first
func (s *Store) ListMembers(ctx context.Context, workspaceID string) ([]*Member, error) {
	var out []*Member
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(`
		SELECT `+memberColumns+`
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ?
		ORDER BY m.joined_at ASC, m.id ASC`), workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return out, nil
}

// GetMember returns userID's membership in workspaceID
func (s *Store) GetMember(ctx context.Context, workspaceID, userID string) (*Member, error) {
	var m Member
	err := s.db.GetContext(ctx, &m, s.db.Rebind(`
		SELECT `+memberColumns+`
		FROM members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = ? AND m.user_id = ?`), workspaceID, userID)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFoundCode(apperr.CodeMemberNotFound, "Member not found in this workspace")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

// Members returns a snapshot of the membership for event payloads. It
// satisfies the notifications member lister.
func (s *Store) Members(ctx context.Context, workspaceID string) ([]events.MemberRef, error) {
	members, err := s.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	refs := make([]events.MemberRef, 0, len(members))
	for _, m := range members {
		refs = append(refs, events.MemberRef{UserID: m.UserID, Name: m.Name, Role: m.Role})
	}
	return refs, nil
}

// AddMember inserts m. An existing membership yields ALREADY_MEMBER.
func (s *Store) AddMember(ctx context.Context, m *Member) error {
	return insertMember(ctx, s.db, m)
}

func insertMember(ctx context.Context, q sqlx.ExtContext, m *Member) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO members (id, workspace_id, user_id, role, joined_at) VALUES (?, ?, ?, ?, ?)`),
		m.ID, m.WorkspaceID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return apperr.BadRequest(apperr.CodeAlreadyMember, "User is already a member of this workspace")
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// UpdateMemberRole changes a member's role
func (s *Store) UpdateMemberRole(ctx context.Context, workspaceID, userID string, role rbac.Role) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE members SET role = ? WHERE workspace_id = ? AND user_id = ?`),
		role, workspaceID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return requireAffected(res, apperr.NotFoundCode(apperr.CodeMemberNotFound, "Member not found in this workspace"))
}

// RemoveMember deletes a membership. A user whose current workspace was this
// one is cleared.
func (s *Store) RemoveMember(ctx context.Context, workspaceID, userID string, at time.Time) error {
	return storage.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM members WHERE workspace_id = ? AND user_id = ?`),
			workspaceID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if err := requireAffected(res, apperr.NotFoundCode(apperr.CodeMemberNotFound, "Member not found in this workspace")); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE users SET current_workspace_id = NULL, updated_at = ?
			WHERE id = ? AND current_workspace_id = ?`), at, userID, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to clear current workspace: %w", err)
		}
		return nil
	})
}

// EventMeta loads the names that go into an event raised by actorID
func (s *Store) EventMeta(ctx context.Context, workspaceID, actorID string, role rbac.Role, at time.Time) (events.Meta, error) {
	var row struct {
		WorkspaceName string `db:"workspace_name"`
		ActorName     string `db:"actor_name"`
	}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT w.name AS workspace_name, u.name AS actor_name
		FROM workspaces w, users u
		WHERE w.id = ? AND u.id = ?`), workspaceID, actorID)
	if err != nil {
		if storage.IsNoRows(err) {
			return events.Meta{}, apperr.NotFound("Workspace not found")
		}
		return events.Meta{}, fmt.Errorf("failed to load event context: %w", err)
	}
	return events.Meta{
		WorkspaceID:   workspaceID,
		WorkspaceName: row.WorkspaceName,
		ActorID:       actorID,
		ActorName:     row.ActorName,
		ActorRole:     role,
		OccurredAt:    at,
	}, nil
}

// Analytics counts the tasks of a workspace. Overdue tasks are past their due
// date and not done.
func (s *Store) Analytics(ctx context.Context, workspaceID string, now time.Time) (*Analytics, error) {
	var a Analytics
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`
		SELECT COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status <> 'DONE' THEN 1 ELSE 0 END), 0) AS overdue_tasks,
			COALESCE(SUM(CASE WHEN status = 'DONE' THEN 1 ELSE 0 END), 0) AS completed_tasks
		FROM tasks WHERE workspace_id = ?`), now, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute workspace analytics: %w", err)
	}
	return &a, nil
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffecter, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
