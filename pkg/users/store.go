package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const userColumns = `id, name, email, password_hash, avatar_url, current_workspace_id,
	is_active, last_login_at, created_at, updated_at`

// Store persists users
type Store struct {
	db *sqlx.DB
}

// NewStore creates a user store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create inserts u. A duplicate email yields EMAIL_ALREADY_EXISTS.
func (s *Store) Create(ctx context.Context, u *User) error {
	return createUser(ctx, s.db, u)
}

func createUser(ctx context.Context, q sqlx.ExtContext, u *User) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO users (id, name, email, password_hash, avatar_url, current_workspace_id,
			is_active, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Name, u.Email, u.PasswordHash, u.AvatarURL, u.CurrentWorkspaceID,
		u.IsActive, u.LastLoginAt, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return apperr.BadRequest(apperr.CodeEmailAlreadyExists, "an account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns the user with id
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetByEmail returns the user with email, compared case-insensitively
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), normalizeEmail(email))
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// Names returns the display name of each of ids that exists
func (s *Store) Names(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := storage.In(s.db, `SELECT id, name FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load user names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user name: %w", err)
		}
		out[id] = name
	}
	return out, rows.Err()
}

// TouchLogin records a successful login
func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), at, id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// SetCurrentWorkspace points the user at workspaceID, or clears the pointer
// when workspaceID is nil
func (s *Store) SetCurrentWorkspace(ctx context.Context, q sqlx.ExecerContext, id string, workspaceID *string, at time.Time) error {
	if q == nil {
		q = s.db
	}
	_, err := q.ExecContext(ctx, s.db.Rebind(`UPDATE users SET current_workspace_id = ?, updated_at = ? WHERE id = ?`),
		workspaceID, at, id)
	if err != nil {
		return fmt.Errorf("failed to set current workspace: %w", err)
	}
	return nil
}

// SetAvatar stores the avatar URL
func (s *Store) SetAvatar(ctx context.Context, id, url string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET avatar_url = ?, updated_at = ? WHERE id = ?`), url, at, id)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	return nil
}

// Count returns the number of active users
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM users WHERE is_active = ?`), true); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
