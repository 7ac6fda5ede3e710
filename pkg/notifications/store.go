package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/storage"
)

const notificationColumns = `id, user_id, workspace_id, actor_id, type, payload, is_read, read_at, created_at`

// Store persists notifications
type Store struct {
	db *sqlx.DB
}

// NewStore creates a notification store
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Insert stores every notification in one transaction
func (s *Store) Insert(ctx context.Context, ns []*Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return storage.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
			INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare notification insert: %w", err)
		}
		defer stmt.Close()

		for _, n := range ns {
			payload, err := encodePayload(n.Payload)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.WorkspaceID, n.ActorID, string(n.Type),
				string(payload), n.IsRead, n.ReadAt, n.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert notification: %w", err)
			}
		}
		return nil
	})
}

// List returns userID's notifications, newest first
func (s *Store) List(ctx context.Context, userID string, opts ListOptions) ([]*Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []interface{}{userID}
	if opts.UnreadOnly {
		q += ` AND is_read = ?`
		args = append(args, false)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, opts.Limit)

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]*Notification, 0, len(rows))
	for i := range rows {
		n, err := rows[i].notification()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// UnreadCount returns how many of userID's notifications are unread
func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = ?`),
		userID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// Get returns notification id if it is addressed to userID
func (s *Store) Get(ctx context.Context, userID, id string) (*Notification, error) {
	var r row
	err := s.db.GetContext(ctx, &r, s.db.Rebind(`SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND user_id = ?`),
		id, userID)
	if err != nil {
		if storage.IsNoRows(err) {
			return nil, apperr.NotFound("Notification not found")
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return r.notification()
}

// MarkAsRead marks one notification read. Already-read notifications keep
// their original read time.
func (s *Store) MarkAsRead(ctx context.Context, userID, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE notifications SET is_read = ?, read_at = ?
		WHERE id = ? AND user_id = ? AND is_read = ?`), true, at, id, userID, false)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification of userID read and returns
// how many changed
func (s *Store) MarkAllAsRead(ctx context.Context, userID string, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE notifications SET is_read = ?, read_at = ? WHERE user_id = ? AND is_read = ?`), true, at, userID, false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
