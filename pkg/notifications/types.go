package notifications

import (
	"time"

	"github.com/platinummonkey/workboard/pkg/events"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Notification is addressed to a single user. Only the read state ever
// changes after creation.
type Notification struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	WorkspaceID string      `json:"workspaceId"`
	ActorID     string      `json:"actorId"`
	Type        events.Type `json:"type"`
	Payload     Payload     `json:"payload"`
	IsRead      bool        `json:"isRead"`
	ReadAt      *time.Time  `json:"readAt"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ListOptions selects the caller's notifications
type ListOptions struct {
	Limit      int
	UnreadOnly bool
}

func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	return o
}

// row is the stored form of a Notification
type row struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	WorkspaceID string     `db:"workspace_id"`
	ActorID     string     `db:"actor_id"`
	Type        string     `db:"type"`
	Payload     []byte     `db:"payload"`
	IsRead      bool       `db:"is_read"`
	ReadAt      *time.Time `db:"read_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (r *row) notification() (*Notification, error) {
	typ := events.Type(r.Type)
	payload, err := decodePayload(typ, r.Payload)
	if err != nil {
		return nil, err
	}
	return &Notification{
		ID:          r.ID,
		UserID:      r.UserID,
		WorkspaceID: r.WorkspaceID,
		ActorID:     r.ActorID,
		Type:        typ,
		Payload:     payload,
		IsRead:      r.IsRead,
		ReadAt:      r.ReadAt,
		CreatedAt:   r.CreatedAt,
	}, nil
}
