package workspaces

import (
	"time"

	"github.com/platinummonkey/workboard/pkg/rbac"
)

// MaxNameLength bounds workspace names
const MaxNameLength = 255

// Workspace is a tenant. It has exactly one owner.
type Workspace struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	OwnerID     string    `db:"owner_id" json:"ownerId"`
	InviteCode  string    `db:"invite_code" json:"inviteCode"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// UserWorkspace is a workspace as seen by one of its members
type UserWorkspace struct {
	Workspace
	Role rbac.Role `db:"role" json:"role"`
}

// Member links a user to a workspace with a role. The user fields are
// joined in for listing.
type Member struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspaceId"`
	UserID      string    `db:"user_id" json:"userId"`
	Role        rbac.Role `db:"role" json:"role"`
	JoinedAt    time.Time `db:"joined_at" json:"joinedAt"`
	Name        string    `db:"name" json:"name"`
	Email       string    `db:"email" json:"email"`
	AvatarURL   *string   `db:"avatar_url" json:"avatarUrl"`
}

// CreateInput is the payload for creating a workspace
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateInput carries the fields to change. Nil fields are left alone.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AddMemberInput identifies the user to add by ID or email
type AddMemberInput struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Role   rbac.Role `json:"role"`
}

// Analytics summarizes the tasks of a workspace
type Analytics struct {
	TotalTasks     int `db:"total_tasks" json:"totalTasks"`
	OverdueTasks   int `db:"overdue_tasks" json:"overdueTasks"`
	CompletedTasks int `db:"completed_tasks" json:"completedTasks"`
}
