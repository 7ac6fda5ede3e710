package projects

import (
	"time"

	"github.com/platinummonkey/workboard/pkg/storage"
)

// DefaultEmoji is used when a project is created without one
const DefaultEmoji = "📊"

// Project groups tasks inside a workspace
type Project struct {
	ID          string    `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspaceId"`
	Emoji       string    `db:"emoji" json:"emoji"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CreateInput is the payload for creating a project
type CreateInput struct {
	Emoji       string `json:"emoji"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateInput carries the fields to change. Nil fields are left alone.
type UpdateInput struct {
	Emoji       *string `json:"emoji"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// List is one page of projects
type List struct {
	Projects   []*Project       `json:"projects"`
	Pagination storage.PageInfo `json:"pagination"`
}

// Analytics summarizes the tasks of a project
type Analytics struct {
	TotalTasks     int `db:"total_tasks" json:"totalTasks"`
	OverdueTasks   int `db:"overdue_tasks" json:"overdueTasks"`
	CompletedTasks int `db:"completed_tasks" json:"completedTasks"`
}
