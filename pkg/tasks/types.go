package tasks

import (
	"strings"
	"time"

	"github.com/platinummonkey/workboard/pkg/storage"
)

// Priority orders tasks by urgency
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Status is a task's position on the board
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
)

// AllStatuses lists the board columns in order
var AllStatuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusInReview, StatusDone}

var priorities = map[Priority]bool{PriorityLow: true, PriorityMedium: true, PriorityHigh: true}

// ParsePriority normalizes a priority name
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	return p, priorities[p]
}

// ParseStatus normalizes a status name
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Task is a unit of work inside a project
type Task struct {
	ID          string     `db:"id" json:"id"`
	TaskCode    string     `db:"task_code" json:"taskCode"`
	WorkspaceID string     `db:"workspace_id" json:"workspaceId"`
	ProjectID   string     `db:"project_id" json:"projectId"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Priority    Priority   `db:"priority" json:"priority"`
	Status      Status     `db:"status" json:"status"`
	AssignedTo  *string    `db:"assigned_to" json:"assignedTo"`
	DueDate     *time.Time `db:"due_date" json:"dueDate"`
	CreatedBy   string     `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// CreateInput is the payload for creating a task. Priority defaults to
// MEDIUM and status to TODO.
type CreateInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssignedTo  *string    `json:"assignedTo"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateInput carries the fields to change. Nil fields are left alone; an
// empty AssignedTo unassigns the task and ClearDueDate removes the due date.
type UpdateInput struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Priority     *string    `json:"priority"`
	Status       *string    `json:"status"`
	AssignedTo   *string    `json:"assignedTo"`
	DueDate      *time.Time `json:"dueDate"`
	ClearDueDate bool       `json:"clearDueDate"`
}

// Filter narrows a task listing. Empty fields match everything.
type Filter struct {
	ProjectID   string
	Statuses    []Status
	Priorities  []Priority
	AssigneeIDs []string
	Keyword     string
	// DueDate matches tasks due on the same UTC day
	DueDate *time.Time
}

// List is one page of tasks
type List struct {
	Tasks      []*Task          `json:"tasks"`
	Pagination storage.PageInfo `json:"pagination"`
}
