package audit

import (
	"time"
)

// EventType is the category of an audit record
type EventType string

const (
	// Authentication
	EventTypeAuthRegister       EventType = "auth.register"
	EventTypeAuthLogin          EventType = "auth.login"
	EventTypeAuthLoginFailed    EventType = "auth.login_failed"
	EventTypeAuthTokenRejected  EventType = "auth.token_rejected"
	EventTypeAuthzAccessDenied  EventType = "authz.access_denied"
	EventTypeHTTPRequestFailure EventType = "http.request_failed"

	// Workspace membership
	EventTypeMemberJoin       EventType = "member.join"
	EventTypeMemberRemove     EventType = "member.remove"
	EventTypeMemberRoleChange EventType = "member.role_change"

	// Data mutations
	EventTypeWorkspaceRename  EventType = "data.workspace_rename"
	EventTypeWorkspaceDelete  EventType = "data.workspace_delete"
	EventTypeProjectCreate    EventType = "data.project_create"
	EventTypeProjectRename    EventType = "data.project_rename"
	EventTypeProjectDelete    EventType = "data.project_delete"
	EventTypeTaskAssign       EventType = "data.task_assign"
	EventTypeTaskUnassign     EventType = "data.task_unassign"
	EventTypeTaskStatusChange EventType = "data.task_status_change"
	EventTypeTaskDelete       EventType = "data.task_delete"
)

// EventStatus is the outcome of an audited action
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
	EventStatusDenied  EventStatus = "denied"
)

// ResourceType is the kind of entity an audit record is about
type ResourceType string

const (
	ResourceTypeUser      ResourceType = "user"
	ResourceTypeWorkspace ResourceType = "workspace"
	ResourceTypeMember    ResourceType = "member"
	ResourceTypeProject   ResourceType = "project"
	ResourceTypeTask      ResourceType = "task"
	ResourceTypeRequest   ResourceType = "request"
)

// Event is a single audit log entry
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor information
	UserID      string `json:"user_id,omitempty"`
	Username    string `json:"username,omitempty"`
	ActorRole   string `json:"actor_role,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`

	// Resource information
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`
	ResourceName string       `json:"resource_name,omitempty"`

	// Request context
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Before/after values for updates
	Changes *ChangeDetails `json:"changes,omitempty"`
}

// ChangeDetails tracks before/after values for updates
type ChangeDetails struct {
	Before map[string]interface{} `json:"before,omitempty"`
	After  map[string]interface{} `json:"after,omitempty"`
}
