package events

import (
	"time"

	"github.com/platinummonkey/workboard/pkg/rbac"
)

// Type identifies a domain event
type Type string

const (
	TypeMemberJoined      Type = "MEMBER_JOINED"
	TypeMemberRemoved     Type = "MEMBER_REMOVED"
	TypeMemberRoleChanged Type = "MEMBER_ROLE_CHANGED"
	TypeWorkspaceRenamed  Type = "WORKSPACE_NAME_CHANGED"
	TypeWorkspaceDeleted  Type = "WORKSPACE_DELETED"
	TypeProjectCreated    Type = "PROJECT_CREATED"
	TypeProjectRenamed    Type = "PROJECT_NAME_CHANGED"
	TypeProjectDeleted    Type = "PROJECT_DELETED"
	TypeTaskAssigned      Type = "TASK_ASSIGNED"
	TypeTaskUnassigned    Type = "TASK_UNASSIGNED"
	TypeTaskStatusChanged Type = "TASK_STATUS_CHANGED"
	TypeTaskDeleted       Type = "TASK_DELETED"
)

// AllTypes lists every event type
var AllTypes = []Type{
	TypeMemberJoined, TypeMemberRemoved, TypeMemberRoleChanged,
	TypeWorkspaceRenamed, TypeWorkspaceDeleted,
	TypeProjectCreated, TypeProjectRenamed, TypeProjectDeleted,
	TypeTaskAssigned, TypeTaskUnassigned, TypeTaskStatusChanged, TypeTaskDeleted,
}

// Event is implemented by every domain event struct. The set is closed:
// the unexported marker keeps other packages from adding variants.
type Event interface {
	Type() Type
	Workspace() string
	Actor() string
	metadata() Meta
}

// Meta is the context shared by every event: where it happened and who did
// it, captured at the time of the mutation
type Meta struct {
	WorkspaceID   string
	WorkspaceName string
	ActorID       string
	ActorName     string
	ActorRole     rbac.Role
	OccurredAt    time.Time
}

// Workspace returns the workspace the event happened in
func (m Meta) Workspace() string { return m.WorkspaceID }

// Actor returns the ID of the user who caused the event
func (m Meta) Actor() string { return m.ActorID }

func (m Meta) metadata() Meta { return m }

// MetaOf returns the shared context of evt
func MetaOf(evt Event) Meta { return evt.metadata() }

// MemberRef identifies a workspace member and the role held when the event
// was raised
type MemberRef struct {
	UserID string
	Name   string
	Role   rbac.Role
}

// ProjectRef is a snapshot of a project
type ProjectRef struct {
	ID    string
	Name  string
	Emoji string
}

// TaskRef is a snapshot of a task and its project
type TaskRef struct {
	ID      string
	Code    string
	Title   string
	Project ProjectRef
}

// MemberJoined is raised when a user is added to or joins a workspace
type MemberJoined struct {
	Meta
	Member MemberRef
}

// MemberRemoved is raised when a member is removed from a workspace
type MemberRemoved struct {
	Meta
	Member MemberRef
}

// MemberRoleChanged is raised when a member's role changes
type MemberRoleChanged struct {
	Meta
	Member  MemberRef
	OldRole rbac.Role
	NewRole rbac.Role
}

// WorkspaceRenamed is raised when a workspace's name changes
type WorkspaceRenamed struct {
	Meta
	OldName string
	NewName string
}

// WorkspaceDeleted is raised after a workspace and its contents are deleted.
// Members is the membership as it was before deletion.
type WorkspaceDeleted struct {
	Meta
	Members []MemberRef
}

// ProjectCreated is raised when a project is created
type ProjectCreated struct {
	Meta
	Project ProjectRef
}

// ProjectRenamed is raised when a project's name changes
type ProjectRenamed struct {
	Meta
	Project ProjectRef
	OldName string
}

// ProjectDeleted is raised after a project and its tasks are deleted
type ProjectDeleted struct {
	Meta
	Project ProjectRef
}

// TaskAssigned is raised when a task gains an assignee
type TaskAssigned struct {
	Meta
	Task       TaskRef
	AssigneeID string
}

// TaskUnassigned is raised when a task loses its assignee
type TaskUnassigned struct {
	Meta
	Task               TaskRef
	PreviousAssigneeID string
}

// TaskStatusChanged is raised when a task's status changes. AssigneeID is
// the assignee after the update, empty when unassigned.
type TaskStatusChanged struct {
	Meta
	Task       TaskRef
	OldStatus  string
	NewStatus  string
	AssigneeID string
}

// TaskDeleted is raised after a task is deleted
type TaskDeleted struct {
	Meta
	Task       TaskRef
	AssigneeID string
}

func (MemberJoined) Type() Type      { return TypeMemberJoined }
func (MemberRemoved) Type() Type     { return TypeMemberRemoved }
func (MemberRoleChanged) Type() Type { return TypeMemberRoleChanged }
func (WorkspaceRenamed) Type() Type  { return TypeWorkspaceRenamed }
func (WorkspaceDeleted) Type() Type  { return TypeWorkspaceDeleted }
func (ProjectCreated) Type() Type    { return TypeProjectCreated }
func (ProjectRenamed) Type() Type    { return TypeProjectRenamed }
func (ProjectDeleted) Type() Type    { return TypeProjectDeleted }
func (TaskAssigned) Type() Type      { return TypeTaskAssigned }
func (TaskUnassigned) Type() Type    { return TypeTaskUnassigned }
func (TaskStatusChanged) Type() Type { return TypeTaskStatusChanged }
func (TaskDeleted) Type() Type       { return TypeTaskDeleted }
