package notifications

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/rbac"
)

// Payload is the typed body of a notification. There is one variant per
// notification type and each carries a write-once snapshot of the names
// involved, so it still reads correctly after those entities change.
type Payload interface {
	Type() events.Type
}

// Context is the part of every payload that says where and by whom
type Context struct {
	WorkspaceID   string `json:"workspaceId"`
	WorkspaceName string `json:"workspaceName"`
	ActorName     string `json:"actorName"`
}

// ProjectSnapshot names a project
type ProjectSnapshot struct {
	ProjectID    string `json:"projectId"`
	ProjectName  string `json:"projectName"`
	ProjectEmoji string `json:"projectEmoji"`
}

// TaskSnapshot names a task and its project
type TaskSnapshot struct {
	TaskID    string `json:"taskId"`
	TaskCode  string `json:"taskCode"`
	TaskTitle string `json:"taskTitle"`
	ProjectSnapshot
}

type MemberJoinedPayload struct {
	Context
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName"`
	Role       rbac.Role `json:"role"`
}

type MemberRemovedPayload struct {
	Context
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
}

// MemberRoleChangedPayload is addressed to every member; ForTarget is set on
// the copy sent to the member whose role changed
type MemberRoleChangedPayload struct {
	Context
	MemberID   string    `json:"memberId"`
	MemberName string    `json:"memberName"`
	OldRole    rbac.Role `json:"oldRole"`
	NewRole    rbac.Role `json:"newRole"`
	ForTarget  bool      `json:"forTarget"`
}

type WorkspaceRenamedPayload struct {
	Context
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

type WorkspaceDeletedPayload struct {
	Context
}

type ProjectCreatedPayload struct {
	Context
	ProjectSnapshot
}

type ProjectRenamedPayload struct {
	Context
	ProjectSnapshot
	OldName string `json:"oldName"`
}

type ProjectDeletedPayload struct {
	Context
	ProjectSnapshot
}

type TaskAssignedPayload struct {
	Context
	TaskSnapshot
}

type TaskUnassignedPayload struct {
	Context
	TaskSnapshot
}

type TaskStatusChangedPayload struct {
	Context
	TaskSnapshot
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

type TaskDeletedPayload struct {
	Context
	TaskSnapshot
}

func (MemberJoinedPayload) Type() events.Type      { return events.TypeMemberJoined }
func (MemberRemovedPayload) Type() events.Type     { return events.TypeMemberRemoved }
func (MemberRoleChangedPayload) Type() events.Type { return events.TypeMemberRoleChanged }
func (WorkspaceRenamedPayload) Type() events.Type  { return events.TypeWorkspaceRenamed }
func (WorkspaceDeletedPayload) Type() events.Type  { return events.TypeWorkspaceDeleted }
func (ProjectCreatedPayload) Type() events.Type    { return events.TypeProjectCreated }
func (ProjectRenamedPayload) Type() events.Type    { return events.TypeProjectRenamed }
func (ProjectDeletedPayload) Type() events.Type    { return events.TypeProjectDeleted }
func (TaskAssignedPayload) Type() events.Type      { return events.TypeTaskAssigned }
func (TaskUnassignedPayload) Type() events.Type    { return events.TypeTaskUnassigned }
func (TaskStatusChangedPayload) Type() events.Type { return events.TypeTaskStatusChanged }
func (TaskDeletedPayload) Type() events.Type       { return events.TypeTaskDeleted }

func encodePayload(p Payload) ([]byte, error) {
	b, err := sonic.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.Type(), err)
	}
	return b, nil
}

// decodePayload reads a stored payload into the variant for typ
func decodePayload(typ events.Type, data []byte) (Payload, error) {
	var p Payload
	switch typ {
	case events.TypeMemberJoined:
		p = &MemberJoinedPayload{}
	case events.TypeMemberRemoved:
		p = &MemberRemovedPayload{}
	case events.TypeMemberRoleChanged:
		p = &MemberRoleChangedPayload{}
	case events.TypeWorkspaceRenamed:
		p = &WorkspaceRenamedPayload{}
	case events.TypeWorkspaceDeleted:
		p = &WorkspaceDeletedPayload{}
	case events.TypeProjectCreated:
		p = &ProjectCreatedPayload{}
	case events.TypeProjectRenamed:
		p = &ProjectRenamedPayload{}
	case events.TypeProjectDeleted:
		p = &ProjectDeletedPayload{}
	case events.TypeTaskAssigned:
		p = &TaskAssignedPayload{}
	case events.TypeTaskUnassigned:
		p = &TaskUnassignedPayload{}
	case events.TypeTaskStatusChanged:
		p = &TaskStatusChangedPayload{}
	case events.TypeTaskDeleted:
		p = &TaskDeletedPayload{}
	default:
		return nil, fmt.Errorf("unknown notification type %q", typ)
	}
	if err := sonic.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", typ, err)
	}
	return p, nil
}

// UnmarshalJSON decodes the payload into the variant named by the type field
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var wire struct {
		*plain
		Payload json.RawMessage `json:"payload"`
	}
	wire.plain = (*plain)(n)
	if err := sonic.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.Payload) == 0 || string(wire.Payload) == "null" {
		n.Payload = nil
		return nil
	}
	p, err := decodePayload(n.Type, wire.Payload)
	if err != nil {
		return err
	}
	n.Payload = p
	return nil
}

func contextOf(m events.Meta) Context {
	return Context{WorkspaceID: m.WorkspaceID, WorkspaceName: m.WorkspaceName, ActorName: m.ActorName}
}

func projectSnapshot(p events.ProjectRef) ProjectSnapshot {
	return ProjectSnapshot{ProjectID: p.ID, ProjectName: p.Name, ProjectEmoji: p.Emoji}
}

func taskSnapshot(t events.TaskRef) TaskSnapshot {
	return TaskSnapshot{TaskID: t.ID, TaskCode: t.Code, TaskTitle: t.Title, ProjectSnapshot: projectSnapshot(t.Project)}
}
