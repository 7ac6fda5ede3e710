package audit

import (
	"context"

	"github.com/platinummonkey/workboard/pkg/contextkeys"
	"github.com/platinummonkey/workboard/pkg/events"
)

// Subscriber records every domain event as an audit entry
type Subscriber struct {
	logger Logger
}

// NewSubscriber creates a dispatcher subscriber writing to logger
func NewSubscriber(logger Logger) *Subscriber {
	return &Subscriber{logger: logger}
}

// Handle is the dispatcher subscriber
func (s *Subscriber) Handle(ctx context.Context, evt events.Event) error {
	return s.logger.Log(ctx, FromDomainEvent(ctx, evt))
}

// FromDomainEvent converts a domain event into an audit entry
func FromDomainEvent(ctx context.Context, evt events.Event) *Event {
	meta := events.MetaOf(evt)
	e := &Event{
		Timestamp:   meta.OccurredAt,
		Status:      EventStatusSuccess,
		UserID:      meta.ActorID,
		Username:    meta.ActorName,
		ActorRole:   string(meta.ActorRole),
		WorkspaceID: meta.WorkspaceID,
		RequestID:   contextkeys.GetRequestID(ctx),
	}

	switch v := evt.(type) {
	case events.MemberJoined:
		e.EventType = EventTypeMemberJoin
		setMember(e, v.Member)
		e.Metadata = map[string]interface{}{"role": string(v.Member.Role)}
	case events.MemberRemoved:
		e.EventType = EventTypeMemberRemove
		setMember(e, v.Member)
	case events.MemberRoleChanged:
		e.EventType = EventTypeMemberRoleChange
		setMember(e, v.Member)
		e.Changes = change("role", string(v.OldRole), string(v.NewRole))
	case events.WorkspaceRenamed:
		e.EventType = EventTypeWorkspaceRename
		e.ResourceType, e.ResourceID, e.ResourceName = ResourceTypeWorkspace, meta.WorkspaceID, v.NewName
		e.Changes = change("name", v.OldName, v.NewName)
	case events.WorkspaceDeleted:
		e.EventType = EventTypeWorkspaceDelete
		e.ResourceType, e.ResourceID, e.ResourceName = ResourceTypeWorkspace, meta.WorkspaceID, meta.WorkspaceName
		e.Metadata = map[string]interface{}{"members": len(v.Members)}
	case events.ProjectCreated:
		e.EventType = EventTypeProjectCreate
		setProject(e, v.Project)
	case events.ProjectRenamed:
		e.EventType = EventTypeProjectRename
		setProject(e, v.Project)
		e.Changes = change("name", v.OldName, v.Project.Name)
	case events.ProjectDeleted:
		e.EventType = EventTypeProjectDelete
		setProject(e, v.Project)
	case events.TaskAssigned:
		e.EventType = EventTypeTaskAssign
		setTask(e, v.Task)
		e.Metadata["assignee_id"] = v.AssigneeID
	case events.TaskUnassigned:
		e.EventType = EventTypeTaskUnassign
		setTask(e, v.Task)
		e.Metadata["previous_assignee_id"] = v.PreviousAssigneeID
	case events.TaskStatusChanged:
		e.EventType = EventTypeTaskStatusChange
		setTask(e, v.Task)
		e.Changes = change("status", v.OldStatus, v.NewStatus)
	case events.TaskDeleted:
		e.EventType = EventTypeTaskDelete
		setTask(e, v.Task)
	}
	return e
}

func setMember(e *Event, m events.MemberRef) {
	e.ResourceType, e.ResourceID, e.ResourceName = ResourceTypeMember, m.UserID, m.Name
}

func setProject(e *Event, p events.ProjectRef) {
	e.ResourceType, e.ResourceID, e.ResourceName = ResourceTypeProject, p.ID, p.Name
}

func setTask(e *Event, t events.TaskRef) {
	e.ResourceType, e.ResourceID, e.ResourceName = ResourceTypeTask, t.ID, t.Code
	e.Metadata = map[string]interface{}{"project_id": t.Project.ID}
}

func change(field, before, after string) *ChangeDetails {
	return &ChangeDetails{
		Before: map[string]interface{}{field: before},
		After:  map[string]interface{}{field: after},
	}
}
