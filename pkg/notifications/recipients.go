package notifications

import (
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/rbac"
)

// delivery is one notification to create: who gets it and what it says
type delivery struct {
	userID  string
	payload Payload
}

// needsMembers reports whether the recipients of evt depend on the current
// membership of its workspace
func needsMembers(evt events.Event) bool {
	switch evt.(type) {
	case events.MemberRemoved, events.WorkspaceDeleted, events.TaskAssigned, events.TaskUnassigned:
		return false
	}
	return true
}

// plan computes the deliveries for evt. members is the workspace membership
// at fan-out time (ignored by events that carry their own audience). The
// actor never receives a notification and nobody receives two.
func plan(evt events.Event, members []events.MemberRef) []delivery {
	meta := events.MetaOf(evt)
	ctx := contextOf(meta)
	var to recipientSet

	switch e := evt.(type) {
	case events.MemberJoined:
		to.add(withRoles(members, rbac.RoleOwner, rbac.RoleAdmin)...)
		to.skip(e.Member.UserID)
		return to.deliver(meta.ActorID, &MemberJoinedPayload{
			Context: ctx, MemberID: e.Member.UserID, MemberName: e.Member.Name, Role: e.Member.Role,
		})

	case events.MemberRemoved:
		to.add(e.Member.UserID)
		return to.deliver(meta.ActorID, &MemberRemovedPayload{
			Context: ctx, MemberID: e.Member.UserID, MemberName: e.Member.Name,
		})

	case events.MemberRoleChanged:
		to.add(userIDs(members)...)
		base := MemberRoleChangedPayload{
			Context: ctx, MemberID: e.Member.UserID, MemberName: e.Member.Name,
			OldRole: e.OldRole, NewRole: e.NewRole,
		}
		out := to.deliver(meta.ActorID, nil)
		for i := range out {
			p := base
			p.ForTarget = out[i].userID == e.Member.UserID
			out[i].payload = &p
		}
		return out

	case events.WorkspaceRenamed:
		to.add(withRoles(members, otherRoles(meta.ActorRole)...)...)
		return to.deliver(meta.ActorID, &WorkspaceRenamedPayload{Context: ctx, OldName: e.OldName, NewName: e.NewName})

	case events.WorkspaceDeleted:
		to.add(userIDs(e.Members)...)
		return to.deliver(meta.ActorID, &WorkspaceDeletedPayload{Context: ctx})

	case events.ProjectCreated:
		to.add(withRoles(members, otherRoles(meta.ActorRole)...)...)
		return to.deliver(meta.ActorID, &ProjectCreatedPayload{Context: ctx, ProjectSnapshot: projectSnapshot(e.Project)})

	case events.ProjectRenamed:
		to.add(withRoles(members, otherRoles(meta.ActorRole)...)...)
		return to.deliver(meta.ActorID, &ProjectRenamedPayload{
			Context: ctx, ProjectSnapshot: projectSnapshot(e.Project), OldName: e.OldName,
		})

	case events.ProjectDeleted:
		to.add(withRoles(members, otherRoles(meta.ActorRole)...)...)
		return to.deliver(meta.ActorID, &ProjectDeletedPayload{Context: ctx, ProjectSnapshot: projectSnapshot(e.Project)})

	case events.TaskAssigned:
		to.add(e.AssigneeID)
		return to.deliver(meta.ActorID, &TaskAssignedPayload{Context: ctx, TaskSnapshot: taskSnapshot(e.Task)})

	case events.TaskUnassigned:
		to.add(e.PreviousAssigneeID)
		return to.deliver(meta.ActorID, &TaskUnassignedPayload{Context: ctx, TaskSnapshot: taskSnapshot(e.Task)})

	case events.TaskStatusChanged:
		to.add(e.AssigneeID)
		switch meta.ActorRole {
		case rbac.RoleMember:
			to.add(withRoles(members, rbac.RoleOwner, rbac.RoleAdmin)...)
		case rbac.RoleAdmin:
			to.add(withRoles(members, rbac.RoleOwner)...)
		}
		return to.deliver(meta.ActorID, &TaskStatusChangedPayload{
			Context: ctx, TaskSnapshot: taskSnapshot(e.Task), OldStatus: e.OldStatus, NewStatus: e.NewStatus,
		})

	case events.TaskDeleted:
		to.add(withRoles(members, otherRoles(meta.ActorRole)...)...)
		to.add(e.AssigneeID)
		return to.deliver(meta.ActorID, &TaskDeletedPayload{Context: ctx, TaskSnapshot: taskSnapshot(e.Task)})
	}
	return nil
}

// otherRoles is every role except the actor's: an OWNER's change goes to
// ADMIN and MEMBER, an ADMIN's to OWNER and MEMBER, a MEMBER's to OWNER and
// ADMIN
func otherRoles(actor rbac.Role) []rbac.Role {
	out := make([]rbac.Role, 0, len(rbac.AllRoles))
	for _, r := range rbac.AllRoles {
		if r != actor {
			out = append(out, r)
		}
	}
	return out
}

func withRoles(members []events.MemberRef, roles ...rbac.Role) []string {
	var out []string
	for _, m := range members {
		for _, r := range roles {
			if m.Role == r {
				out = append(out, m.UserID)
				break
			}
		}
	}
	return out
}

func userIDs(members []events.MemberRef) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.UserID)
	}
	return out
}

// recipientSet collects user IDs in insertion order without duplicates
type recipientSet struct {
	ids     []string
	seen    map[string]bool
	skipped map[string]bool
}

func (s *recipientSet) add(ids ...string) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	for _, id := range ids {
		if id == "" || s.seen[id] {
			continue
		}
		s.seen[id] = true
		s.ids = append(s.ids, id)
	}
}

func (s *recipientSet) skip(id string) {
	if s.skipped == nil {
		s.skipped = map[string]bool{}
	}
	s.skipped[id] = true
}

func (s *recipientSet) deliver(actorID string, p Payload) []delivery {
	out := make([]delivery, 0, len(s.ids))
	for _, id := range s.ids {
		if id == actorID || s.skipped[id] {
			continue
		}
		out = append(out, delivery{userID: id, payload: p})
	}
	return out
}
