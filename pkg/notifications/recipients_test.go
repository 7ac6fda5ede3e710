package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/rbac"
)

var (
	alice = events.MemberRef{UserID: "alice", Name: "Alice", Role: rbac.RoleOwner}
	bob   = events.MemberRef{UserID: "bob", Name: "Bob", Role: rbac.RoleAdmin}
	carol = events.MemberRef{UserID: "carol", Name: "Carol", Role: rbac.RoleMember}

	team = []events.MemberRef{alice, bob, carol}
)

func metaBy(actor events.MemberRef) events.Meta {
	return events.Meta{
		WorkspaceID:   "ws-1",
		WorkspaceName: "Acme",
		ActorID:       actor.UserID,
		ActorName:     actor.Name,
		ActorRole:     actor.Role,
	}
}

func recipients(ds []delivery) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.userID)
	}
	return out
}

var launchTask = events.TaskRef{
	ID: "t-1", Code: "task-AB12", Title: "Ship it",
	Project: events.ProjectRef{ID: "p-1", Name: "Launch", Emoji: "🚀"},
}

func TestPlan_Recipients(t *testing.T) {
	dave := events.MemberRef{UserID: "dave", Name: "Dave", Role: rbac.RoleMember}

	tests := []struct {
		name    string
		evt     events.Event
		members []events.MemberRef
		want    []string
	}{
		{
			name:    "member joined notifies owner and admins but not the new member",
			evt:     events.MemberJoined{Meta: metaBy(dave), Member: dave},
			members: append(team, dave),
			want:    []string{"alice", "bob"},
		},
		{
			name:    "member added by owner skips the owner",
			evt:     events.MemberJoined{Meta: metaBy(alice), Member: dave},
			members: append(team, dave),
			want:    []string{"bob"},
		},
		{
			name: "member removed notifies only the removed member",
			evt:  events.MemberRemoved{Meta: metaBy(alice), Member: carol},
			want: []string{"carol"},
		},
		{
			name:    "role change notifies every other member",
			evt:     events.MemberRoleChanged{Meta: metaBy(alice), Member: carol, OldRole: rbac.RoleMember, NewRole: rbac.RoleAdmin},
			members: team,
			want:    []string{"bob", "carol"},
		},
		{
			name:    "workspace renamed by owner",
			evt:     events.WorkspaceRenamed{Meta: metaBy(alice), OldName: "Acme", NewName: "Acme Inc"},
			members: team,
			want:    []string{"bob", "carol"},
		},
		{
			name:    "workspace renamed by admin",
			evt:     events.WorkspaceRenamed{Meta: metaBy(bob), OldName: "Acme", NewName: "Acme Inc"},
			members: team,
			want:    []string{"alice", "carol"},
		},
		{
			name: "workspace deleted uses the membership snapshot",
			evt:  events.WorkspaceDeleted{Meta: metaBy(alice), Members: team},
			want: []string{"bob", "carol"},
		},
		{
			name:    "project created by member",
			evt:     events.ProjectCreated{Meta: metaBy(carol), Project: launchTask.Project},
			members: team,
			want:    []string{"alice", "bob"},
		},
		{
			name:    "project renamed by admin",
			evt:     events.ProjectRenamed{Meta: metaBy(bob), Project: launchTask.Project, OldName: "Old"},
			members: team,
			want:    []string{"alice", "carol"},
		},
		{
			name:    "project deleted by owner",
			evt:     events.ProjectDeleted{Meta: metaBy(alice), Project: launchTask.Project},
			members: team,
			want:    []string{"bob", "carol"},
		},
		{
			name: "task assigned notifies the assignee",
			evt:  events.TaskAssigned{Meta: metaBy(alice), Task: launchTask, AssigneeID: "carol"},
			want: []string{"carol"},
		},
		{
			name: "self assignment notifies nobody",
			evt:  events.TaskAssigned{Meta: metaBy(carol), Task: launchTask, AssigneeID: "carol"},
			want: []string{},
		},
		{
			name: "task unassigned notifies the previous assignee",
			evt:  events.TaskUnassigned{Meta: metaBy(bob), Task: launchTask, PreviousAssigneeID: "carol"},
			want: []string{"carol"},
		},
		{
			name:    "status changed by owner notifies the assignee only",
			evt:     events.TaskStatusChanged{Meta: metaBy(alice), Task: launchTask, OldStatus: "TODO", NewStatus: "DONE", AssigneeID: "carol"},
			members: team,
			want:    []string{"carol"},
		},
		{
			name:    "status changed by admin escalates to the owner",
			evt:     events.TaskStatusChanged{Meta: metaBy(bob), Task: launchTask, OldStatus: "TODO", NewStatus: "DONE", AssigneeID: "carol"},
			members: team,
			want:    []string{"carol", "alice"},
		},
		{
			name:    "status changed by member escalates to owner and admins",
			evt:     events.TaskStatusChanged{Meta: metaBy(carol), Task: launchTask, OldStatus: "TODO", NewStatus: "IN_PROGRESS", AssigneeID: "carol"},
			members: team,
			want:    []string{"alice", "bob"},
		},
		{
			name:    "status changed on an unassigned task by owner",
			evt:     events.TaskStatusChanged{Meta: metaBy(alice), Task: launchTask, OldStatus: "TODO", NewStatus: "DONE"},
			members: team,
			want:    []string{},
		},
		{
			name:    "task deleted by member notifies other roles and the assignee once",
			evt:     events.TaskDeleted{Meta: metaBy(carol), Task: launchTask, AssigneeID: "bob"},
			members: team,
			want:    []string{"alice", "bob"},
		},
		{
			name:    "task deleted by owner reaches the assignee in the same role group",
			evt:     events.TaskDeleted{Meta: metaBy(alice), Task: launchTask, AssigneeID: "carol"},
			members: team,
			want:    []string{"bob", "carol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := plan(tt.evt, tt.members)
			assert.Equal(t, tt.want, recipients(ds))
			for _, d := range ds {
				require.NotNil(t, d.payload)
				assert.Equal(t, tt.evt.Type(), d.payload.Type())
			}
		})
	}
}

func TestPlan_RoleChangedMarksTarget(t *testing.T) {
	evt := events.MemberRoleChanged{Meta: metaBy(alice), Member: carol, OldRole: rbac.RoleMember, NewRole: rbac.RoleAdmin}

	ds := plan(evt, team)
	require.Len(t, ds, 2)

	byUser := map[string]*MemberRoleChangedPayload{}
	for _, d := range ds {
		p, ok := d.payload.(*MemberRoleChangedPayload)
		require.True(t, ok)
		byUser[d.userID] = p
	}
	assert.False(t, byUser["bob"].ForTarget)
	assert.True(t, byUser["carol"].ForTarget)
	assert.Equal(t, rbac.RoleAdmin, byUser["carol"].NewRole)
	assert.Equal(t, "Carol", byUser["bob"].MemberName)
}

func TestPlan_PayloadSnapshot(t *testing.T) {
	evt := events.TaskStatusChanged{Meta: metaBy(carol), Task: launchTask, OldStatus: "TODO", NewStatus: "DONE"}

	ds := plan(evt, team)
	require.NotEmpty(t, ds)
	p, ok := ds[0].payload.(*TaskStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, "Acme", p.WorkspaceName)
	assert.Equal(t, "Carol", p.ActorName)
	assert.Equal(t, "task-AB12", p.TaskCode)
	assert.Equal(t, "Launch", p.ProjectName)
	assert.Equal(t, "🚀", p.ProjectEmoji)
	assert.Equal(t, "DONE", p.NewStatus)
}

func TestNeedsMembers(t *testing.T) {
	assert.False(t, needsMembers(events.MemberRemoved{}))
	assert.False(t, needsMembers(events.WorkspaceDeleted{}))
	assert.False(t, needsMembers(events.TaskAssigned{}))
	assert.False(t, needsMembers(events.TaskUnassigned{}))
	assert.True(t, needsMembers(events.TaskStatusChanged{}))
	assert.True(t, needsMembers(events.ProjectCreated{}))
}

func TestDecodePayload_UnknownType(t *testing.T) {
	_, err := decodePayload(events.Type("NOPE"), []byte(`{}`))
	assert.Error(t, err)
}
