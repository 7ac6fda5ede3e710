package workspaces

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage/storagetest"
)

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	f.seedUser(t, "carol", "Carol")
	ws := f.create(t, "alice", "Acme")

	m, err := f.svc.AddMember(ctx, "alice", ws.ID, AddMemberInput{Email: "BOB@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "bob", m.UserID)
	assert.Equal(t, rbac.RoleMember, m.Role)

	require.Len(t, f.events.events, 1)
	joined, ok := f.events.events[0].(events.MemberJoined)
	require.True(t, ok)
	assert.Equal(t, "bob", joined.Member.UserID)
	assert.Equal(t, "Bob", joined.Member.Name)
	assert.Equal(t, "alice", joined.Actor())

	t.Run("already a member", func(t *testing.T) {
		_, err := f.svc.AddMember(ctx, "alice", ws.ID, AddMemberInput{UserID: "bob"})
		assert.Equal(t, apperr.CodeAlreadyMember, apperr.CodeOf(err))
	})

	t.Run("cannot grant owner", func(t *testing.T) {
		_, err := f.svc.AddMember(ctx, "alice", ws.ID, AddMemberInput{UserID: "carol", Role: rbac.RoleOwner})
		assert.Equal(t, apperr.CodeInvalidRoleChange, apperr.CodeOf(err))
	})

	t.Run("member lacks ADD_MEMBER", func(t *testing.T) {
		_, err := f.svc.AddMember(ctx, "bob", ws.ID, AddMemberInput{UserID: "carol"})
		assert.Equal(t, apperr.CodeAccessUnauthorized, apperr.CodeOf(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.AddMember(ctx, "alice", ws.ID, AddMemberInput{Email: "nobody@example.com"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestJoinByInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	ws := f.create(t, "alice", "Acme")
	f.events.reset()

	joined, err := f.svc.JoinByInvite(ctx, "bob", ws.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, joined.ID)
	assert.Equal(t, rbac.RoleMember, joined.Role)

	require.Len(t, f.events.events, 1)
	evt := f.events.events[0].(events.MemberJoined)
	assert.Equal(t, "bob", evt.Actor())
	assert.Equal(t, rbac.RoleMember, evt.ActorRole)

	_, err = f.svc.JoinByInvite(ctx, "bob", ws.InviteCode)
	assert.Equal(t, apperr.CodeAlreadyMember, apperr.CodeOf(err))

	_, err = f.svc.JoinByInvite(ctx, "bob", "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	ws := f.create(t, "alice", "Acme")
	f.add(t, "alice", ws.ID, "bob", rbac.RoleMember)
	f.events.reset()

	m, err := f.svc.ChangeRole(ctx, "alice", ws.ID, "bob", rbac.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, m.Role)

	role, found, err := f.store.MemberRole(ctx, ws.ID, "bob")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ADMIN", role)

	require.Len(t, f.events.events, 1)
	evt := f.events.events[0].(events.MemberRoleChanged)
	assert.Equal(t, rbac.RoleMember, evt.OldRole)
	assert.Equal(t, rbac.RoleAdmin, evt.NewRole)

	t.Run("same role is a no-op", func(t *testing.T) {
		f.events.reset()
		_, err := f.svc.ChangeRole(ctx, "alice", ws.ID, "bob", rbac.RoleAdmin)
		require.NoError(t, err)
		assert.Empty(t, f.events.events)
	})

	t.Run("owner role is fixed", func(t *testing.T) {
		_, err := f.svc.ChangeRole(ctx, "alice", ws.ID, "alice", rbac.RoleMember)
		assert.Equal(t, apperr.CodeInvalidRoleChange, apperr.CodeOf(err))
		_, err = f.svc.ChangeRole(ctx, "alice", ws.ID, "bob", rbac.RoleOwner)
		assert.Equal(t, apperr.CodeInvalidRoleChange, apperr.CodeOf(err))
	})

	t.Run("admin cannot change roles", func(t *testing.T) {
		_, err := f.svc.ChangeRole(ctx, "bob", ws.ID, "bob", rbac.RoleMember)
		assert.Equal(t, apperr.CodeAccessUnauthorized, apperr.CodeOf(err))
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := f.svc.ChangeRole(ctx, "alice", ws.ID, "ghost", rbac.RoleMember)
		assert.Equal(t, apperr.CodeMemberNotFound, apperr.CodeOf(err))
	})
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	f.seedUser(t, "carol", "Carol")
	f.seedUser(t, "dave", "Dave")
	ws := f.create(t, "alice", "Acme")
	f.add(t, "alice", ws.ID, "bob", rbac.RoleAdmin)
	f.add(t, "alice", ws.ID, "carol", rbac.RoleMember)

	tests := []struct {
		name   string
		caller string
		target string
		want   apperr.Code
	}{
		{"owner is never removable by owner", "alice", "alice", apperr.CodeCannotRemoveOwner},
		{"owner is never removable by admin", "bob", "alice", apperr.CodeCannotRemoveOwner},
		{"owner is never removable by member", "carol", "alice", apperr.CodeCannotRemoveOwner},
		{"self removal", "bob", "bob", apperr.CodeCannotRemoveSelf},
		{"admin cannot remove others", "bob", "carol", apperr.CodeAccessUnauthorized},
		{"non member caller", "dave", "carol", apperr.CodeAccessUnauthorized},
		{"target not a member", "alice", "dave", apperr.CodeMemberNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.RemoveMember(ctx, tt.caller, ws.ID, tt.target)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.CodeOf(err))
		})
	}
	assert.Equal(t, 3, storagetest.Count(t, f.db, "members", "workspace_id = ?", ws.ID))

	_, err := f.db.Exec(f.db.Rebind(`UPDATE users SET current_workspace_id = ? WHERE id = ?`), ws.ID, "carol")
	require.NoError(t, err)
	f.events.reset()

	require.NoError(t, f.svc.RemoveMember(ctx, "alice", ws.ID, "carol"))
	assert.Equal(t, 2, storagetest.Count(t, f.db, "members", "workspace_id = ?", ws.ID))

	carol, err := f.users.GetByID(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, carol.CurrentWorkspaceID)

	require.Len(t, f.events.events, 1)
	evt := f.events.events[0].(events.MemberRemoved)
	assert.Equal(t, "carol", evt.Member.UserID)
	assert.Equal(t, "Carol", evt.Member.Name)
}

func TestEventMetaFailureLeavesNoWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	f.seedUser(t, "carol", "Carol")
	ws := f.create(t, "alice", "Acme")
	f.add(t, "alice", ws.ID, "bob", rbac.RoleMember)
	f.events.reset()

	f.svc.eventMeta = func(ctx context.Context, workspaceID, actorID string, role rbac.Role, at time.Time) (events.Meta, error) {
		return events.Meta{}, errors.New("connection reset")
	}

	name := "Acme Corp"
	_, err := f.svc.Update(ctx, "alice", ws.ID, UpdateInput{Name: &name})
	require.Error(t, err)
	got, err := f.store.Get(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = f.svc.ChangeRole(ctx, "alice", ws.ID, "bob", rbac.RoleAdmin)
	require.Error(t, err)
	role, _, err := f.store.MemberRole(ctx, ws.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "MEMBER", role)

	_, err = f.svc.JoinByInvite(ctx, "carol", ws.InviteCode)
	require.Error(t, err)
	_, found, err := f.store.MemberRole(ctx, ws.ID, "carol")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Empty(t, f.events.events)
}
