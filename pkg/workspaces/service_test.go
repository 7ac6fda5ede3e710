package workspaces

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage/storagetest"
	"github.com/platinummonkey/workboard/pkg/users"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ctx context.Context, evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	db     *sqlx.DB
	store  *Store
	users  *users.Store
	svc    *Service
	events *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := storagetest.NewDB(t)
	store := NewStore(db)
	userStore := users.NewStore(db)
	rec := &recorder{}
	svc := NewService(store, userStore, rbac.NewResolver(store), rec, nil)
	return &fixture{db: db, store: store, users: userStore, svc: svc, events: rec}
}

func (f *fixture) seedUser(t *testing.T, id, name string) string {
	return storagetest.SeedUser(t, f.db, id, name, id+"@example.com")
}

func (f *fixture) create(t *testing.T, ownerID, name string) *Workspace {
	t.Helper()
	ws, err := f.svc.Create(context.Background(), ownerID, CreateInput{Name: name})
	require.NoError(t, err)
	return ws
}

func (f *fixture) add(t *testing.T, actorID, wsID, userID string, role rbac.Role) {
	t.Helper()
	_, err := f.svc.AddMember(context.Background(), actorID, wsID, AddMemberInput{UserID: userID, Role: role})
	require.NoError(t, err)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")

	ws, err := f.svc.Create(ctx, "alice", CreateInput{Name: "  Acme ", Description: "Widgets"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", ws.Name)
	assert.Equal(t, "Widgets", ws.Description)
	assert.Len(t, ws.InviteCode, inviteCodeLength)

	members, err := f.svc.ListMembers(ctx, "alice", ws.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].UserID)
	assert.Equal(t, rbac.RoleOwner, members[0].Role)
	assert.Equal(t, "Alice", members[0].Name)

	u, err := f.users.GetByID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, u.CurrentWorkspaceID)
	assert.Equal(t, ws.ID, *u.CurrentWorkspaceID)

	second := f.create(t, "alice", "Second")
	u, err = f.users.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, ws.ID, *u.CurrentWorkspaceID, "existing current workspace is kept")

	got, err := f.svc.Get(ctx, "alice", second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Name)
	assert.Equal(t, rbac.RoleOwner, got.Role)
	assert.Equal(t, second.CreatedAt, got.CreatedAt)
}

func TestProvision_DefaultWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "workboard", time.Hour)
	require.NoError(t, err)
	accounts := users.NewService(f.users, auth.NewHasher(4), tokens, rbac.NewResolver(f.store), nil, nil)
	accounts.SetProvisioner(f.svc)

	sess, err := accounts.Register(ctx, users.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	require.NotNil(t, sess.User.CurrentWorkspaceID)

	stored, err := f.users.GetByID(ctx, sess.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CurrentWorkspaceID)
	assert.Equal(t, *sess.User.CurrentWorkspaceID, *stored.CurrentWorkspaceID)

	ws, err := f.svc.Get(ctx, sess.User.ID, *stored.CurrentWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, ws.Name)
	assert.Equal(t, rbac.RoleOwner, ws.Role)
	assert.Empty(t, f.events.events)
}

func TestCreate_ValidatesName(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "Alice")

	for _, name := range []string{"", "   ", string(make([]rune, MaxNameLength+1))} {
		_, err := f.svc.Create(context.Background(), "alice", CreateInput{Name: name})
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	}
}

func TestGet_AccessErrors(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "carol", "Carol")
	ws := f.create(t, "alice", "Acme")

	_, err := f.svc.Get(context.Background(), "carol", ws.ID)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeAccessUnauthorized, apperr.CodeOf(err))

	_, err = f.svc.Get(context.Background(), "alice", "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdate_RenamePublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	ws := f.create(t, "alice", "Acme")
	f.add(t, "alice", ws.ID, "bob", rbac.RoleMember)
	f.events.reset()

	desc := "New description"
	_, err := f.svc.Update(ctx, "alice", ws.ID, UpdateInput{Description: &desc})
	require.NoError(t, err)
	assert.Empty(t, f.events.events, "description change is silent")

	name := "Acme Corp"
	updated, err := f.svc.Update(ctx, "alice", ws.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, desc, updated.Description)

	require.Len(t, f.events.events, 1)
	evt, ok := f.events.events[0].(events.WorkspaceRenamed)
	require.True(t, ok)
	assert.Equal(t, "Acme", evt.OldName)
	assert.Equal(t, "Acme Corp", evt.NewName)
	assert.Equal(t, "Acme Corp", evt.WorkspaceName)
	assert.Equal(t, "Alice", evt.ActorName)
	assert.Equal(t, rbac.RoleOwner, evt.ActorRole)

	_, err = f.svc.Update(ctx, "bob", ws.ID, UpdateInput{Name: &name})
	assert.Equal(t, apperr.CodeAccessUnauthorized, apperr.CodeOf(err))
}

func TestDelete_LastWorkspace(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "Alice")
	ws := f.create(t, "alice", "Acme")

	err := f.svc.Delete(context.Background(), "alice", ws.ID)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeLastWorkspace, apperr.CodeOf(err))
	assert.Equal(t, 1, storagetest.Count(t, f.db, "workspaces", ""))
}

func TestDelete_CascadeLeavesNoOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	keep := f.create(t, "alice", "Keep")
	doomed := f.create(t, "alice", "Doomed")
	f.add(t, "alice", doomed.ID, "bob", rbac.RoleAdmin)

	_, err := f.db.Exec(f.db.Rebind(`UPDATE users SET current_workspace_id = ? WHERE id IN (?, ?)`), doomed.ID, "alice", "bob")
	require.NoError(t, err)

	now := f.svc.now()
	_, err = f.db.Exec(f.db.Rebind(`INSERT INTO projects (id, workspace_id, emoji, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`), "p1", doomed.ID, "📊", "Launch", "", "alice", now, now)
	require.NoError(t, err)
	_, err = f.db.Exec(f.db.Rebind(`INSERT INTO tasks (id, task_code, workspace_id, project_id, title, description, priority, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`), "t1", "task-abcd", doomed.ID, "p1", "Ship", "", "LOW", "TODO", "alice", now, now)
	require.NoError(t, err)
	f.events.reset()

	require.NoError(t, f.svc.Delete(ctx, "alice", doomed.ID))

	assert.Zero(t, storagetest.Count(t, f.db, "workspaces", "id = ?", doomed.ID))
	assert.Zero(t, storagetest.Count(t, f.db, "members", "workspace_id = ?", doomed.ID))
	assert.Zero(t, storagetest.Count(t, f.db, "projects", "workspace_id = ?", doomed.ID))
	assert.Zero(t, storagetest.Count(t, f.db, "tasks", "workspace_id = ?", doomed.ID))
	assert.Equal(t, 1, storagetest.Count(t, f.db, "workspaces", ""))

	alice, err := f.users.GetByID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice.CurrentWorkspaceID)
	assert.Equal(t, keep.ID, *alice.CurrentWorkspaceID)

	bob, err := f.users.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, bob.CurrentWorkspaceID)

	require.Len(t, f.events.events, 1)
	evt, ok := f.events.events[0].(events.WorkspaceDeleted)
	require.True(t, ok)
	assert.Equal(t, "Doomed", evt.WorkspaceName)
	assert.ElementsMatch(t, []string{"alice", "bob"}, []string{evt.Members[0].UserID, evt.Members[1].UserID})
}

func TestDelete_RequiresOwner(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	f.create(t, "alice", "Keep")
	ws := f.create(t, "alice", "Acme")
	f.add(t, "alice", ws.ID, "bob", rbac.RoleAdmin)

	err := f.svc.Delete(context.Background(), "bob", ws.ID)
	assert.Equal(t, apperr.CodeAccessUnauthorized, apperr.CodeOf(err))
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "alice", "Alice")
	ws := f.create(t, "alice", "Acme")

	now := f.svc.now()
	past := now.Add(-48 * time.Hour)
	_, err := f.db.Exec(f.db.Rebind(`INSERT INTO projects (id, workspace_id, emoji, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`), "p1", ws.ID, "📊", "Launch", "", "alice", now, now)
	require.NoError(t, err)
	insert := f.db.Rebind(`INSERT INTO tasks (id, task_code, workspace_id, project_id, title, description, priority, status, due_date, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = f.db.Exec(insert, "t1", "task-0001", ws.ID, "p1", "Overdue", "", "LOW", "TODO", past, "alice", now, now)
	require.NoError(t, err)
	_, err = f.db.Exec(insert, "t2", "task-0002", ws.ID, "p1", "Done late", "", "LOW", "DONE", past, "alice", now, now)
	require.NoError(t, err)
	_, err = f.db.Exec(insert, "t3", "task-0003", ws.ID, "p1", "Open", "", "LOW", "TODO", nil, "alice", now, now)
	require.NoError(t, err)

	a, err := f.svc.Analytics(ctx, "alice", ws.ID)
	require.NoError(t, err)
	assert.Equal(t, Analytics{TotalTasks: 3, OverdueTasks: 1, CompletedTasks: 1}, *a)
}

func TestRegenerateInviteCode(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "alice", "Alice")
	f.seedUser(t, "bob", "Bob")
	ws := f.create(t, "alice", "Acme")
	f.add(t, "alice", ws.ID, "bob", rbac.RoleMember)

	updated, err := f.svc.RegenerateInviteCode(context.Background(), "alice", ws.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ws.InviteCode, updated.InviteCode)

	_, err = f.svc.RegenerateInviteCode(context.Background(), "bob", ws.ID)
	assert.Equal(t, apperr.CodeAccessUnauthorized, apperr.CodeOf(err))
}
