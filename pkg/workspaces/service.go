package workspaces

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/storage"
	"github.com/platinummonkey/workboard/pkg/users"
)

const inviteCodeLength = 8

// DefaultName names the workspace every new account starts with
const DefaultName = "My Workspace"

// Service implements workspace and membership operations
type Service struct {
	store     *Store
	users     *users.Store
	resolver  *rbac.Resolver
	publisher events.Publisher
	logger    *observability.Logger
	now       func() time.Time

	eventMeta func(ctx context.Context, workspaceID, actorID string, role rbac.Role, at time.Time) (events.Meta, error)
}

// NewService creates a workspace service
func NewService(store *Store, userStore *users.Store, resolver *rbac.Resolver, publisher events.Publisher, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		store:     store,
		users:     userStore,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		eventMeta: store.EventMeta,
	}
}

// Create makes a workspace owned by userID
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Workspace, error) {
	ws, owner, err := s.build(userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, ws, owner); err != nil {
		return nil, err
	}

	observability.FromContext(ctx, s.logger).
		WithField("workspace_id", ws.ID).
		WithField("user_id", userID).
		Info("workspace created")
	return ws, nil
}

// Provision creates the default workspace of a user being registered, in the
// registration transaction, and makes it the user's current workspace. It
// satisfies users.Provisioner.
func (s *Service) Provision(ctx context.Context, tx *sqlx.Tx, u *users.User) error {
	ws, owner, err := s.build(u.ID, CreateInput{Name: DefaultName})
	if err != nil {
		return err
	}
	if err := createWorkspace(ctx, tx, ws, owner); err != nil {
		return err
	}
	u.CurrentWorkspaceID = &ws.ID
	u.UpdatedAt = ws.CreatedAt
	return nil
}

func (s *Service) build(userID string, in CreateInput) (*Workspace, *Member, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return nil, nil, err
	}
	code, err := auth.RandomCode(inviteCodeLength)
	if err != nil {
		return nil, nil, apperr.Internal("failed to create workspace", err)
	}

	now := s.now()
	ws := &Workspace{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     userID,
		InviteCode:  code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	owner := &Member{
		ID:          uuid.NewString(),
		WorkspaceID: ws.ID,
		UserID:      userID,
		Role:        rbac.RoleOwner,
		JoinedAt:    now,
	}
	return ws, owner, nil
}

// Get returns a workspace the caller belongs to
func (s *Service) Get(ctx context.Context, userID, workspaceID string) (*UserWorkspace, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly)
	if err != nil {
		return nil, err
	}
	ws, err := s.store.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return &UserWorkspace{Workspace: *ws, Role: role}, nil
}

// ListForUser returns every workspace the caller belongs to
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*UserWorkspace, error) {
	return s.store.ListForUser(ctx, userID)
}

// Update changes the name and description. A name change publishes
// WorkspaceRenamed.
func (s *Service) Update(ctx context.Context, userID, workspaceID string, in UpdateInput) (*Workspace, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermEditWorkspace)
	if err != nil {
		return nil, err
	}
	ws, err := s.store.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	oldName := ws.Name
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return nil, err
		}
		ws.Name = name
	}
	if in.Description != nil {
		ws.Description = strings.TrimSpace(*in.Description)
	}
	ws.UpdatedAt = s.now()

	var renamed *events.WorkspaceRenamed
	if ws.Name != oldName {
		meta, err := s.eventMeta(ctx, workspaceID, userID, role, ws.UpdatedAt)
		if err != nil {
			return nil, err
		}
		meta.WorkspaceName = ws.Name
		renamed = &events.WorkspaceRenamed{Meta: meta, OldName: oldName, NewName: ws.Name}
	}
	if err := s.store.Update(ctx, ws); err != nil {
		return nil, err
	}

	if renamed != nil {
		s.publisher.Publish(ctx, *renamed)
	}
	return ws, nil
}

// Delete removes a workspace and everything in it. The owner must keep at
// least one workspace.
func (s *Service) Delete(ctx context.Context, userID, workspaceID string) error {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermDeleteWorkspace)
	if err != nil {
		return err
	}
	ws, err := s.store.Get(ctx, workspaceID)
	if err != nil {
		return err
	}
	owned, err := s.store.CountOwned(ctx, ws.OwnerID)
	if err != nil {
		return err
	}
	if owned <= 1 {
		return apperr.BadRequest(apperr.CodeLastWorkspace, "You cannot delete your only workspace")
	}

	now := s.now()
	meta, err := s.eventMeta(ctx, workspaceID, userID, role, now)
	if err != nil {
		return err
	}
	snapshot, err := s.store.Members(ctx, workspaceID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, workspaceID, userID, now); err != nil {
		return err
	}

	observability.FromContext(ctx, s.logger).
		WithField("workspace_id", workspaceID).
		WithField("user_id", userID).
		Info("workspace deleted")
	s.publisher.Publish(ctx, events.WorkspaceDeleted{Meta: meta, Members: snapshot})
	return nil
}

// Analytics returns task totals for a workspace
func (s *Service) Analytics(ctx context.Context, userID, workspaceID string) (*Analytics, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	return s.store.Analytics(ctx, workspaceID, s.now())
}

// RegenerateInviteCode replaces the workspace's invite code
func (s *Service) RegenerateInviteCode(ctx context.Context, userID, workspaceID string) (*Workspace, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermManageWorkspaceSettings); err != nil {
		return nil, err
	}
	code, err := auth.RandomCode(inviteCodeLength)
	if err != nil {
		return nil, apperr.Internal("failed to generate invite code", err)
	}
	if err := s.store.SetInviteCode(ctx, workspaceID, code, s.now()); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, apperr.Internal("invite code collision, try again", err)
		}
		return nil, err
	}
	return s.store.Get(ctx, workspaceID)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequest(apperr.CodeValidation, "Workspace name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperr.BadRequest(apperr.CodeValidation, "Workspace name must be at most 255 characters")
	}
	return name, nil
}
