package workspaces

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/events"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/users"
)

// ListMembers returns the members of a workspace the caller belongs to
func (s *Service) ListMembers(ctx context.Context, userID, workspaceID string) ([]*Member, error) {
	if _, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermViewOnly); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, workspaceID)
}

// AddMember adds an existing user to the workspace as ADMIN or MEMBER
func (s *Service) AddMember(ctx context.Context, userID, workspaceID string, in AddMemberInput) (*Member, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermAddMember)
	if err != nil {
		return nil, err
	}

	newRole := rbac.RoleMember
	if in.Role != "" {
		parsed, ok := rbac.ParseRole(string(in.Role))
		if !ok || parsed == rbac.RoleOwner {
			return nil, apperr.BadRequest(apperr.CodeInvalidRoleChange, "Role must be ADMIN or MEMBER")
		}
		newRole = parsed
	}

	var target *users.User
	switch {
	case strings.TrimSpace(in.UserID) != "":
		target, err = s.users.GetByID(ctx, strings.TrimSpace(in.UserID))
	case strings.TrimSpace(in.Email) != "":
		target, err = s.users.GetByEmail(ctx, in.Email)
	default:
		return nil, apperr.BadRequest(apperr.CodeValidation, "userId or email is required")
	}
	if err != nil {
		return nil, err
	}

	return s.join(ctx, workspaceID, target, newRole, userID, role)
}

// JoinByInvite makes the caller a MEMBER of the workspace with the invite
// code
func (s *Service) JoinByInvite(ctx context.Context, userID, code string) (*UserWorkspace, error) {
	ws, err := s.store.GetByInviteCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.join(ctx, ws.ID, u, rbac.RoleMember, userID, rbac.RoleMember); err != nil {
		return nil, err
	}
	return &UserWorkspace{Workspace: *ws, Role: rbac.RoleMember}, nil
}

func (s *Service) join(ctx context.Context, workspaceID string, u *users.User, role rbac.Role, actorID string, actorRole rbac.Role) (*Member, error) {
	m := &Member{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		UserID:      u.ID,
		Role:        role,
		JoinedAt:    s.now(),
		Name:        u.Name,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
	}
	meta, err := s.eventMeta(ctx, workspaceID, actorID, actorRole, m.JoinedAt)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.MemberJoined{
		Meta:   meta,
		Member: events.MemberRef{UserID: m.UserID, Name: m.Name, Role: m.Role},
	})
	return m, nil
}

// ChangeRole sets a member's role to ADMIN or MEMBER. The owner's role
// cannot be changed and OWNER cannot be granted.
func (s *Service) ChangeRole(ctx context.Context, userID, workspaceID, targetID string, newRole rbac.Role) (*Member, error) {
	role, err := s.resolver.Require(ctx, userID, workspaceID, rbac.PermChangeMemberRole)
	if err != nil {
		return nil, err
	}
	parsed, ok := rbac.ParseRole(string(newRole))
	if !ok || parsed == rbac.RoleOwner {
		return nil, apperr.BadRequest(apperr.CodeInvalidRoleChange, "Role must be ADMIN or MEMBER")
	}

	target, err := s.store.GetMember(ctx, workspaceID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == rbac.RoleOwner {
		return nil, apperr.BadRequest(apperr.CodeInvalidRoleChange, "The workspace owner's role cannot be changed")
	}
	if target.Role == parsed {
		return target, nil
	}

	meta, err := s.eventMeta(ctx, workspaceID, userID, role, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateMemberRole(ctx, workspaceID, targetID, parsed); err != nil {
		return nil, err
	}
	oldRole := target.Role
	target.Role = parsed

	s.publisher.Publish(ctx, events.MemberRoleChanged{
		Meta:    meta,
		Member:  events.MemberRef{UserID: target.UserID, Name: target.Name, Role: parsed},
		OldRole: oldRole,
		NewRole: parsed,
	})
	return target, nil
}

// RemoveMember removes targetID from the workspace. The owner can never be
// removed and nobody can remove themselves.
func (s *Service) RemoveMember(ctx context.Context, userID, workspaceID, targetID string) error {
	role, err := s.resolver.ResolveRole(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	target, err := s.store.GetMember(ctx, workspaceID, targetID)
	if err != nil {
		return err
	}
	if target.Role == rbac.RoleOwner {
		return apperr.BadRequest(apperr.CodeCannotRemoveOwner, "The workspace owner cannot be removed")
	}
	if targetID == userID {
		return apperr.BadRequest(apperr.CodeCannotRemoveSelf, "You cannot remove yourself from the workspace")
	}
	// Checked on the role itself, not on REMOVE_MEMBER.
	if role != rbac.RoleOwner {
		return apperr.Unauthorized(apperr.CodeAccessUnauthorized, "Only the workspace owner can remove members")
	}

	now := s.now()
	meta, err := s.eventMeta(ctx, workspaceID, userID, role, now)
	if err != nil {
		return err
	}
	if err := s.store.RemoveMember(ctx, workspaceID, targetID, now); err != nil {
		return err
	}

	observability.FromContext(ctx, s.logger).
		WithField("workspace_id", workspaceID).
		WithField("member_id", targetID).
		Info("member removed")
	s.publisher.Publish(ctx, events.MemberRemoved{
		Meta:   meta,
		Member: events.MemberRef{UserID: target.UserID, Name: target.Name, Role: target.Role},
	})
	return nil
}
