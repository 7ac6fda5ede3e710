package rbac

import (
	"context"
	"fmt"

	"github.com/platinummonkey/workboard/pkg/apperr"
)

// MembershipStore is the read side the resolver needs. Implementations
// return found=false (and a nil error) for missing rows.
type MembershipStore interface {
	WorkspaceExists(ctx context.Context, workspaceID string) (bool, error)
	MemberRole(ctx context.Context, workspaceID, userID string) (role string, found bool, err error)
}

// Resolver determines a user's role inside a workspace
type Resolver struct {
	store MembershipStore
}

// NewResolver creates a resolver backed by store
func NewResolver(store MembershipStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveRole returns the caller's role in the workspace. It fails with
// NotFound when the workspace does not exist and with Unauthorized
// (ACCESS_UNAUTHORIZED) when it exists but the user is not a member.
func (r *Resolver) ResolveRole(ctx context.Context, userID, workspaceID string) (Role, error) {
	exists, err := r.store.WorkspaceExists(ctx, workspaceID)
	if err != nil {
		return "", apperr.Internal("failed to look up workspace", err)
	}
	if !exists {
		return "", apperr.NotFound("Workspace not found")
	}

	roleName, found, err := r.store.MemberRole(ctx, workspaceID, userID)
	if err != nil {
		return "", apperr.Internal("failed to look up membership", err)
	}
	if !found {
		return "", apperr.Unauthorized(apperr.CodeAccessUnauthorized, "You are not a member of this workspace")
	}

	role, ok := ParseRole(roleName)
	if !ok {
		return "", apperr.Internal("failed to resolve role", fmt.Errorf("unknown role %q", roleName))
	}
	return role, nil
}

// Require resolves the caller's role and authorizes it against required
func (r *Resolver) Require(ctx context.Context, userID, workspaceID string, required ...Permission) (Role, error) {
	role, err := r.ResolveRole(ctx, userID, workspaceID)
	if err != nil {
		return "", err
	}
	if err := Authorize(role, required...); err != nil {
		return "", err
	}
	return role, nil
}
