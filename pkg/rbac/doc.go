// Package rbac provides workspace role-based access control for workboard.
//
// # Overview
//
// Every workspace member holds exactly one role. Roles are ranked
// OWNER > ADMIN > MEMBER and each maps to a fixed set of permissions. The
// table lives in permissions.yaml, is embedded into the binary and parsed
// once at package initialization. Nothing can modify it afterwards.
//
// # Authorization
//
// Authorize is a pure check with AND semantics: every listed permission must
// be granted to the role.
//
//	if err := rbac.Authorize(role, rbac.PermEditProject, rbac.PermViewOnly); err != nil {
//		return err // apperr Unauthorized, code ACCESS_UNAUTHORIZED
//	}
//
// # Membership resolution
//
// Resolver distinguishes a missing workspace (NotFound) from a workspace the
// caller cannot access (Unauthorized with ACCESS_UNAUTHORIZED):
//
//	resolver := rbac.NewResolver(workspaceStore)
//	role, err := resolver.Require(ctx, userID, workspaceID, rbac.PermCreateProject)
//
// # Related Packages
//
//   - pkg/apperr: error kinds returned by the guard and resolver
//   - pkg/workspaces: MembershipStore implementation
package rbac
