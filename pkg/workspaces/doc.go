// Package workspaces manages workspaces and their memberships.
//
// Every mutation resolves the caller's role through the rbac resolver,
// authorizes it, writes, and then publishes a domain event:
//
//	svc := workspaces.NewService(store, userStore, rbac.NewResolver(store), dispatcher, logger)
//	ws, err := svc.Create(ctx, userID, workspaces.CreateInput{Name: "Acme"})
//
// Store implements rbac.MembershipStore, so the same store backs the
// resolver used by the project and task services.
//
// Deleting a workspace removes its tasks, projects and memberships and fixes
// up current-workspace pointers in a single transaction. An owner cannot
// delete their last workspace. The owner can never be removed as a member.
package workspaces
