// Package users manages accounts: registration, password login, the current
// workspace pointer and avatar images.
//
//	svc := users.NewService(users.NewStore(db), hasher, tokens, resolver, objects, logger)
//	svc.SetProvisioner(workspaceService) // default workspace, same transaction
//	sess, err := svc.Register(ctx, users.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: pw})
//
// Avatar upload needs an AvatarStore (normally *storage.ObjectStore). When it
// is nil, UploadAvatar fails with FEATURE_UNAVAILABLE.
package users
