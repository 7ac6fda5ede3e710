// Package async runs best-effort background work with panic recovery and a
// timeout.
//
//	async.SafeGo(ctx, 30*time.Second, "delete old avatar", logger, func(ctx context.Context) error {
//		return objects.Delete(ctx, key)
//	})
//
// Services that must drain their background work on shutdown keep an
// async.Group and call Wait.
package async
