// Package storage opens the backing services used by workboard: the SQL
// database (PostgreSQL in production, SQLite for development and tests),
// Redis for realtime notification delivery, and S3 for avatar objects.
//
// # Database
//
//	db, err := storage.Open(ctx, cfg.Storage)
//	err = storage.WithTx(ctx, db, func(tx *sqlx.Tx) error {
//		// every statement here uses tx
//	})
//
// Queries are written with "?" placeholders and passed through Rebind so the
// same SQL runs on both drivers. SQLite is restricted to one open
// connection; code running inside WithTx must not use db directly.
//
// # Schema
//
// The schema lives in pkg/storage/migrations and is applied with
// `workboard migrate up`.
//
// # Objects
//
//	objects, err := storage.NewS3ObjectStore(ctx, cfg.Storage)
//	url, err := objects.Put(ctx, "avatars/"+userID+".png", data, "image/png")
package storage
