// Package audit writes a JSON audit trail for security review.
//
// Three sources feed it:
//
//   - Subscriber turns every committed domain event (membership changes,
//     renames, deletions, task assignment and status) into an entry with
//     before/after values.
//   - Middleware records rejected requests (401, 403) and server failures
//     with the request context.
//   - LogSuccess and LogFailure are called by the auth handlers for
//     registration and login attempts.
//
// Entries are logrus JSON lines, one per event:
//
//	logger, err := audit.NewFileLogger(audit.FileLoggerConfig{BasePath: "/var/log/workboard"})
//	dispatcher.Subscribe("audit", audit.NewSubscriber(logger).Handle)
//	handler = audit.NewMiddleware(logger).Handler(handler)
//
// NewJSONLogger(os.Stdout) is used when no directory is configured.
package audit
