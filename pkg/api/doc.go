// Package api exposes workboard over JSON/HTTP.
//
// All routes live under /api/v1. Registration and login are public; every
// other route requires a bearer token issued by one of them.
//
//	server := api.NewServer(api.Services{...}, api.Options{
//		Tokens:  tokens,
//		Limiter: middleware.NewRateLimiter(nil),
//		Audit:   auditLogger,
//		Metrics: metrics,
//		Logger:  logger,
//	})
//	http.ListenAndServe(":8080", server)
//
// Errors are written as {"message": ..., "errorCode": ...} with the status
// chosen by apperr.HTTPStatus.
package api
