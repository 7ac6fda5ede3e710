// Package middleware provides HTTP middleware for authentication and rate
// limiting.
//
// AuthMiddleware verifies the bearer session token and stores the claims
// and user ID in the request context:
//
//	authed := middleware.NewAuthMiddleware(tokens, false).Handler(router)
//
// RateLimitMiddleware limits each authenticated user (or anonymous client
// IP) through a Limiter. RateLimiter keeps token buckets in an expiring LRU
// inside the process; DistributedRateLimiter shares fixed windows across
// instances through Redis and is used when Redis is configured. Rejected
// requests get 429 RATE_LIMITED with a Retry-After header.
package middleware
