// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, workspace)
//	httputil.WriteCreated(w, task)
//	httputil.WriteNoContent(w)
//
// Errors are written from an apperr.Error, so every handler produces the
// same body shape:
//
//	{"message": "Workspace not found", "errorCode": "RESOURCE_NOT_FOUND"}
//
//	if err != nil {
//		httputil.WriteError(w, err)
//		return
//	}
//
// # Request Parsing
//
//	var req CreateTaskRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
//	id, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
//	limit, err := httputil.ParseQueryInt(r, "limit", 20)
//	statuses := httputil.ParseQueryList(r, "status")
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)(router)
package httputil
