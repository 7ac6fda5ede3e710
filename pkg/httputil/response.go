// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/platinummonkey/workboard/pkg/apperr"
)

// ErrorResponse is the error body returned by every endpoint
type ErrorResponse struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes an error body with an explicit code
func WriteErrorMessage(w http.ResponseWriter, status int, code apperr.Code, message string) {
	WriteJSON(w, status, ErrorResponse{
		Message:   message,
		ErrorCode: string(code),
	})
}

// WriteError maps err onto a status code and error body. Untyped errors
// become a 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorMessage(w, apperr.HTTPStatus(err), apperr.CodeOf(err), apperr.PublicMessage(err))
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusBadRequest, apperr.CodeValidation, message)
}

// WriteUnauthorized writes an unauthenticated error (401)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteErrorMessage(w, http.StatusUnauthorized, apperr.CodeTokenInvalid, message)
}

// WriteInternalError writes an internal server error response (500)
func WriteInternalError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, apperr.CodeInternalServerError, "internal server error")
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// MessageResponse is a success body carrying a human readable message
type MessageResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteSuccessMessage writes a 200 with a message and optional data
func WriteSuccessMessage(w http.ResponseWriter, message string, data interface{}) error {
	return WriteJSON(w, http.StatusOK, MessageResponse{
		Message: message,
		Data:    data,
	})
}
