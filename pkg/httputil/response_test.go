package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/workboard/pkg/apperr"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"message": "success"}

	err := WriteJSON(w, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "success")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "not found",
			err:         apperr.NotFound("Workspace not found"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "RESOURCE_NOT_FOUND",
			wantMessage: "Workspace not found",
		},
		{
			name:        "unauthorized",
			err:         apperr.Unauthorized("", "You are not a member of this workspace"),
			wantStatus:  http.StatusForbidden,
			wantCode:    "ACCESS_UNAUTHORIZED",
			wantMessage: "You are not a member of this workspace",
		},
		{
			name:        "bad request",
			err:         apperr.BadRequest(apperr.CodeLastWorkspace, "cannot delete your last workspace"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    string(apperr.CodeLastWorkspace),
			wantMessage: "cannot delete your last workspace",
		},
		{
			name:        "untyped error is hidden",
			err:         errors.New("pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_SERVER_ERROR",
			wantMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestWriteBadRequest(t *testing.T) {
	w := httptest.NewRecorder()

	WriteBadRequest(w, "invalid input")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.ErrorCode)
	assert.Equal(t, "invalid input", body.Message)
}

func TestWriteUnauthorized(t *testing.T) {
	w := httptest.NewRecorder()

	WriteUnauthorized(w, "missing bearer token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_TOKEN_INVALID", decodeError(t, w).ErrorCode)
}

func TestWriteInternalError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalError(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", decodeError(t, w).ErrorCode)
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteCreated(w, map[string]string{"id": "ws-1"})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "ws-1")
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()

	WriteNoContent(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWriteSuccessMessage(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteSuccessMessage(w, "Notifications marked as read", map[string]int{"updated": 3})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Notifications marked as read", body["message"])
	assert.Equal(t, float64(3), body["data"].(map[string]interface{})["updated"])
}
