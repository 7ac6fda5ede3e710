package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name:        "valid JSON",
			body:        `{"name": "test"}`,
			expectError: false,
		},
		{
			name:        "invalid JSON",
			body:        `{invalid}`,
			expectError: true,
		},
		{
			name:        "empty body",
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(tt.body))
			var dest map[string]string

			err := ParseJSON(req, &dest)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "test", dest["name"])
			}
		})
	}
}

func TestParseJSON_UnknownField(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(`{"name":"a","extra":1}`))
	var dest struct {
		Name string `json:"name"`
	}

	err := ParseJSON(req, &dest)

	assert.Error(t, err)
}

func TestParseJSONOrError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		expectOK   bool
		expectCode int
	}{
		{
			name:     "valid JSON",
			body:     `{"name": "test"}`,
			expectOK: true,
		},
		{
			name:       "invalid JSON",
			body:       `{invalid}`,
			expectOK:   false,
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			var dest map[string]string

			ok := ParseJSONOrError(w, req, &dest)

			assert.Equal(t, tt.expectOK, ok)
			if !tt.expectOK {
				assert.Equal(t, tt.expectCode, w.Code)
				assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
			}
		})
	}
}

func TestParsePathString(t *testing.T) {
	tests := []struct {
		name        string
		vars        map[string]string
		key         string
		expected    string
		expectError bool
	}{
		{
			name:     "present",
			vars:     map[string]string{"workspaceId": "ws-1"},
			key:      "workspaceId",
			expected: "ws-1",
		},
		{
			name:        "missing",
			vars:        map[string]string{},
			key:         "workspaceId",
			expectError: true,
		},
		{
			name:        "blank",
			vars:        map[string]string{"workspaceId": "  "},
			key:         "workspaceId",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mux.SetURLVars(httptest.NewRequest("GET", "/test", nil), tt.vars)

			val, err := ParsePathString(req, tt.key)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}

func TestParsePathStringOrError(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest("GET", "/test", nil), map[string]string{})
	w := httptest.NewRecorder()

	_, ok := ParsePathStringOrError(w, req, "taskId")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expected    int
		expectError bool
	}{
		{name: "default", query: "", expected: 20},
		{name: "valid", query: "?limit=50", expected: 50},
		{name: "invalid", query: "?limit=abc", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test"+tt.query, nil)

			val, err := ParseQueryInt(req, "limit", 20)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest("GET", "/test?search=+roadmap+", nil)

	assert.Equal(t, "roadmap", ParseQueryString(req, "search", ""))
	assert.Equal(t, "fallback", ParseQueryString(req, "missing", "fallback"))
}

func TestParseQueryList(t *testing.T) {
	req := httptest.NewRequest("GET", "/test?status=TODO,,IN_PROGRESS,+DONE", nil)

	assert.Equal(t, []string{"TODO", "IN_PROGRESS", "DONE"}, ParseQueryList(req, "status"))
	assert.Nil(t, ParseQueryList(req, "priority"))
}

func TestParseQueryBool(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expected    bool
		expectError bool
	}{
		{name: "default", query: "", expected: false},
		{name: "true", query: "?unread=true", expected: true},
		{name: "one", query: "?unread=1", expected: true},
		{name: "invalid", query: "?unread=maybe", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test"+tt.query, nil)

			val, err := ParseQueryBool(req, "unread", false)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}
