package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthDB(t *testing.T) (sqlmock.Sqlmock, *HealthChecker, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	checker := NewHealthChecker(db, nil, "test")
	return mock, checker, func() { db.Close() }
}

func TestHealthChecker_Database(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		mock, checker, cleanup := newHealthDB(t)
		defer cleanup()

		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

		status := checker.Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, StatusHealthy, status.Dependencies["database"].Status)
		assert.Equal(t, "test", status.Version)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is unhealthy", func(t *testing.T) {
		mock, checker, cleanup := newHealthDB(t)
		defer cleanup()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		status := checker.Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
		assert.Contains(t, status.Dependencies["database"].Message, "connection refused")
	})

	t.Run("query failure is unhealthy", func(t *testing.T) {
		mock, checker, cleanup := newHealthDB(t)
		defer cleanup()

		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("read-only transaction"))

		status := checker.Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
		assert.Contains(t, status.Dependencies["database"].Message, "query failed")
	})
}

func TestHealthChecker_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	checker := NewHealthChecker(nil, client, "test")

	status := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, StatusHealthy, status.Dependencies["redis"].Status)

	mr.Close()

	status = checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, StatusUnhealthy, status.Dependencies["redis"].Status)
}

func TestHealthChecker_Handlers(t *testing.T) {
	mock, checker, cleanup := newHealthDB(t)
	defer cleanup()

	mux := http.NewServeMux()
	RegisterHealthRoutes(mux, checker)

	t.Run("liveness", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), StatusHealthy)
	})

	t.Run("readiness unhealthy returns 503", func(t *testing.T) {
		mock.ExpectPing().WillReturnError(errors.New("down"))

		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, StatusUnhealthy, body.Status)
	})
}
