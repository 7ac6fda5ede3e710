package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/workboard/pkg/audit"
	"github.com/platinummonkey/workboard/pkg/auth"
	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/middleware"
	"github.com/platinummonkey/workboard/pkg/notifications"
	"github.com/platinummonkey/workboard/pkg/observability"
	"github.com/platinummonkey/workboard/pkg/projects"
	"github.com/platinummonkey/workboard/pkg/tasks"
	"github.com/platinummonkey/workboard/pkg/users"
	"github.com/platinummonkey/workboard/pkg/workspaces"
)

// Services are the domain services behind the API
type Services struct {
	Users         *users.Service
	Workspaces    *workspaces.Service
	Projects      *projects.Service
	Tasks         *tasks.Service
	Notifications *notifications.Service
}

// Options configure the HTTP surface. Only Tokens is required.
type Options struct {
	Tokens       *auth.TokenManager
	Limiter      middleware.Limiter
	Audit        audit.Logger
	Metrics      *observability.Metrics
	Logger       *observability.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
}

// Server represents our API server
type Server struct {
	svc     Services
	router  *mux.Router
	handler http.Handler
	logger  *observability.Logger
}

// NewServer creates a new API server with every route registered
func NewServer(svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	if opts.Audit == nil {
		opts.Audit = audit.NopLogger{}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 << 20
	}

	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		logger: opts.Logger,
	}
	s.setupRoutes(opts)

	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(opts.Logger),
		httputil.LoggingMiddleware(opts.Logger),
		httputil.CORSMiddleware(opts.CORSOrigins),
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
		audit.NewMiddleware(opts.Audit).Handler,
	)(s.router)
	s.handler = otelhttp.NewHandler(s.handler, "workboard-api")

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(opts Options) {
	if opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(opts.Metrics))
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", "route not found")
	})

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	public := v1.PathPrefix("/auth").Subrouter()
	if opts.Limiter != nil {
		public.Use(middleware.NewRateLimitMiddleware(opts.Limiter, opts.Logger).Handler)
	}
	public.HandleFunc("/register", s.register).Methods(http.MethodPost)
	public.HandleFunc("/login", s.login).Methods(http.MethodPost)

	// Everything else requires a session
	protected := v1.NewRoute().Subrouter()
	protected.Use(middleware.NewAuthMiddleware(opts.Tokens, false).Handler)
	if opts.Limiter != nil {
		protected.Use(middleware.NewRateLimitMiddleware(opts.Limiter, opts.Logger).Handler)
	}

	// Users
	protected.HandleFunc("/users/me", s.getMe).Methods(http.MethodGet)
	protected.HandleFunc("/users/me/current-workspace", s.setCurrentWorkspace).Methods(http.MethodPut)
	protected.HandleFunc("/users/me/avatar", s.uploadAvatar).Methods(http.MethodPut)

	// Workspaces
	protected.HandleFunc("/workspaces", s.createWorkspace).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces", s.listWorkspaces).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/join/{inviteCode}", s.joinWorkspace).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces/{workspaceId}", s.getWorkspace).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}", s.updateWorkspace).Methods(http.MethodPut)
	protected.HandleFunc("/workspaces/{workspaceId}", s.deleteWorkspace).Methods(http.MethodDelete)
	protected.HandleFunc("/workspaces/{workspaceId}/analytics", s.workspaceAnalytics).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}/invite-code", s.regenerateInviteCode).Methods(http.MethodPost)

	// Members
	protected.HandleFunc("/workspaces/{workspaceId}/members", s.listMembers).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}/members", s.addMember).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces/{workspaceId}/members/{userId}", s.changeMemberRole).Methods(http.MethodPut)
	protected.HandleFunc("/workspaces/{workspaceId}/members/{userId}", s.removeMember).Methods(http.MethodDelete)

	// Projects
	protected.HandleFunc("/workspaces/{workspaceId}/projects", s.createProject).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces/{workspaceId}/projects", s.listProjects).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}/projects/{projectId}", s.getProject).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}/projects/{projectId}", s.updateProject).Methods(http.MethodPut)
	protected.HandleFunc("/workspaces/{workspaceId}/projects/{projectId}", s.deleteProject).Methods(http.MethodDelete)
	protected.HandleFunc("/workspaces/{workspaceId}/projects/{projectId}/analytics", s.projectAnalytics).Methods(http.MethodGet)

	// Tasks
	protected.HandleFunc("/workspaces/{workspaceId}/projects/{projectId}/tasks", s.createTask).Methods(http.MethodPost)
	protected.HandleFunc("/workspaces/{workspaceId}/tasks", s.listTasks).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}/tasks/{taskId}", s.getTask).Methods(http.MethodGet)
	protected.HandleFunc("/workspaces/{workspaceId}/tasks/{taskId}", s.updateTask).Methods(http.MethodPut)
	protected.HandleFunc("/workspaces/{workspaceId}/tasks/{taskId}", s.deleteTask).Methods(http.MethodDelete)

	// Notifications
	protected.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/unread-count", s.unreadCount).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/read-all", s.markAllNotificationsRead).Methods(http.MethodPut)
	protected.HandleFunc("/notifications/{notificationId}/read", s.markNotificationRead).Methods(http.MethodPut)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the route table, mainly for tests that walk it
func (s *Server) Router() *mux.Router {
	return s.router
}
