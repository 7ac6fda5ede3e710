package api

import (
	"net/http"

	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/projects"
)

// projectPath reads the workspace and project IDs from the route
func projectPath(w http.ResponseWriter, r *http.Request) (wsID, projectID string, ok bool) {
	if wsID, ok = httputil.ParsePathStringOrError(w, r, "workspaceId"); !ok {
		return
	}
	projectID, ok = httputil.ParsePathStringOrError(w, r, "projectId")
	return
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	var req projects.CreateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	p, err := s.svc.Projects.Create(r.Context(), currentUser(r), wsID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteCreated(w, p)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	list, err := s.svc.Projects.List(r.Context(), currentUser(r), wsID, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	wsID, projectID, ok := projectPath(w, r)
	if !ok {
		return
	}

	p, err := s.svc.Projects.Get(r.Context(), currentUser(r), wsID, projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	wsID, projectID, ok := projectPath(w, r)
	if !ok {
		return
	}
	var req projects.UpdateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	p, err := s.svc.Projects.Update(r.Context(), currentUser(r), wsID, projectID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	wsID, projectID, ok := projectPath(w, r)
	if !ok {
		return
	}

	if err := s.svc.Projects.Delete(r.Context(), currentUser(r), wsID, projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccessMessage(w, "Project deleted successfully", nil)
}

func (s *Server) projectAnalytics(w http.ResponseWriter, r *http.Request) {
	wsID, projectID, ok := projectPath(w, r)
	if !ok {
		return
	}

	a, err := s.svc.Projects.Analytics(r.Context(), currentUser(r), wsID, projectID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, a)
}
