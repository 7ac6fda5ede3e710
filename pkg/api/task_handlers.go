package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/tasks"
)

// taskPath reads the workspace and task IDs from the route
func taskPath(w http.ResponseWriter, r *http.Request) (wsID, taskID string, ok bool) {
	if wsID, ok = httputil.ParsePathStringOrError(w, r, "workspaceId"); !ok {
		return
	}
	taskID, ok = httputil.ParsePathStringOrError(w, r, "taskId")
	return
}

// taskFilterFromQuery reads projectId, status, priority, assignedTo, keyword
// and dueDate. List parameters are comma separated.
func taskFilterFromQuery(r *http.Request) (tasks.Filter, error) {
	f := tasks.Filter{
		ProjectID:   httputil.ParseQueryString(r, "projectId", ""),
		AssigneeIDs: httputil.ParseQueryList(r, "assignedTo"),
		Keyword:     httputil.ParseQueryString(r, "keyword", ""),
	}

	for _, raw := range httputil.ParseQueryList(r, "status") {
		st, ok := tasks.ParseStatus(raw)
		if !ok {
			return f, apperr.BadRequest(apperr.CodeValidation, fmt.Sprintf("unknown status %q", raw))
		}
		f.Statuses = append(f.Statuses, st)
	}
	for _, raw := range httputil.ParseQueryList(r, "priority") {
		p, ok := tasks.ParsePriority(raw)
		if !ok {
			return f, apperr.BadRequest(apperr.CodeValidation, fmt.Sprintf("unknown priority %q", raw))
		}
		f.Priorities = append(f.Priorities, p)
	}

	if raw := httputil.ParseQueryString(r, "dueDate", ""); raw != "" {
		due, err := parseDate(raw)
		if err != nil {
			return f, apperr.BadRequest(apperr.CodeValidation, fmt.Sprintf("invalid dueDate %q", raw))
		}
		f.DueDate = &due
	}
	return f, nil
}

// parseDate accepts a calendar day or a full RFC 3339 timestamp
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	wsID, projectID, ok := projectPath(w, r)
	if !ok {
		return
	}
	var req tasks.CreateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	t, err := s.svc.Tasks.Create(r.Context(), currentUser(r), wsID, projectID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteCreated(w, t)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	filter, err := taskFilterFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	list, err := s.svc.Tasks.List(r.Context(), currentUser(r), wsID, filter, page)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	wsID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	t, err := s.svc.Tasks.Get(r.Context(), currentUser(r), wsID, taskID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	wsID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}
	var req tasks.UpdateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	t, err := s.svc.Tasks.Update(r.Context(), currentUser(r), wsID, taskID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	wsID, taskID, ok := taskPath(w, r)
	if !ok {
		return
	}

	if err := s.svc.Tasks.Delete(r.Context(), currentUser(r), wsID, taskID); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccessMessage(w, "Task deleted successfully", nil)
}
