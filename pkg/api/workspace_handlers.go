package api

import (
	"net/http"

	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/rbac"
	"github.com/platinummonkey/workboard/pkg/workspaces"
)

type changeRoleRequest struct {
	Role rbac.Role `json:"role"`
}

func (s *Server) createWorkspace(w http.ResponseWriter, r *http.Request) {
	var req workspaces.CreateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ws, err := s.svc.Workspaces.Create(r.Context(), currentUser(r), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteCreated(w, ws)
}

func (s *Server) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Workspaces.ListForUser(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}

	ws, err := s.svc.Workspaces.Get(r.Context(), currentUser(r), wsID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, ws)
}

func (s *Server) updateWorkspace(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	var req workspaces.UpdateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ws, err := s.svc.Workspaces.Update(r.Context(), currentUser(r), wsID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, ws)
}

func (s *Server) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}

	if err := s.svc.Workspaces.Delete(r.Context(), currentUser(r), wsID); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccessMessage(w, "Workspace deleted successfully", nil)
}

func (s *Server) workspaceAnalytics(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}

	a, err := s.svc.Workspaces.Analytics(r.Context(), currentUser(r), wsID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, a)
}

func (s *Server) regenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}

	ws, err := s.svc.Workspaces.RegenerateInviteCode(r.Context(), currentUser(r), wsID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, ws)
}

func (s *Server) joinWorkspace(w http.ResponseWriter, r *http.Request) {
	code, ok := httputil.ParsePathStringOrError(w, r, "inviteCode")
	if !ok {
		return
	}

	ws, err := s.svc.Workspaces.JoinByInvite(r.Context(), currentUser(r), code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, ws)
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}

	members, err := s.svc.Workspaces.ListMembers(r.Context(), currentUser(r), wsID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, members)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	var req workspaces.AddMemberInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	m, err := s.svc.Workspaces.AddMember(r.Context(), currentUser(r), wsID, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteCreated(w, m)
}

func (s *Server) changeMemberRole(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	targetID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}
	var req changeRoleRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	m, err := s.svc.Workspaces.ChangeRole(r.Context(), currentUser(r), wsID, targetID, req.Role)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, m)
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	wsID, ok := httputil.ParsePathStringOrError(w, r, "workspaceId")
	if !ok {
		return
	}
	targetID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	if err := s.svc.Workspaces.RemoveMember(r.Context(), currentUser(r), wsID, targetID); err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccessMessage(w, "Member removed successfully", nil)
}
