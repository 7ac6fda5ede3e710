package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/users"
)

// avatarField is the multipart form field carrying the image
const avatarField = "avatar"

type setCurrentWorkspaceRequest struct {
	WorkspaceID string `json:"workspaceId"`
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Users.Get(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, u)
}

func (s *Server) setCurrentWorkspace(w http.ResponseWriter, r *http.Request) {
	var req setCurrentWorkspaceRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.WorkspaceID == "" {
		httputil.WriteBadRequest(w, "workspaceId is required")
		return
	}

	u, err := s.svc.Users.SetCurrentWorkspace(r.Context(), currentUser(r), req.WorkspaceID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, u)
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the image
	r.Body = http.MaxBytesReader(w, r.Body, users.MaxAvatarBytes+64<<10)
	file, header, err := r.FormFile(avatarField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteBadRequest(w, fmt.Sprintf("avatar must be at most %d bytes", users.MaxAvatarBytes))
			return
		}
		httputil.WriteBadRequest(w, "multipart field \"avatar\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, users.MaxAvatarBytes+1))
	if err != nil {
		s.fail(w, r, apperr.Internal("failed to read avatar", err))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	u, err := s.svc.Users.UploadAvatar(r.Context(), currentUser(r), data, contentType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, u)
}
