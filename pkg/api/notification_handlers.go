package api

import (
	"net/http"

	"github.com/platinummonkey/workboard/pkg/apperr"
	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/notifications"
)

type unreadCountResponse struct {
	Count int `json:"count"`
}

type markAllReadResponse struct {
	Updated int `json:"updated"`
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseQueryInt(r, "limit", notifications.DefaultListLimit)
	if err != nil {
		s.fail(w, r, apperr.BadRequest(apperr.CodeValidation, err.Error()))
		return
	}
	unread, err := httputil.ParseQueryBool(r, "unread", false)
	if err != nil {
		s.fail(w, r, apperr.BadRequest(apperr.CodeValidation, err.Error()))
		return
	}

	list, err := s.svc.Notifications.List(r.Context(), currentUser(r), notifications.ListOptions{
		Limit:      limit,
		UnreadOnly: unread,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Notifications.UnreadCount(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, unreadCountResponse{Count: n})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "notificationId")
	if !ok {
		return
	}

	n, err := s.svc.Notifications.MarkAsRead(r.Context(), currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, n)
}

func (s *Server) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Notifications.MarkAllAsRead(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	httputil.WriteSuccess(w, markAllReadResponse{Updated: n})
}
