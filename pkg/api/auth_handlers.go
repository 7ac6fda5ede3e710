package api

import (
	"net/http"

	"github.com/platinummonkey/workboard/pkg/audit"
	"github.com/platinummonkey/workboard/pkg/httputil"
	"github.com/platinummonkey/workboard/pkg/users"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ctx := r.Context()
	session, err := s.svc.Users.Register(ctx, req)
	if err != nil {
		audit.LogFailure(ctx, audit.EventTypeAuthRegister, err.Error(), map[string]interface{}{"email": req.Email})
		s.fail(w, r, err)
		return
	}

	audit.LogSuccess(ctx, audit.EventTypeAuthRegister, session.User.ID, "account registered", nil)
	httputil.WriteCreated(w, session)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req users.LoginInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	ctx := r.Context()
	session, err := s.svc.Users.Login(ctx, req)
	if err != nil {
		audit.LogFailure(ctx, audit.EventTypeAuthLoginFailed, "login rejected", map[string]interface{}{"email": req.Email})
		s.fail(w, r, err)
		return
	}

	audit.LogSuccess(ctx, audit.EventTypeAuthLogin, session.User.ID, "logged in", nil)
	httputil.WriteSuccess(w, session)
}
