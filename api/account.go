package api

import (
	"net/http"

	"github.com/crowdstake/crowdstake-server/account"
)

func (s *Server) onSignup(w http.ResponseWriter, r *http.Request) {
	var req account.SignupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	u, err := s.services.Accounts.Signup(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": u})
}

func (s *Server) onLogin(w http.ResponseWriter, r *http.Request) {
	var req account.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	u, err := s.services.Accounts.Login(r.Context(), &req)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

func (s *Server) onProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	u, err := s.services.Accounts.Profile(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}
