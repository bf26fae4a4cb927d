package server

import (
	"net/http"

	"sportsreg/internal/access"
	"sportsreg/internal/logging"
)

type adminLoginRequest struct {
	Secret string `json:"secret" validate:"required"`
}

type unitLoginRequest struct {
	Code string `json:"code" validate:"required,max=16"`
}

// handleNewSession issues a stored guest session.
func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	cs := s.sessions.fresh()
	s.sessions.persist(cs)
	writeJSON(w, http.StatusCreated, newSessionView(cs))
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(sessionFrom(r.Context())))
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	cs := sessionFrom(r.Context())
	if err := s.ctl.SubmitAdminSecret(&cs.access, req.Secret); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.sessions.persist(cs)
	logging.FromContext(r.Context()).Info("admin logged in")
	writeJSON(w, http.StatusOK, newSessionView(cs))
}

func (s *Server) handleUnitLogin(w http.ResponseWriter, r *http.Request) {
	var req unitLoginRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	cs := sessionFrom(r.Context())
	if err := s.ctl.SubmitUnitCode(r.Context(), &cs.access, req.Code); err != nil {
		s.respondError(w, r, err)
		return
	}
	cs.editor.CancelEdit()
	s.sessions.persist(cs)
	u, _ := cs.access.Unit()
	logging.FromContext(r.Context()).Info("unit logged in", "unit_id", u.ID)
	writeJSON(w, http.StatusOK, newSessionView(cs))
}

// handleLogout returns the session to guest and forgets its token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cs := sessionFrom(r.Context())
	s.ctl.Logout(&cs.access)
	cs.editor.CancelEdit()
	if cs.token != "" {
		s.sessions.drop(cs.token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.Overview(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// handleResults lists every registration with its rank. Admins also see
// citizen ids.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	regs, err := s.svc.ListRegistrations(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	full := sessionFrom(r.Context()).access.Can(access.OpEnterResults)
	out := make([]registrationView, len(regs))
	for i, reg := range regs {
		out[i] = toRegistrationView(reg, full)
	}
	writeJSON(w, http.StatusOK, out)
}
