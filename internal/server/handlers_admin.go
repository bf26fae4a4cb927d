package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sportsreg/internal/logging"
	"sportsreg/internal/models"
	"sportsreg/internal/tabular"
	"sportsreg/internal/tournament"
)

type settingsRequest struct {
	TournamentName *string `json:"tournament_name" validate:"omitempty,max=200"`
	Deadline       *string `json:"deadline"`
}

type disciplineRequest struct {
	Code     string `json:"code" validate:"required,max=16"`
	Name     string `json:"name" validate:"required,max=200"`
	IsExempt bool   `json:"is_exempt"`
}

type contentRequest struct {
	DisciplineID string `json:"discipline_id" validate:"required"`
	Name         string `json:"name" validate:"required,max=200"`
	Gender       string `json:"gender" validate:"max=32"`
}

type unitRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Manager string `json:"manager" validate:"required,max=200"`
}

type systemRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type rankRequest struct {
	Rank string `json:"rank"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Settings(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePutSettings updates only the settings present in the body.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := r.Context()
	if req.TournamentName != nil {
		if err := s.svc.SetTournamentName(ctx, *req.TournamentName); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	if req.Deadline != nil {
		if err := s.svc.SetDeadline(ctx, *req.Deadline); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	s.handleGetSettings(w, r)
}

func (s *Server) handleListDisciplines(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListDisciplines(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toDisciplineView))
}

func (s *Server) handleCreateDiscipline(w http.ResponseWriter, r *http.Request) {
	var req disciplineRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	d, err := s.svc.CreateDiscipline(r.Context(), req.Code, req.Name, req.IsExempt)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDisciplineView(d))
}

func (s *Server) handleDeleteDiscipline(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, "discipline", s.svc.DeleteDiscipline)
}

func (s *Server) handleListContents(w http.ResponseWriter, r *http.Request) {
	var (
		list []models.Content
		err  error
	)
	if id := r.URL.Query().Get("discipline_id"); id != "" {
		list, err = s.svc.ListContentsOf(r.Context(), id)
	} else {
		list, err = s.svc.ListContents(r.Context())
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toContentView))
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	c, err := s.svc.CreateContent(r.Context(), req.DisciplineID, req.Name, req.Gender)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContentView(c))
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, "content", s.svc.DeleteContent)
}

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListUnits(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := make([]unitView, len(list))
	for i, u := range list {
		out[i] = toUnitView(u, true)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	u, err := s.svc.CreateUnit(r.Context(), req.Name, req.Manager)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUnitView(u, true))
}

func (s *Server) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, "unit", s.svc.DeleteUnit)
}

func (s *Server) handleAdminExportLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := s.svc.GetUnit(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if u == nil {
		s.respondError(w, r, fmt.Errorf("unit %s: %w", id, tabular.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": s.exportLink(u.ID)})
}

func (s *Server) handleListSystems(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListSystems(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, toSystemView))
}

func (s *Server) handleCreateSystem(w http.ResponseWriter, r *http.Request) {
	var req systemRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	sys, err := s.svc.CreateSystem(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSystemView(sys))
}

func (s *Server) handleDeleteSystem(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, "system", s.svc.DeleteSystem)
}

func (s *Server) handleSetRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	ok, err := s.svc.SetRank(r.Context(), id, req.Rank)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !ok {
		s.respondError(w, r, fmt.Errorf("registration %s: %w", id, tabular.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "rank": req.Rank})
}

func (s *Server) handleAdminDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	s.deleteByID(w, r, "registration", s.svc.DeleteRegistration)
}

type deleteFunc func(ctx context.Context, id string) (bool, error)

func (s *Server) deleteByID(w http.ResponseWriter, r *http.Request, kind string, del deleteFunc) {
	id := chi.URLParam(r, "id")
	ok, err := del(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !ok {
		s.respondError(w, r, fmt.Errorf("%s %s: %w", kind, id, tabular.ErrNotFound))
		return
	}
	logging.FromContext(r.Context()).Info("deleted", "kind", kind, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportLink(unitID string) string {
	return tournament.ExportLink(s.cfg.BasePublicURL, s.cfg.ExportSecret, unitID)
}
