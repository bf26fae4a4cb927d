package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sportsreg/internal/access"
	"sportsreg/internal/logging"
	"sportsreg/internal/models"
	"sportsreg/internal/registration"
	"sportsreg/internal/tabular"
	"sportsreg/internal/tournament"
)

// registrationRequest carries the athlete form. Contents are catalog labels
// such as "Bóng đá: Nam" or "Cờ vua (Chung)".
type registrationRequest struct {
	AthleteName string   `json:"athleteName" validate:"max=200"`
	Gender      string   `json:"gender" validate:"max=32"`
	DOB         string   `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	CCCD        string   `json:"cccd" validate:"omitempty,numeric,max=20"`
	StudentID   string   `json:"studentId" validate:"max=64"`
	SystemName  string   `json:"systemName" validate:"max=200"`
	AgeGroup    string   `json:"ageGroup" validate:"max=64"`
	Contents    []string `json:"contents" validate:"dive,required"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.svc.Catalog(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	labels := make([]string, len(cat))
	for i, sel := range cat {
		labels[i] = sel.String()
	}
	writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleUnitRegistrations(w http.ResponseWriter, r *http.Request) {
	unit, _ := sessionFrom(r.Context()).access.Unit()
	regs, err := s.svc.ListRegistrationsOf(r.Context(), unit.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	out := make([]registrationView, len(regs))
	for i, reg := range regs {
		out[i] = toRegistrationView(reg, true)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSubmitRegistration creates a registration, or saves the one loaded
// by handleBeginEdit.
func (s *Server) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := r.Context()
	cat, err := s.svc.Catalog(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	selected := make([]registration.Selection, 0, len(req.Contents))
	for _, label := range req.Contents {
		sel, ok := cat.Lookup(label)
		if !ok {
			s.respondError(w, r, &registration.ValidationError{
				Field:   "contents",
				Message: fmt.Sprintf("%q is not offered", label),
			})
			return
		}
		selected = append(selected, sel)
	}

	cs := sessionFrom(ctx)
	if err := s.ctl.Refresh(ctx, &cs.access); err != nil {
		cs.editor.CancelEdit()
		s.respondError(w, r, err)
		return
	}
	unit, _ := cs.access.Unit()
	editing := cs.editor.Mode() == registration.ModeEdit
	id, err := cs.editor.Submit(ctx, unit, registration.Form{
		AthleteName: req.AthleteName,
		Gender:      req.Gender,
		DOB:         req.DOB,
		CCCD:        req.CCCD,
		StudentID:   req.StudentID,
		SystemName:  req.SystemName,
		AgeGroup:    req.AgeGroup,
	}, selected)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusCreated
	if editing {
		status = http.StatusOK
	}
	logging.FromContext(ctx).Info("registration saved", "unit_id", unit.ID, "registration_id", id, "edit", editing)
	writeJSON(w, status, map[string]string{"id": id})
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cs := sessionFrom(ctx)
	reg, err := s.ownRegistration(r, cs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	cat, err := s.svc.Catalog(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	draft := cs.editor.BeginEdit(*reg, cat)
	writeJSON(w, http.StatusOK, toDraftView(reg.ID, draft))
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	cs := sessionFrom(r.Context())
	cs.editor.CancelEdit()
	writeJSON(w, http.StatusOK, newSessionView(cs))
}

func (s *Server) handleUnitDeleteRegistration(w http.ResponseWriter, r *http.Request) {
	cs := sessionFrom(r.Context())
	reg, err := s.ownRegistration(r, cs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	ok, err := cs.editor.DeleteRegistration(r.Context(), reg.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !ok {
		s.respondError(w, r, fmt.Errorf("registration %s: %w", reg.ID, tabular.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownRegistration loads the {id} registration and checks that it belongs
// to the session's unit.
func (s *Server) ownRegistration(r *http.Request, cs *clientSession) (*models.Registration, error) {
	id := chi.URLParam(r, "id")
	reg, err := s.svc.GetRegistration(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("registration %s: %w", id, tabular.ErrNotFound)
	}
	unit, _ := cs.access.Unit()
	if reg.UnitID != unit.ID {
		return nil, fmt.Errorf("registration %s: %w", id, access.ErrForbidden)
	}
	return reg, nil
}

func (s *Server) handleUnitExport(w http.ResponseWriter, r *http.Request) {
	unit, _ := sessionFrom(r.Context()).access.Unit()
	s.writeCSV(w, r, unit.ID)
}

func (s *Server) handleUnitExportLink(w http.ResponseWriter, r *http.Request) {
	unit, _ := sessionFrom(r.Context()).access.Unit()
	writeJSON(w, http.StatusOK, map[string]string{"url": s.exportLink(unit.ID)})
}

// handleSignedExport serves a unit's CSV to holders of a link signed with
// the export secret.
func (s *Server) handleSignedExport(w http.ResponseWriter, r *http.Request) {
	unitID := r.URL.Query().Get("unit_id")
	token := r.URL.Query().Get("token")
	if unitID == "" || token == "" {
		s.respondError(w, r, fmt.Errorf("%w: unit_id and token required", errBadRequest))
		return
	}
	if !tournament.ValidExportToken(s.cfg.ExportSecret, unitID, token) {
		s.respondError(w, r, fmt.Errorf("invalid token: %w", access.ErrForbidden))
		return
	}
	s.writeCSV(w, r, unitID)
}

func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, unitID string) {
	u, err := s.svc.GetUnit(r.Context(), unitID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if u == nil {
		s.respondError(w, r, fmt.Errorf("unit %s: %w", unitID, tabular.ErrNotFound))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="unit_`+u.ID+`.csv"`)
	if err := s.svc.ExportUnitCSV(r.Context(), u.ID, w); err != nil {
		logging.FromContext(r.Context()).Error("csv export", "unit_id", u.ID, "error", err)
	}
}
