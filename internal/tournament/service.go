// Package tournament implements the admin and unit use cases on top of the
// row store: catalog management, units and their codes, results, settings
// and exports.
package tournament

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"sportsreg/internal/models"
	"sportsreg/internal/registration"
	"sportsreg/internal/store"
	"sportsreg/internal/util"
)

const (
	codeLength      = 6
	codeGenAttempts = 5
)

var ErrInvalidRank = errors.New("invalid rank")

type Service struct {
	st  *store.Store
	cfg *store.ConfigStore
	log *slog.Logger
	now func() time.Time
}

func New(st *store.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{st: st, cfg: st.Config(), log: log, now: time.Now}
}

// NewEditor returns a registration editor bound to this service's store.
func (s *Service) NewEditor() *registration.Editor {
	return registration.NewEditor(s.st, s.cfg)
}

// ---------- Overview ----------

type Overview struct {
	TournamentName string `json:"tournament_name"`
	Deadline       string `json:"deadline"`
	DeadlinePassed bool   `json:"deadline_passed"`
	Disciplines    int    `json:"disciplines"`
	Units          int    `json:"units"`
	Athletes       int    `json:"athletes"`
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	var err error
	if ov.TournamentName, _, err = s.cfg.Get(ctx, store.KeyTournamentName); err != nil {
		return ov, err
	}
	if ov.Deadline, _, err = s.cfg.Get(ctx, store.KeyDeadline); err != nil {
		return ov, err
	}
	if ov.DeadlinePassed, err = registration.DeadlinePassed(ctx, s.cfg, s.now()); err != nil {
		return ov, err
	}
	counts := []struct {
		table string
		dst   *int
	}{
		{store.TableDisciplines, &ov.Disciplines},
		{store.TableUnits, &ov.Units},
		{store.TableRegistrations, &ov.Athletes},
	}
	for _, c := range counts {
		rows, err := s.st.List(ctx, c.table)
		if err != nil {
			return ov, err
		}
		*c.dst = len(rows)
	}
	return ov, nil
}

// ---------- Settings ----------

func (s *Service) SetTournamentName(ctx context.Context, name string) error {
	return s.cfg.Set(ctx, store.KeyTournamentName, strings.TrimSpace(name))
}

// SetDeadline stores a YYYY-MM-DD deadline; an empty value clears it.
func (s *Service) SetDeadline(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse(util.DateLayout, date); err != nil {
			return &registration.ValidationError{Field: "deadline", Message: "expected YYYY-MM-DD"}
		}
	}
	return s.cfg.Set(ctx, store.KeyDeadline, date)
}

func (s *Service) Settings(ctx context.Context) ([]models.ConfigEntry, error) {
	return s.cfg.All(ctx)
}

// ---------- Systems ----------

func (s *Service) ListSystems(ctx context.Context) ([]models.System, error) {
	rows, err := s.st.List(ctx, store.TableSystems)
	if err != nil {
		return nil, err
	}
	out := make([]models.System, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.SystemFromRow(r))
	}
	return out, nil
}

func (s *Service) CreateSystem(ctx context.Context, name string) (models.System, error) {
	sys := models.System{Name: strings.TrimSpace(name)}
	if sys.Name == "" {
		return models.System{}, &registration.ValidationError{Field: "name", Message: "system name is required"}
	}
	id, err := s.st.Insert(ctx, store.TableSystems, sys.Fields())
	if err != nil {
		return models.System{}, err
	}
	sys.ID = id
	s.log.Info("system created", "id", id, "name", sys.Name)
	return sys, nil
}

func (s *Service) DeleteSystem(ctx context.Context, id string) (bool, error) {
	return s.st.Delete(ctx, store.TableSystems, id)
}
