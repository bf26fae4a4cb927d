package tournament

import (
	"context"
	"fmt"
	"strings"

	"sportsreg/internal/models"
	"sportsreg/internal/registration"
	"sportsreg/internal/store"
	"sportsreg/internal/util"
)

func (s *Service) ListUnits(ctx context.Context) ([]models.Unit, error) {
	rows, err := s.st.List(ctx, store.TableUnits)
	if err != nil {
		return nil, err
	}
	out := make([]models.Unit, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.UnitFromRow(r))
	}
	return out, nil
}

func (s *Service) GetUnit(ctx context.Context, id string) (*models.Unit, error) {
	units, err := s.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		if u.ID == id {
			uu := u
			return &uu, nil
		}
	}
	return nil, nil
}

// CreateUnit registers a class/team and issues its login code. Codes are
// drawn again if they collide with an existing unit's code.
func (s *Service) CreateUnit(ctx context.Context, name, manager string) (models.Unit, error) {
	u := models.Unit{Name: strings.TrimSpace(name), Manager: strings.TrimSpace(manager)}
	if u.Name == "" {
		return models.Unit{}, &registration.ValidationError{Field: "name", Message: "unit name is required"}
	}
	if u.Manager == "" {
		return models.Unit{}, &registration.ValidationError{Field: "manager", Message: "manager is required"}
	}
	units, err := s.ListUnits(ctx)
	if err != nil {
		return models.Unit{}, err
	}
	used := make(map[string]bool, len(units))
	for _, existing := range units {
		used[existing.RegistrationCode] = true
	}
	for i := 0; i < codeGenAttempts && u.RegistrationCode == ""; i++ {
		code := util.RandomCode(codeLength)
		if used[code] {
			s.log.Warn("registration code collided, retrying", "code", code)
			continue
		}
		u.RegistrationCode = code
	}
	if u.RegistrationCode == "" {
		return models.Unit{}, fmt.Errorf("could not generate a unique registration code")
	}

	id, err := s.st.Insert(ctx, store.TableUnits, u.Fields())
	if err != nil {
		return models.Unit{}, err
	}
	u.ID = id
	s.log.Info("unit created", "id", id, "name", u.Name)
	return u, nil
}

func (s *Service) DeleteUnit(ctx context.Context, id string) (bool, error) {
	return s.st.Delete(ctx, store.TableUnits, id)
}

// FindUnitByCode returns the unit whose registration code matches, or nil.
func (s *Service) FindUnitByCode(ctx context.Context, code string) (*models.Unit, error) {
	code = util.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	units, err := s.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		if u.RegistrationCode == code {
			uu := u
			return &uu, nil
		}
	}
	return nil, nil
}
