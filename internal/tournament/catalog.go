package tournament

import (
	"context"
	"strings"

	"sportsreg/internal/models"
	"sportsreg/internal/registration"
	"sportsreg/internal/store"
)

func (s *Service) ListDisciplines(ctx context.Context) ([]models.Discipline, error) {
	rows, err := s.st.List(ctx, store.TableDisciplines)
	if err != nil {
		return nil, err
	}
	out := make([]models.Discipline, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.DisciplineFromRow(r))
	}
	return out, nil
}

func (s *Service) CreateDiscipline(ctx context.Context, code, name string, exempt bool) (models.Discipline, error) {
	d := models.Discipline{
		Code:     strings.ToUpper(strings.TrimSpace(code)),
		Name:     strings.TrimSpace(name),
		IsExempt: exempt,
	}
	if d.Code == "" {
		return models.Discipline{}, &registration.ValidationError{Field: "code", Message: "discipline code is required"}
	}
	if d.Name == "" {
		return models.Discipline{}, &registration.ValidationError{Field: "name", Message: "discipline name is required"}
	}
	id, err := s.st.Insert(ctx, store.TableDisciplines, d.Fields())
	if err != nil {
		return models.Discipline{}, err
	}
	d.ID = id
	s.log.Info("discipline created", "id", id, "code", d.Code)
	return d, nil
}

// DeleteDiscipline removes the discipline only; its contents stay behind
// as orphans and drop out of the catalog.
func (s *Service) DeleteDiscipline(ctx context.Context, id string) (bool, error) {
	return s.st.Delete(ctx, store.TableDisciplines, id)
}

func (s *Service) ListContents(ctx context.Context) ([]models.Content, error) {
	rows, err := s.st.List(ctx, store.TableContents)
	if err != nil {
		return nil, err
	}
	out := make([]models.Content, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ContentFromRow(r))
	}
	return out, nil
}

func (s *Service) ListContentsOf(ctx context.Context, disciplineID string) ([]models.Content, error) {
	all, err := s.ListContents(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Content
	for _, c := range all {
		if c.DisciplineID == disciplineID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Service) CreateContent(ctx context.Context, disciplineID, name, gender string) (models.Content, error) {
	c := models.Content{
		DisciplineID: strings.TrimSpace(disciplineID),
		Name:         strings.TrimSpace(name),
		Gender:       strings.TrimSpace(gender),
	}
	if c.DisciplineID == "" {
		return models.Content{}, &registration.ValidationError{Field: "discipline_id", Message: "discipline is required"}
	}
	if c.Name == "" {
		return models.Content{}, &registration.ValidationError{Field: "name", Message: "content name is required"}
	}
	id, err := s.st.Insert(ctx, store.TableContents, c.Fields())
	if err != nil {
		return models.Content{}, err
	}
	c.ID = id
	s.log.Info("content created", "id", id, "discipline_id", c.DisciplineID)
	return c, nil
}

func (s *Service) DeleteContent(ctx context.Context, id string) (bool, error) {
	return s.st.Delete(ctx, store.TableContents, id)
}

// Catalog returns the selections units can currently register for.
func (s *Service) Catalog(ctx context.Context) (registration.Catalog, error) {
	disciplines, err := s.ListDisciplines(ctx)
	if err != nil {
		return nil, err
	}
	contents, err := s.ListContents(ctx)
	if err != nil {
		return nil, err
	}
	return registration.BuildCatalog(disciplines, contents), nil
}
