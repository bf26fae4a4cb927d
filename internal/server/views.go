package server

import (
	"sportsreg/internal/models"
	"sportsreg/internal/registration"
)

type sessionView struct {
	Token    string    `json:"token,omitempty"`
	Role     string    `json:"role"`
	Unit     *unitView `json:"unit,omitempty"`
	Mode     string    `json:"mode,omitempty"`
	EditedID string    `json:"edited_id,omitempty"`
}

type disciplineView struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsExempt  bool   `json:"is_exempt"`
	CreatedAt string `json:"createdAt"`
}

type contentView struct {
	ID           string `json:"id"`
	DisciplineID string `json:"discipline_id"`
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	CreatedAt    string `json:"createdAt"`
}

type unitView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Manager          string `json:"manager"`
	RegistrationCode string `json:"registrationCode,omitempty"`
	CreatedAt        string `json:"createdAt"`
}

type systemView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type registrationView struct {
	ID                 string   `json:"id"`
	UnitID             string   `json:"unitId"`
	UnitName           string   `json:"unitName"`
	AthleteName        string   `json:"athleteName"`
	Gender             string   `json:"gender"`
	DOB                string   `json:"dob"`
	CCCD               string   `json:"cccd,omitempty"`
	StudentID          string   `json:"studentId"`
	SystemName         string   `json:"systemName"`
	AgeGroup           string   `json:"ageGroup"`
	RegisteredContents string   `json:"registered_contents"`
	Contents           []string `json:"contents"`
	Rank               string   `json:"rank"`
	CreatedAt          string   `json:"createdAt"`
}

type draftView struct {
	ID          string   `json:"id"`
	AthleteName string   `json:"athleteName"`
	Gender      string   `json:"gender"`
	DOB         string   `json:"dob"`
	CCCD        string   `json:"cccd"`
	StudentID   string   `json:"studentId"`
	SystemName  string   `json:"systemName"`
	AgeGroup    string   `json:"ageGroup"`
	Contents    []string `json:"contents"`
	Stale       []string `json:"stale,omitempty"`
}

func newSessionView(cs *clientSession) sessionView {
	v := sessionView{Token: cs.token, Role: cs.access.Role().String()}
	if u, ok := cs.access.Unit(); ok {
		uv := toUnitView(u, false)
		v.Unit = &uv
		v.Mode = "create"
		if cs.editor.Mode() == registration.ModeEdit {
			v.Mode = "edit"
			reg, _ := cs.editor.Editing()
			v.EditedID = reg.ID
		}
	}
	return v
}

func toDisciplineView(d models.Discipline) disciplineView {
	return disciplineView{ID: d.ID, Code: d.Code, Name: d.Name, IsExempt: d.IsExempt, CreatedAt: d.CreatedAt}
}

func toContentView(c models.Content) contentView {
	return contentView{ID: c.ID, DisciplineID: c.DisciplineID, Name: c.Name, Gender: c.Gender, CreatedAt: c.CreatedAt}
}

// toUnitView hides the login code unless withCode is set.
func toUnitView(u models.Unit, withCode bool) unitView {
	v := unitView{ID: u.ID, Name: u.Name, Manager: u.Manager, CreatedAt: u.CreatedAt}
	if withCode {
		v.RegistrationCode = u.RegistrationCode
	}
	return v
}

func toSystemView(s models.System) systemView {
	return systemView{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
}

// toRegistrationView leaves the citizen id out of public listings.
func toRegistrationView(r models.Registration, withCCCD bool) registrationView {
	v := registrationView{
		ID:                 r.ID,
		UnitID:             r.UnitID,
		UnitName:           r.UnitName,
		AthleteName:        r.AthleteName,
		Gender:             r.Gender,
		DOB:                r.DOB,
		StudentID:          r.StudentID,
		SystemName:         r.SystemName,
		AgeGroup:           r.AgeGroup,
		RegisteredContents: r.RegisteredContents,
		Contents:           registration.Split(r.RegisteredContents),
		Rank:               r.Rank,
		CreatedAt:          r.CreatedAt,
	}
	if v.Contents == nil {
		v.Contents = []string{}
	}
	if withCCCD {
		v.CCCD = r.CCCD
	}
	return v
}

func toDraftView(id string, d registration.Draft) draftView {
	labels := make([]string, len(d.Selected))
	for i, sel := range d.Selected {
		labels[i] = sel.String()
	}
	return draftView{
		ID:          id,
		AthleteName: d.Form.AthleteName,
		Gender:      d.Form.Gender,
		DOB:         d.Form.DOB,
		CCCD:        d.Form.CCCD,
		StudentID:   d.Form.StudentID,
		SystemName:  d.Form.SystemName,
		AgeGroup:    d.Form.AgeGroup,
		Contents:    labels,
		Stale:       d.Stale,
	}
}

func mapSlice[T, V any](in []T, f func(T) V) []V {
	out := make([]V, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
