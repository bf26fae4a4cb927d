package models

import (
	"strings"

	"sportsreg/internal/util"
)

// Row is one data row keyed by column name. Rows handed out by the store
// always carry every schema column; missing cells are "".
type Row map[string]string

func (r Row) Get(col string) string {
	if r == nil {
		return ""
	}
	return r[col]
}

type Discipline struct {
	ID        string
	Code      string
	Name      string
	IsExempt  bool
	CreatedAt string
}

type Content struct {
	ID           string
	DisciplineID string
	Name         string
	Gender       string
	CreatedAt    string
}

type Unit struct {
	ID               string
	Name             string
	Manager          string
	RegistrationCode string
	CreatedAt        string
}

type System struct {
	ID        string
	Name      string
	CreatedAt string
}

type Registration struct {
	ID                 string
	UnitID             string
	UnitName           string
	AthleteName        string
	Gender             string
	DOB                string
	CCCD               string
	StudentID          string
	SystemName         string
	AgeGroup           string
	RegisteredContents string
	Rank               string
	CreatedAt          string
}

type ConfigEntry struct {
	Key   string
	Value string
}

// ---------- Ranks ----------

const (
	RankNone      = ""
	RankFirst     = "Nhất"
	RankSecond    = "Nhì"
	RankThird     = "Ba"
	RankHonorable = "Khuyến Khích"
	RankCompleted = "Hoàn thành"
)

var Ranks = []string{RankNone, RankFirst, RankSecond, RankThird, RankHonorable, RankCompleted}

func ValidRank(s string) bool {
	for _, r := range Ranks {
		if r == s {
			return true
		}
	}
	return false
}

// ---------- Row conversion ----------

func DisciplineFromRow(r Row) Discipline {
	return Discipline{
		ID:        r.Get("id"),
		Code:      r.Get("code"),
		Name:      r.Get("name"),
		IsExempt:  util.NormalizeBool(r.Get("is_exempt")),
		CreatedAt: r.Get("createdAt"),
	}
}

func (d Discipline) Fields() Row {
	exempt := "FALSE"
	if d.IsExempt {
		exempt = "TRUE"
	}
	return Row{
		"id":        d.ID,
		"code":      d.Code,
		"name":      d.Name,
		"is_exempt": exempt,
		"createdAt": d.CreatedAt,
	}
}

func ContentFromRow(r Row) Content {
	return Content{
		ID:           r.Get("id"),
		DisciplineID: r.Get("discipline_id"),
		Name:         r.Get("name"),
		Gender:       r.Get("gender"),
		CreatedAt:    r.Get("createdAt"),
	}
}

func (c Content) Fields() Row {
	return Row{
		"id":            c.ID,
		"discipline_id": c.DisciplineID,
		"name":          c.Name,
		"gender":        c.Gender,
		"createdAt":     c.CreatedAt,
	}
}

func UnitFromRow(r Row) Unit {
	return Unit{
		ID:               r.Get("id"),
		Name:             r.Get("name"),
		Manager:          r.Get("manager"),
		RegistrationCode: util.NormalizeCode(r.Get("registrationCode")),
		CreatedAt:        r.Get("createdAt"),
	}
}

func (u Unit) Fields() Row {
	return Row{
		"id":               u.ID,
		"name":             u.Name,
		"manager":          u.Manager,
		"registrationCode": u.RegistrationCode,
		"createdAt":        u.CreatedAt,
	}
}

func SystemFromRow(r Row) System {
	return System{ID: r.Get("id"), Name: r.Get("name"), CreatedAt: r.Get("createdAt")}
}

func (s System) Fields() Row {
	return Row{"id": s.ID, "name": s.Name, "createdAt": s.CreatedAt}
}

func RegistrationFromRow(r Row) Registration {
	return Registration{
		ID:                 r.Get("id"),
		UnitID:             r.Get("unitId"),
		UnitName:           r.Get("unitName"),
		AthleteName:        r.Get("athleteName"),
		Gender:             r.Get("gender"),
		DOB:                r.Get("dob"),
		CCCD:               r.Get("cccd"),
		StudentID:          r.Get("studentId"),
		SystemName:         r.Get("systemName"),
		AgeGroup:           r.Get("ageGroup"),
		RegisteredContents: r.Get("registered_contents"),
		Rank:               strings.TrimSpace(r.Get("rank")),
		CreatedAt:          r.Get("createdAt"),
	}
}

// Fields returns the full field set. Empty id and createdAt are left out so
// an insert generates them and an update does not clobber them.
func (g Registration) Fields() Row {
	row := Row{
		"unitId":              g.UnitID,
		"unitName":            g.UnitName,
		"athleteName":         g.AthleteName,
		"gender":              g.Gender,
		"dob":                 g.DOB,
		"cccd":                g.CCCD,
		"studentId":           g.StudentID,
		"systemName":          g.SystemName,
		"ageGroup":            g.AgeGroup,
		"registered_contents": g.RegisteredContents,
		"rank":                g.Rank,
	}
	if g.ID != "" {
		row["id"] = g.ID
	}
	if g.CreatedAt != "" {
		row["createdAt"] = g.CreatedAt
	}
	return row
}
