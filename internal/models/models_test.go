package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRank(t *testing.T) {
	for _, r := range Ranks {
		assert.True(t, ValidRank(r), r)
	}
	assert.False(t, ValidRank("Tư"))
	assert.False(t, ValidRank("nhất"))
}

func TestDisciplineFromRow(t *testing.T) {
	d := DisciplineFromRow(Row{"id": "D1", "code": "BD", "name": "Bóng đá", "is_exempt": "TRUE"})
	assert.Equal(t, "D1", d.ID)
	assert.True(t, d.IsExempt)
	assert.Equal(t, "TRUE", d.Fields()["is_exempt"])

	d = DisciplineFromRow(Row{"id": "D2"})
	assert.False(t, d.IsExempt)
	assert.Equal(t, "FALSE", d.Fields()["is_exempt"])
}

func TestUnitFromRowNormalizesCode(t *testing.T) {
	u := UnitFromRow(Row{"id": "U1", "name": "10A1", "registrationCode": " ab12cd"})
	assert.Equal(t, "AB12CD", u.RegistrationCode)
}

func TestRegistrationFieldsOmitsEmptyIdentity(t *testing.T) {
	f := Registration{AthleteName: "Nguyen A"}.Fields()
	_, hasID := f["id"]
	_, hasCreated := f["createdAt"]
	assert.False(t, hasID)
	assert.False(t, hasCreated)
	assert.Equal(t, "", f["rank"])

	f = Registration{ID: "R1", CreatedAt: "2025-01-01 00:00:00"}.Fields()
	assert.Equal(t, "R1", f["id"])
	assert.Equal(t, "2025-01-01 00:00:00", f["createdAt"])
}

func TestRowGetOnNil(t *testing.T) {
	var r Row
	assert.Equal(t, "", r.Get("anything"))
}
