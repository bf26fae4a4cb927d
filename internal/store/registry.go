package store

const (
	TableConfig        = "config"
	TableSystems       = "systems"
	TableDisciplines   = "disciplines"
	TableContents      = "contents"
	TableUnits         = "units"
	TableRegistrations = "registrations"
)

var tableOrder = []string{
	TableConfig,
	TableSystems,
	TableDisciplines,
	TableContents,
	TableUnits,
	TableRegistrations,
}

var schemas = map[string][]string{
	TableConfig:      {"key", "value"},
	TableSystems:     {"id", "name", "createdAt"},
	TableDisciplines: {"id", "code", "name", "is_exempt", "createdAt"},
	TableContents:    {"id", "discipline_id", "name", "gender", "createdAt"},
	TableUnits:       {"id", "name", "manager", "registrationCode", "createdAt"},
	TableRegistrations: {
		"id", "unitId", "unitName", "athleteName", "gender", "dob", "cccd", "studentId",
		"systemName", "ageGroup", "registered_contents", "rank", "createdAt",
	},
}

// Columns returns a copy of the expected schema of a table.
func Columns(table string) ([]string, bool) {
	cols, ok := schemas[table]
	if !ok {
		return nil, false
	}
	return append([]string(nil), cols...), true
}

// Tables lists every known table in creation order.
func Tables() []string {
	return append([]string(nil), tableOrder...)
}
