package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsreg/internal/models"
	"sportsreg/internal/tabular"
	"sportsreg/internal/tabular/memory"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
}

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *memory.Backend) {
	t.Helper()
	b := memory.New()
	return New(b, Options{CacheTTL: ttl, Now: fixedNow}), b
}

func TestOpenCreatesAllTables(t *testing.T) {
	s, b := newTestStore(t, 0)
	require.NoError(t, s.Open(context.Background()))

	for _, name := range Tables() {
		header, rows, ok := b.Snapshot(name)
		require.True(t, ok, name)
		want, _ := Columns(name)
		assert.Equal(t, want, header, name)
		assert.Empty(t, rows, name)
	}
}

func TestInsertThenList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Minute)

	id, err := s.Insert(ctx, TableDisciplines, models.Row{"code": "BD", "name": "Bóng đá"})
	require.NoError(t, err)
	assert.Len(t, id, idLength)

	rows, err := s.List(ctx, TableDisciplines)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Row{
		"id":        id,
		"code":      "BD",
		"name":      "Bóng đá",
		"is_exempt": "",
		"createdAt": "2025-03-01 08:30:00",
	}, rows[0])
}

func TestInsertKeepsSuppliedIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	id, err := s.Insert(ctx, TableSystems, models.Row{"id": "SYS00001", "name": "Open", "createdAt": "2024-01-01 00:00:00"})
	require.NoError(t, err)
	assert.Equal(t, "SYS00001", id)

	rows, err := s.List(ctx, TableSystems)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 00:00:00", rows[0]["createdAt"])
}

func TestInsertRejectsUnknownColumns(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, 0)

	_, err := s.Insert(ctx, TableSystems, models.Row{"name": "Open", "colour": "red"})
	require.ErrorIs(t, err, ErrUnknownColumn)
	assert.Contains(t, err.Error(), "colour")

	_, rows, _ := b.Snapshot(TableSystems)
	assert.Empty(t, rows)
}

func TestUpdateFieldsIsPartialAndIdempotent(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, time.Minute)

	id, err := s.Insert(ctx, TableUnits, models.Row{"name": "10A1", "manager": "Ms. Lan", "registrationCode": "ABC123"})
	require.NoError(t, err)

	fields := models.Row{"manager": "Mr. Nam", "notAColumn": "ignored"}
	ok, err := s.UpdateFields(ctx, TableUnits, id, fields)
	require.NoError(t, err)
	require.True(t, ok)
	_, once, _ := b.Snapshot(TableUnits)

	ok, err = s.UpdateFields(ctx, TableUnits, id, fields)
	require.NoError(t, err)
	require.True(t, ok)
	_, twice, _ := b.Snapshot(TableUnits)
	assert.Equal(t, once, twice)

	rows, err := s.List(ctx, TableUnits)
	require.NoError(t, err)
	assert.Equal(t, "Mr. Nam", rows[0]["manager"])
	assert.Equal(t, "10A1", rows[0]["name"])
	assert.Equal(t, "ABC123", rows[0]["registrationCode"])
}

func TestUpdateNeverRewritesID(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	id, err := s.Insert(ctx, TableSystems, models.Row{"name": "Open"})
	require.NoError(t, err)
	ok, err := s.UpdateFields(ctx, TableSystems, id, models.Row{"id": "OTHER", "name": "Advanced"})
	require.NoError(t, err)
	require.True(t, ok)

	rows, err := s.List(ctx, TableSystems)
	require.NoError(t, err)
	assert.Equal(t, id, rows[0]["id"])
	assert.Equal(t, "Advanced", rows[0]["name"])
}

func TestUpdateAndDeleteMissingRow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)

	ok, err := s.UpdateField(ctx, TableRegistrations, "NOPE0000", "rank", "Ba")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, TableRegistrations, "NOPE0000")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Delete(ctx, TableRegistrations, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Minute)

	a, err := s.Insert(ctx, TableSystems, models.Row{"name": "Open"})
	require.NoError(t, err)
	b, err := s.Insert(ctx, TableSystems, models.Row{"name": "Advanced"})
	require.NoError(t, err)

	ok, err := s.Delete(ctx, TableSystems, a)
	require.NoError(t, err)
	require.True(t, ok)

	rows, err := s.List(ctx, TableSystems)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b, rows[0]["id"])
}

func TestListBackfillsRaggedRows(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, 0)
	b.Seed(TableUnits, []string{"id", "name", "manager", "registrationCode", "createdAt"}, [][]string{
		{"U1", "10A1"},
		{},
		{"", " ", ""},
		{"U2", "10A2", "Ms. Lan", "XYZ789", "2025-01-01 00:00:00", "stray"},
	})

	rows, err := s.List(ctx, TableUnits)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[0]["manager"])
	assert.Equal(t, "", rows[0]["createdAt"])
	assert.Equal(t, "XYZ789", rows[1]["registrationCode"])
}

func TestSchemaSyncAppendsMissingColumns(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, 0)
	legacyHeader := []string{"name", "id", "legacy"}
	legacyRows := [][]string{{"10A1", "U1", "keep"}, {"10A2", "U2"}}
	b.Seed(TableUnits, legacyHeader, legacyRows)

	_, err := s.OpenOrCreateTable(ctx, TableUnits)
	require.NoError(t, err)
	header1, rows1, _ := b.Snapshot(TableUnits)
	assert.Equal(t, []string{"name", "id", "legacy", "manager", "registrationCode", "createdAt"}, header1)
	assert.Equal(t, legacyRows, rows1)

	_, err = s.OpenOrCreateTable(ctx, TableUnits)
	require.NoError(t, err)
	header2, rows2, _ := b.Snapshot(TableUnits)
	assert.Equal(t, header1, header2)
	assert.Equal(t, rows1, rows2)

	rows, err := s.List(ctx, TableUnits)
	require.NoError(t, err)
	assert.Equal(t, "U1", rows[0]["id"])
	assert.Equal(t, "keep", rows[0]["legacy"])
	assert.Equal(t, "", rows[1]["manager"])

	id, err := s.Insert(ctx, TableUnits, models.Row{"name": "10A3"})
	require.NoError(t, err)
	_, raw, _ := b.Snapshot(TableUnits)
	assert.Equal(t, []string{"10A3", id, "", "", "", "2025-03-01 08:30:00"}, raw[2])
}

type flakyHeader struct {
	*memory.Backend
}

func (f flakyHeader) WriteHeaderCell(ctx context.Context, h tabular.Handle, col int, value string) error {
	return errors.New("quota exceeded")
}

func TestSchemaSyncFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	b.Seed(TableSystems, []string{"id"}, [][]string{{"S1"}})
	s := New(flakyHeader{b}, Options{Now: fixedNow})

	_, err := s.OpenOrCreateTable(ctx, TableSystems)
	require.NoError(t, err)

	rows, err := s.List(ctx, TableSystems)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Row{"id": "S1", "name": "", "createdAt": ""}, rows[0])
}

func TestInsertIntoPartiallySyncedTable(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	legacy := []string{"id", "unitId", "unitName", "athleteName", "gender", "dob", "studentId",
		"systemName", "ageGroup", "registered_contents", "createdAt"}
	b.Seed(TableRegistrations, legacy, nil)
	s := New(flakyHeader{b}, Options{Now: fixedNow})

	id, err := s.Insert(ctx, TableRegistrations, models.Row{
		"unitId":              "U1",
		"athleteName":         "Nguyen A",
		"cccd":                "012345678901",
		"rank":                "",
		"registered_contents": "Cờ vua (Chung)",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	header, raw, _ := b.Snapshot(TableRegistrations)
	assert.Equal(t, legacy, header)
	require.Len(t, raw, 1)
	assert.Equal(t, id, raw[0][0])
	assert.Equal(t, "Nguyen A", raw[0][3])

	_, err = s.Insert(ctx, TableRegistrations, models.Row{"athleteName": "Tran B", "colour": "red"})
	require.ErrorIs(t, err, ErrUnknownColumn)
}

// recoveringHeader fails header writes until healed.
type recoveringHeader struct {
	*memory.Backend
	healed *bool
}

func (r recoveringHeader) WriteHeaderCell(ctx context.Context, h tabular.Handle, col int, value string) error {
	if !*r.healed {
		return errors.New("quota exceeded")
	}
	return r.Backend.WriteHeaderCell(ctx, h, col, value)
}

func TestSchemaSyncRetriesAfterFailure(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	b.Seed(TableSystems, []string{"id"}, [][]string{{"S1"}})
	healed := false
	s := New(recoveringHeader{Backend: b, healed: &healed}, Options{Now: fixedNow})

	_, err := s.OpenOrCreateTable(ctx, TableSystems)
	require.NoError(t, err)
	header, _, _ := b.Snapshot(TableSystems)
	assert.Equal(t, []string{"id"}, header)

	healed = true
	id, err := s.Insert(ctx, TableSystems, models.Row{"name": "Open"})
	require.NoError(t, err)

	header, raw, _ := b.Snapshot(TableSystems)
	assert.Equal(t, []string{"id", "name", "createdAt"}, header)
	assert.Equal(t, []string{id, "Open", "2025-03-01 08:30:00"}, raw[1])
}

func TestBackendUnavailable(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, 0)
	b.SetUnavailable(true)

	_, err := s.OpenOrCreateTable(ctx, TableUnits)
	assert.ErrorIs(t, err, tabular.ErrBackendUnavailable)

	_, err = s.List(ctx, TableUnits)
	assert.ErrorIs(t, err, tabular.ErrBackendUnavailable)

	_, err = s.Insert(ctx, TableUnits, models.Row{"name": "x"})
	assert.ErrorIs(t, err, tabular.ErrBackendUnavailable)
}

func TestCacheServesReadsUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, time.Hour)

	_, err := s.Insert(ctx, TableSystems, models.Row{"name": "Open"})
	require.NoError(t, err)
	rows, err := s.List(ctx, TableSystems)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// a write from another session goes straight to the backend
	header, raw, _ := b.Snapshot(TableSystems)
	b.Seed(TableSystems, header, append(raw, []string{"EXT00001", "External", ""}))

	rows, err = s.List(ctx, TableSystems)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	s.Invalidate(TableSystems)
	rows, err = s.List(ctx, TableSystems)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCachedRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Hour)

	_, err := s.Insert(ctx, TableSystems, models.Row{"name": "Open"})
	require.NoError(t, err)
	rows, err := s.List(ctx, TableSystems)
	require.NoError(t, err)
	rows[0]["name"] = "mutated"

	rows, err = s.List(ctx, TableSystems)
	require.NoError(t, err)
	assert.Equal(t, "Open", rows[0]["name"])
}

func TestUnknownTable(t *testing.T) {
	s, _ := newTestStore(t, 0)
	_, err := s.List(context.Background(), "nope")
	assert.Error(t, err)
}
