package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sportsreg/internal/models"
)

func TestSelectionString(t *testing.T) {
	assert.Equal(t, "Bóng đá: Nam", Selection{Discipline: "Bóng đá", Content: "Nam"}.String())
	assert.Equal(t, "Cờ vua (Chung)", Selection{Discipline: "Cờ vua"}.String())
}

func TestJoinAndSplit(t *testing.T) {
	sel := []Selection{
		{Discipline: "Bóng đá", Content: "Nam"},
		{Discipline: "Cờ vua"},
		{Discipline: "Điền kinh", Content: "100m: Nữ"},
	}
	encoded := Join(sel)
	assert.Equal(t, "Bóng đá: Nam; Cờ vua (Chung); Điền kinh: 100m: Nữ", encoded)
	assert.Equal(t, []string{"Bóng đá: Nam", "Cờ vua (Chung)", "Điền kinh: 100m: Nữ"}, Split(encoded))
	assert.Empty(t, Split(""))
	assert.Equal(t, []string{"A (Chung)"}, Split(" ; A (Chung); "))
}

func testCatalog() Catalog {
	disciplines := []models.Discipline{
		{ID: "D1", Name: "Bóng đá"},
		{ID: "D2", Name: "Cờ vua"},
		{ID: "D3", Name: "Điền kinh"},
	}
	contents := []models.Content{
		{ID: "C1", DisciplineID: "D1", Name: "Nam"},
		{ID: "C2", DisciplineID: "D1", Name: "Nữ"},
		{ID: "C3", DisciplineID: "D3", Name: "100m: Nữ"},
		{ID: "C4", DisciplineID: "GONE", Name: "Orphan"},
	}
	return BuildCatalog(disciplines, contents)
}

func TestBuildCatalog(t *testing.T) {
	assert.Equal(t, Catalog{
		{Discipline: "Bóng đá", Content: "Nam"},
		{Discipline: "Bóng đá", Content: "Nữ"},
		{Discipline: "Cờ vua"},
		{Discipline: "Điền kinh", Content: "100m: Nữ"},
	}, testCatalog())
}

func TestJoinMatchRoundTrip(t *testing.T) {
	cat := testCatalog()
	subsets := [][]Selection{
		{cat[0]},
		{cat[2]},
		{cat[1], cat[3]},
		{cat[3], cat[0], cat[2]},
		cat,
	}
	for _, sel := range subsets {
		matched, stale := cat.Match(Join(sel))
		assert.Equal(t, sel, matched)
		assert.Empty(t, stale)
	}
}

func TestMatchReportsStaleLabels(t *testing.T) {
	matched, stale := testCatalog().Match("Bóng đá: Nam; Bơi lội: 50m")
	assert.Equal(t, []Selection{{Discipline: "Bóng đá", Content: "Nam"}}, matched)
	assert.Equal(t, []string{"Bơi lội: 50m"}, stale)
}
