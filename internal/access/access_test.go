package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsreg/internal/models"
)

type unitsByCode map[string]models.Unit

func (m unitsByCode) FindUnitByCode(ctx context.Context, code string) (*models.Unit, error) {
	u, ok := m[code]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type brokenFinder struct{}

func (brokenFinder) FindUnitByCode(ctx context.Context, code string) (*models.Unit, error) {
	return nil, errors.New("backend down")
}

func newController() *Controller {
	return NewController("s3cret", unitsByCode{
		"ABC123": {ID: "U1", Name: "10A1", RegistrationCode: "ABC123"},
	})
}

func TestAdminSecret(t *testing.T) {
	c := newController()
	s := &Session{}

	err := c.SubmitAdminSecret(s, "wrong")
	require.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, RoleGuest, s.Role())

	require.NoError(t, c.SubmitAdminSecret(s, "s3cret"))
	assert.Equal(t, RoleAdmin, s.Role())
	_, ok := s.Unit()
	assert.False(t, ok)
}

func TestEmptyAdminSecretNeverMatches(t *testing.T) {
	c := NewController("", unitsByCode{})
	s := &Session{}
	assert.ErrorIs(t, c.SubmitAdminSecret(s, ""), ErrAuthFailed)
	assert.Equal(t, RoleGuest, s.Role())
}

func TestUnitCode(t *testing.T) {
	ctx := context.Background()
	c := newController()
	s := &Session{}

	require.ErrorIs(t, c.SubmitUnitCode(ctx, s, "ZZZ999"), ErrAuthFailed)
	assert.Equal(t, RoleGuest, s.Role())
	require.ErrorIs(t, c.SubmitUnitCode(ctx, s, "   "), ErrAuthFailed)

	require.NoError(t, c.SubmitUnitCode(ctx, s, " abc123 "))
	assert.Equal(t, RoleUnit, s.Role())
	u, ok := s.Unit()
	require.True(t, ok)
	assert.Equal(t, "10A1", u.Name)
}

func TestUnitCodeBackendError(t *testing.T) {
	c := NewController("s3cret", brokenFinder{})
	s := &Session{}
	err := c.SubmitUnitCode(context.Background(), s, "ABC123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, RoleGuest, s.Role())
}

func TestNoDirectTransitionBetweenRoles(t *testing.T) {
	ctx := context.Background()
	c := newController()

	admin := &Session{}
	require.NoError(t, c.SubmitAdminSecret(admin, "s3cret"))
	assert.ErrorIs(t, c.SubmitUnitCode(ctx, admin, "ABC123"), ErrNotGuest)
	assert.Equal(t, RoleAdmin, admin.Role())

	unit := &Session{}
	require.NoError(t, c.SubmitUnitCode(ctx, unit, "ABC123"))
	assert.ErrorIs(t, c.SubmitAdminSecret(unit, "s3cret"), ErrNotGuest)
	assert.Equal(t, RoleUnit, unit.Role())

	c.Logout(unit)
	assert.Equal(t, RoleGuest, unit.Role())
	_, ok := unit.Unit()
	assert.False(t, ok)
	require.NoError(t, c.SubmitAdminSecret(unit, "s3cret"))
}

func TestRefreshDropsDeletedUnit(t *testing.T) {
	ctx := context.Background()
	units := unitsByCode{"ABC123": {ID: "U1", Name: "10A1", RegistrationCode: "ABC123"}}
	c := NewController("s3cret", units)

	s := &Session{}
	require.NoError(t, c.SubmitUnitCode(ctx, s, "ABC123"))

	units["ABC123"] = models.Unit{ID: "U1", Name: "10A1 (renamed)", RegistrationCode: "ABC123"}
	require.NoError(t, c.Refresh(ctx, s))
	u, _ := s.Unit()
	assert.Equal(t, "10A1 (renamed)", u.Name)

	delete(units, "ABC123")
	err := c.Refresh(ctx, s)
	require.ErrorIs(t, err, ErrUnitRemoved)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, RoleGuest, s.Role())

	admin := &Session{}
	require.NoError(t, c.SubmitAdminSecret(admin, "s3cret"))
	assert.NoError(t, c.Refresh(ctx, admin))
	assert.Equal(t, RoleAdmin, admin.Role())
}

func TestPermissions(t *testing.T) {
	ctx := context.Background()
	c := newController()

	guest := &Session{}
	assert.True(t, guest.Can(OpViewOverview))
	assert.True(t, guest.Can(OpViewResults))
	assert.ErrorIs(t, guest.Require(OpManageUnits), ErrForbidden)
	assert.ErrorIs(t, guest.Require(OpEditRegistrations), ErrForbidden)

	admin := &Session{}
	require.NoError(t, c.SubmitAdminSecret(admin, "s3cret"))
	for _, op := range []Operation{OpManageSettings, OpManageDisciplines, OpManageContents, OpManageUnits, OpManageSystems, OpEnterResults, OpDeleteRegistrations} {
		assert.NoError(t, admin.Require(op), op)
	}
	assert.False(t, admin.Can(OpEditRegistrations))

	unit := &Session{}
	require.NoError(t, c.SubmitUnitCode(ctx, unit, "ABC123"))
	assert.True(t, unit.Can(OpEditRegistrations))
	assert.True(t, unit.Can(OpExportOwn))
	assert.False(t, unit.Can(OpManageUnits))
	assert.False(t, unit.Can(OpEnterResults))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "guest", RoleGuest.String())
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "unit", RoleUnit.String())
}
