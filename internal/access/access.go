// Package access is the session-scoped actor state machine. A session starts
// as a guest; the admin secret turns it into an admin, a unit registration
// code into that unit. Admin and unit sessions only go back to guest via
// Logout.
//
// The checks are advisory: callers ask the session before invoking store
// operations, the store itself knows nothing about identity.
package access

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"sportsreg/internal/models"
	"sportsreg/internal/util"
)

var (
	ErrAuthFailed = errors.New("authentication failed")
	ErrForbidden  = errors.New("operation not permitted for this session")
	ErrNotGuest   = errors.New("session already authenticated, log out first")

	// ErrUnitRemoved reports that a unit session outlived its unit.
	ErrUnitRemoved = fmt.Errorf("unit no longer exists: %w", ErrAuthFailed)
)

type Role int

const (
	RoleGuest Role = iota
	RoleAdmin
	RoleUnit
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUnit:
		return "unit"
	default:
		return "guest"
	}
}

type Operation string

const (
	OpViewOverview        Operation = "view_overview"
	OpViewResults         Operation = "view_results"
	OpManageSettings      Operation = "manage_settings"
	OpManageDisciplines   Operation = "manage_disciplines"
	OpManageContents      Operation = "manage_contents"
	OpManageUnits         Operation = "manage_units"
	OpManageSystems       Operation = "manage_systems"
	OpEnterResults        Operation = "enter_results"
	OpDeleteRegistrations Operation = "delete_registrations"
	OpEditRegistrations   Operation = "edit_registrations"
	OpExportOwn           Operation = "export_own"
)

var permissions = map[Role]map[Operation]bool{
	RoleGuest: {
		OpViewOverview: true,
		OpViewResults:  true,
	},
	RoleAdmin: {
		OpViewOverview:        true,
		OpViewResults:         true,
		OpManageSettings:      true,
		OpManageDisciplines:   true,
		OpManageContents:      true,
		OpManageUnits:         true,
		OpManageSystems:       true,
		OpEnterResults:        true,
		OpDeleteRegistrations: true,
	},
	RoleUnit: {
		OpViewOverview:      true,
		OpViewResults:       true,
		OpEditRegistrations: true,
		OpExportOwn:         true,
	},
}

// Session is the per-client actor state. The zero value is a guest.
type Session struct {
	role Role
	unit models.Unit
}

func (s *Session) Role() Role { return s.role }

// Unit returns the logged-in unit; ok is false unless the role is RoleUnit.
func (s *Session) Unit() (models.Unit, bool) {
	if s.role != RoleUnit {
		return models.Unit{}, false
	}
	return s.unit, true
}

func (s *Session) Can(op Operation) bool {
	return permissions[s.role][op]
}

func (s *Session) Require(op Operation) error {
	if !s.Can(op) {
		return fmt.Errorf("%s as %s: %w", op, s.role, ErrForbidden)
	}
	return nil
}

// UnitFinder looks a unit up by its registration code. A nil unit with a
// nil error means no unit has the code.
type UnitFinder interface {
	FindUnitByCode(ctx context.Context, code string) (*models.Unit, error)
}

type Controller struct {
	adminSecret string
	units       UnitFinder
}

func NewController(adminSecret string, units UnitFinder) *Controller {
	return &Controller{adminSecret: adminSecret, units: units}
}

// SubmitAdminSecret moves a guest session to admin when attempt matches the
// configured secret.
func (c *Controller) SubmitAdminSecret(s *Session, attempt string) error {
	if s.role != RoleGuest {
		return ErrNotGuest
	}
	if c.adminSecret == "" || subtle.ConstantTimeCompare([]byte(attempt), []byte(c.adminSecret)) != 1 {
		return ErrAuthFailed
	}
	s.role = RoleAdmin
	return nil
}

// SubmitUnitCode moves a guest session to the unit whose registration code
// matches. Codes compare after trimming and upper-casing.
func (c *Controller) SubmitUnitCode(ctx context.Context, s *Session, code string) error {
	if s.role != RoleGuest {
		return ErrNotGuest
	}
	code = util.NormalizeCode(code)
	if code == "" {
		return ErrAuthFailed
	}
	u, err := c.units.FindUnitByCode(ctx, code)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrAuthFailed
	}
	s.role = RoleUnit
	s.unit = *u
	return nil
}

// Refresh reloads the unit behind a unit session. If the unit was deleted
// or its code reissued, the session is logged out with ErrUnitRemoved.
// Other roles are left alone.
func (c *Controller) Refresh(ctx context.Context, s *Session) error {
	if s.role != RoleUnit {
		return nil
	}
	u, err := c.units.FindUnitByCode(ctx, s.unit.RegistrationCode)
	if err != nil {
		return err
	}
	if u == nil || u.ID != s.unit.ID {
		c.Logout(s)
		return ErrUnitRemoved
	}
	s.unit = *u
	return nil
}

func (c *Controller) Logout(s *Session) {
	s.role = RoleGuest
	s.unit = models.Unit{}
}
