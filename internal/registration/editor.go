// Package registration merges "enter a new athlete" and "edit an existing
// athlete" into one form lifecycle. An Editor is either in create mode or
// holds the registration being edited; it belongs to a single session.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sportsreg/internal/access"
	"sportsreg/internal/models"
	"sportsreg/internal/store"
	"sportsreg/internal/tabular"
	"sportsreg/internal/util"
)

// ErrScheduleExpired blocks creating and updating registrations once the
// configured deadline has passed.
var ErrScheduleExpired = errors.New("registration deadline has passed")

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Writer interface {
	Insert(ctx context.Context, table string, fields models.Row) (string, error)
	UpdateFields(ctx context.Context, table, id string, fields models.Row) (bool, error)
	Delete(ctx context.Context, table, id string) (bool, error)
}

type ConfigReader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Form holds the athlete fields typed by the unit.
type Form struct {
	AthleteName string
	Gender      string
	DOB         string
	CCCD        string
	StudentID   string
	SystemName  string
	AgeGroup    string
}

// Draft is the pre-filled form for an edit.
type Draft struct {
	Form     Form
	Selected []Selection
	// Stale lists stored selections that are no longer offered.
	Stale []string
}

type Editor struct {
	store   Writer
	config  ConfigReader
	now     func() time.Time
	editing *models.Registration
}

func NewEditor(w Writer, cfg ConfigReader) *Editor {
	return &Editor{store: w, config: cfg, now: time.Now}
}

func (e *Editor) Mode() Mode {
	if e.editing != nil {
		return ModeEdit
	}
	return ModeCreate
}

// Editing returns the registration loaded by BeginEdit.
func (e *Editor) Editing() (models.Registration, bool) {
	if e.editing == nil {
		return models.Registration{}, false
	}
	return *e.editing, true
}

func (e *Editor) BeginEdit(row models.Registration, catalog Catalog) Draft {
	r := row
	e.editing = &r
	selected, stale := catalog.Match(row.RegisteredContents)
	return Draft{
		Form: Form{
			AthleteName: row.AthleteName,
			Gender:      row.Gender,
			DOB:         row.DOB,
			CCCD:        row.CCCD,
			StudentID:   row.StudentID,
			SystemName:  row.SystemName,
			AgeGroup:    row.AgeGroup,
		},
		Selected: selected,
		Stale:    stale,
	}
}

func (e *Editor) CancelEdit() {
	e.editing = nil
}

// Submit writes the form for unit. In edit mode the loaded row is updated
// in place and the editor returns to create mode; in create mode a new row
// is inserted. It returns the registration id.
func (e *Editor) Submit(ctx context.Context, unit models.Unit, form Form, selected []Selection) (string, error) {
	if err := validate(form, selected); err != nil {
		return "", err
	}
	if e.editing != nil && e.editing.UnitID != unit.ID {
		return "", fmt.Errorf("registration %s belongs to another unit: %w", e.editing.ID, access.ErrForbidden)
	}
	if err := e.checkDeadline(ctx); err != nil {
		return "", err
	}

	reg := models.Registration{
		UnitID:             unit.ID,
		UnitName:           unit.Name,
		AthleteName:        strings.TrimSpace(form.AthleteName),
		Gender:             form.Gender,
		DOB:                form.DOB,
		CCCD:               form.CCCD,
		StudentID:          form.StudentID,
		SystemName:         form.SystemName,
		AgeGroup:           form.AgeGroup,
		RegisteredContents: Join(selected),
	}

	if e.editing == nil {
		return e.store.Insert(ctx, store.TableRegistrations, reg.Fields())
	}

	id := e.editing.ID
	fields := reg.Fields()
	// results are entered by admins; an edit must not overwrite them
	delete(fields, "rank")
	ok, err := e.store.UpdateFields(ctx, store.TableRegistrations, id, fields)
	if err != nil {
		return "", err
	}
	e.editing = nil
	if !ok {
		return "", fmt.Errorf("registration %s: %w", id, tabular.ErrNotFound)
	}
	return id, nil
}

// DeleteRegistration removes a registration and leaves edit mode if it was
// the one being edited.
func (e *Editor) DeleteRegistration(ctx context.Context, id string) (bool, error) {
	ok, err := e.store.Delete(ctx, store.TableRegistrations, id)
	if err != nil {
		return false, err
	}
	if e.editing != nil && e.editing.ID == id {
		e.editing = nil
	}
	return ok, nil
}

func (e *Editor) checkDeadline(ctx context.Context) error {
	expired, err := DeadlinePassed(ctx, e.config, e.now())
	if err != nil {
		return err
	}
	if expired {
		return ErrScheduleExpired
	}
	return nil
}

// DeadlinePassed reports whether now is after the configured deadline day.
// A missing or unparsable deadline never expires.
func DeadlinePassed(ctx context.Context, cfg ConfigReader, now time.Time) (bool, error) {
	raw, ok, err := cfg.Get(ctx, store.KeyDeadline)
	if err != nil {
		return false, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return false, nil
	}
	deadline, err := time.ParseInLocation(util.DateLayout, strings.TrimSpace(raw), now.Location())
	if err != nil {
		return false, nil
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.After(deadline), nil
}

func validate(form Form, selected []Selection) error {
	if strings.TrimSpace(form.AthleteName) == "" {
		return &ValidationError{Field: "athleteName", Message: "athlete name is required"}
	}
	if len(selected) == 0 {
		return &ValidationError{Field: "registered_contents", Message: "select at least one event"}
	}
	for _, s := range selected {
		if strings.TrimSpace(s.Discipline) == "" {
			return &ValidationError{Field: "registered_contents", Message: "event without discipline"}
		}
		if strings.Contains(s.String(), Separator) {
			return &ValidationError{Field: "registered_contents", Message: fmt.Sprintf("%q contains %q", s.String(), Separator)}
		}
	}
	return nil
}
