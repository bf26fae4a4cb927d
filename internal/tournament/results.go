package tournament

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/url"

	"sportsreg/internal/models"
	"sportsreg/internal/store"
	"sportsreg/internal/util"
)

const utf8BOM = "\xEF\xBB\xBF"

// ExportColumns is the column order of the per-unit CSV export.
var ExportColumns = []string{
	"athleteName", "gender", "dob", "studentId", "cccd",
	"systemName", "ageGroup", "registered_contents", "rank",
}

func (s *Service) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	rows, err := s.st.List(ctx, store.TableRegistrations)
	if err != nil {
		return nil, err
	}
	out := make([]models.Registration, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.RegistrationFromRow(r))
	}
	return out, nil
}

func (s *Service) ListRegistrationsOf(ctx context.Context, unitID string) ([]models.Registration, error) {
	all, err := s.ListRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Registration
	for _, r := range all {
		if r.UnitID == unitID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	all, err := s.ListRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.ID == id {
			rr := r
			return &rr, nil
		}
	}
	return nil, nil
}

// SetRank records a result. Only the rank cell is written.
func (s *Service) SetRank(ctx context.Context, id, rank string) (bool, error) {
	if !models.ValidRank(rank) {
		return false, fmt.Errorf("%q: %w", rank, ErrInvalidRank)
	}
	ok, err := s.st.UpdateField(ctx, store.TableRegistrations, id, "rank", rank)
	if err != nil {
		return false, err
	}
	if ok {
		s.log.Info("rank recorded", "registration_id", id, "rank", rank)
	}
	return ok, nil
}

func (s *Service) DeleteRegistration(ctx context.Context, id string) (bool, error) {
	return s.st.Delete(ctx, store.TableRegistrations, id)
}

// ExportUnitCSV writes a unit's registrations as comma separated UTF-8 with
// a byte-order mark so spreadsheet programs pick the right encoding.
func (s *Service) ExportUnitCSV(ctx context.Context, unitID string, w io.Writer) error {
	regs, err := s.ListRegistrationsOf(ctx, unitID)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range regs {
		if err := cw.Write([]string{
			r.AthleteName, r.Gender, r.DOB, r.StudentID, r.CCCD,
			r.SystemName, r.AgeGroup, r.RegisteredContents, r.Rank,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportToken signs a unit id for the public export link.
func ExportToken(secret, unitID string) string {
	return util.HMACSHA256Hex(secret, "export:"+unitID)
}

func ValidExportToken(secret, unitID, token string) bool {
	return secret != "" && util.ValidHMAC(secret, "export:"+unitID, token)
}

// ExportLink builds the signed download URL for a unit's CSV.
func ExportLink(baseURL, secret, unitID string) string {
	q := url.Values{}
	q.Set("unit_id", unitID)
	q.Set("token", ExportToken(secret, unitID))
	return baseURL + "/export/unit.csv?" + q.Encode()
}
