package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"sportsreg/internal/tabular"
)

var _ tabular.Backend = (*Client)(nil)

func (c *Client) OpenTable(ctx context.Context, name string) (tabular.Handle, error) {
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return tabular.Handle{}, mapErr("open "+name, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return tabular.Handle{Name: name, ID: sh.Properties.SheetId}, nil
		}
	}
	return tabular.Handle{}, fmt.Errorf("sheet %s: %w", name, tabular.ErrNotFound)
}

func (c *Client) CreateTable(ctx context.Context, name string, header []string) (tabular.Handle, error) {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: name},
			},
		}},
	}
	resp, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return tabular.Handle{}, mapErr("create "+name, err)
	}
	h := tabular.Handle{Name: name}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		h.ID = resp.Replies[0].AddSheet.Properties.SheetId
	}
	if len(header) > 0 {
		if err := c.update(ctx, rangeOf(name, "A1"), toRow(header)); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (c *Client) ReadHeader(ctx context.Context, h tabular.Handle) ([]string, error) {
	values, err := c.read(ctx, rangeOf(h.Name, "1:1"))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []string{}, nil
	}
	return toStrings(values[0]), nil
}

func (c *Client) WriteHeaderCell(ctx context.Context, h tabular.Handle, col int, value string) error {
	return c.update(ctx, rangeOf(h.Name, a1(col, 0)), []interface{}{value})
}

func (c *Client) ReadAllRows(ctx context.Context, h tabular.Handle) ([][]string, error) {
	values, err := c.read(ctx, quote(h.Name))
	if err != nil {
		return nil, err
	}
	out := [][]string{}
	// header row at index 0
	for i := 1; i < len(values); i++ {
		out = append(out, toStrings(values[i]))
	}
	return out, nil
}

func (c *Client) AppendRow(ctx context.Context, h tabular.Handle, values []string) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{toRow(values)}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, rangeOf(h.Name, "A1"), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return mapErr("append "+h.Name, err)
}

func (c *Client) FindRowByValue(ctx context.Context, h tabular.Handle, col int, value string) (int, error) {
	letter := colName(col)
	values, err := c.read(ctx, rangeOf(h.Name, letter+":"+letter))
	if err != nil {
		return 0, err
	}
	for i := 1; i < len(values); i++ {
		if get(values[i], 0) == value {
			return i - 1, nil
		}
	}
	return 0, fmt.Errorf("row %q in %s: %w", value, h.Name, tabular.ErrNotFound)
}

func (c *Client) WriteCell(ctx context.Context, h tabular.Handle, row, col int, value string) error {
	return c.update(ctx, rangeOf(h.Name, a1(col, row+1)), []interface{}{value})
}

func (c *Client) DeleteRow(ctx context.Context, h tabular.Handle, row int) error {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			DeleteDimension: &sheetsv4.DeleteDimensionRequest{
				Range: &sheetsv4.DimensionRange{
					SheetId:         h.ID,
					Dimension:       "ROWS",
					StartIndex:      int64(row + 1), // skip header
					EndIndex:        int64(row + 2),
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}
	_, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return mapErr("delete row in "+h.Name, err)
}

// ---------- helpers ----------

func (c *Client) read(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, mapErr("read "+rng, err)
	}
	return resp.Values, nil
}

func (c *Client) update(ctx context.Context, rng string, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return mapErr("update "+rng, err)
}

// mapErr turns API errors into the tabular taxonomy. A range naming a
// missing worksheet comes back as 400 "Unable to parse range".
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusNotFound ||
			(gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")) {
			return fmt.Errorf("%s: %w", op, tabular.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, tabular.ErrBackendUnavailable, err)
}

func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func rangeOf(sheet, cells string) string {
	return quote(sheet) + "!" + cells
}

// a1 returns the A1 reference of a 0-based column and 0-based sheet row.
func a1(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row+1)
}

// colName converts a 0-based column index to letters: 0 -> A, 26 -> AA.
func colName(col int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}

func get(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i := range row {
		out[i] = get(row, i)
	}
	return out
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
