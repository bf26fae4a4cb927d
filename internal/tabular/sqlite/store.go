// Package sqlite keeps header-defined tables in a single SQLite file. Each
// table is one row in `tables` plus its data rows in `table_rows`, cells
// stored as a JSON array so ragged rows survive unchanged.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"sportsreg/internal/tabular"
)

type Store struct {
	db *sql.DB
}

var _ tabular.Backend = (*Store)(nil)

func Open(path string) (*Store, error) {
	if path == "" {
		path = "sportsreg.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS tables (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		header TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS table_rows (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		tbl INTEGER NOT NULL,
		cells TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table_rows table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) OpenTable(ctx context.Context, name string) (tabular.Handle, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM tables WHERE name = ?`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return tabular.Handle{}, fmt.Errorf("table %s: %w", name, tabular.ErrNotFound)
	}
	if err != nil {
		return tabular.Handle{}, unavailable("open "+name, err)
	}
	return tabular.Handle{Name: name, ID: id}, nil
}

func (s *Store) CreateTable(ctx context.Context, name string, header []string) (tabular.Handle, error) {
	raw, err := encode(header)
	if err != nil {
		return tabular.Handle{}, err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO tables (name, header) VALUES (?, ?)`, name, raw)
	if err != nil {
		return tabular.Handle{}, unavailable("create "+name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return tabular.Handle{}, unavailable("create "+name, err)
	}
	return tabular.Handle{Name: name, ID: id}, nil
}

func (s *Store) ReadHeader(ctx context.Context, h tabular.Handle) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT header FROM tables WHERE id = ?`, h.ID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s: %w", h.Name, tabular.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("read header "+h.Name, err)
	}
	return decode(raw)
}

func (s *Store) WriteHeaderCell(ctx context.Context, h tabular.Handle, col int, value string) error {
	header, err := s.ReadHeader(ctx, h)
	if err != nil {
		return err
	}
	raw, err := encode(setCell(header, col, value))
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE tables SET header = ? WHERE id = ?`, raw, h.ID); err != nil {
		return unavailable("write header "+h.Name, err)
	}
	return nil
}

func (s *Store) ReadAllRows(ctx context.Context, h tabular.Handle) ([][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM table_rows WHERE tbl = ? ORDER BY seq`, h.ID)
	if err != nil {
		return nil, unavailable("read "+h.Name, err)
	}
	defer func() { _ = rows.Close() }()
	out := [][]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, unavailable("scan "+h.Name, err)
		}
		cells, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("read "+h.Name, err)
	}
	return out, nil
}

func (s *Store) AppendRow(ctx context.Context, h tabular.Handle, values []string) error {
	raw, err := encode(values)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO table_rows (tbl, cells) VALUES (?, ?)`, h.ID, raw); err != nil {
		return unavailable("append "+h.Name, err)
	}
	return nil
}

func (s *Store) FindRowByValue(ctx context.Context, h tabular.Handle, col int, value string) (int, error) {
	rows, err := s.ReadAllRows(ctx, h)
	if err != nil {
		return 0, err
	}
	for i, r := range rows {
		if col < len(r) && r[col] == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("row %q in %s: %w", value, h.Name, tabular.ErrNotFound)
}

func (s *Store) WriteCell(ctx context.Context, h tabular.Handle, row, col int, value string) error {
	seq, cells, err := s.rowAt(ctx, h, row)
	if err != nil {
		return err
	}
	raw, err := encode(setCell(cells, col, value))
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE table_rows SET cells = ? WHERE seq = ?`, raw, seq); err != nil {
		return unavailable("write cell "+h.Name, err)
	}
	return nil
}

func (s *Store) DeleteRow(ctx context.Context, h tabular.Handle, row int) error {
	seq, _, err := s.rowAt(ctx, h, row)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM table_rows WHERE seq = ?`, seq); err != nil {
		return unavailable("delete row "+h.Name, err)
	}
	return nil
}

func (s *Store) rowAt(ctx context.Context, h tabular.Handle, row int) (int64, []string, error) {
	if row < 0 {
		return 0, nil, fmt.Errorf("row %d in %s: %w", row, h.Name, tabular.ErrNotFound)
	}
	var (
		seq int64
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT seq, cells FROM table_rows WHERE tbl = ? ORDER BY seq LIMIT 1 OFFSET ?`,
		h.ID, row,
	).Scan(&seq, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, fmt.Errorf("row %d in %s: %w", row, h.Name, tabular.ErrNotFound)
	}
	if err != nil {
		return 0, nil, unavailable("locate row "+h.Name, err)
	}
	cells, err := decode(raw)
	return seq, cells, err
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, tabular.ErrBackendUnavailable, err)
}

func encode(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(b), nil
}

func decode(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("decode cells: %w", err)
	}
	return cells, nil
}

func setCell(cells []string, col int, value string) []string {
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	return cells
}
