// Package store treats a set of header-defined tables as a small relational
// store: schema synchronization, id-keyed CRUD and a key/value config table.
//
// Mutations locate rows with a linear scan of the id column on every call
// (O(n) per update or delete). Row positions in a shared spreadsheet shift
// whenever anyone deletes a row, so a cached id->position index would go
// stale between sessions. There is no locking: concurrent writers to the
// same row follow last-write-wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"sportsreg/internal/metrics"
	"sportsreg/internal/models"
	"sportsreg/internal/tabular"
	"sportsreg/internal/util"
)

const (
	idLength      = 8
	idGenAttempts = 5
)

// ErrUnknownColumn is returned by Insert when fields name a column that is
// neither in the table's schema nor in its live header. Nothing is written.
var ErrUnknownColumn = errors.New("unknown column")

type Options struct {
	// CacheTTL bounds how long List results are served from memory.
	// Zero disables the cache.
	CacheTTL  time.Duration
	CacheSize int
	Logger    *slog.Logger
	Now       func() time.Time
}

type Store struct {
	backend tabular.Backend
	log     *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	tables map[string]*tableState

	cache *expirable.LRU[string, []models.Row]
}

func New(backend tabular.Backend, opts Options) *Store {
	s := &Store{
		backend: backend,
		log:     opts.Logger,
		now:     opts.Now,
		tables:  map[string]*tableState{},
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = len(tableOrder)
		}
		s.cache = expirable.NewLRU[string, []models.Row](size, nil, opts.CacheTTL)
	}
	return s
}

// List returns every data row of a table in stored order. Each row carries
// all expected columns; cells missing from ragged rows read as "".
// Rows with no content at all are skipped.
func (s *Store) List(ctx context.Context, table string) (rows []models.Row, err error) {
	if cached, ok := s.cached(table); ok {
		metrics.CacheHit(table)
		return cached, nil
	}
	metrics.CacheMiss(table)

	start := time.Now()
	defer func() { metrics.Observe(table, "list", start, err) }()

	st, err := s.table(ctx, table)
	if err != nil {
		return nil, err
	}
	raw, err := s.backend.ReadAllRows(ctx, st.handle)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}

	expected := schemas[table]
	rows = make([]models.Row, 0, len(raw))
	for _, cells := range raw {
		if blank(cells) {
			continue
		}
		row := make(models.Row, len(st.header))
		for i, col := range st.header {
			if col == "" {
				continue
			}
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		for _, col := range expected {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	if s.cache != nil {
		s.cache.Add(table, rows)
	}
	return copyRows(rows), nil
}

// Insert appends a row and returns its id. An empty or absent id is
// generated, an empty or absent createdAt is stamped with the current time.
func (s *Store) Insert(ctx context.Context, table string, fields models.Row) (id string, err error) {
	start := time.Now()
	defer func() { metrics.Observe(table, "insert", start, err) }()

	st, err := s.table(ctx, table)
	if err != nil {
		return "", err
	}
	if unknown := unknownColumns(st, schemas[table], fields); len(unknown) > 0 {
		return "", fmt.Errorf("insert into %s: %w: %s", table, ErrUnknownColumn, strings.Join(unknown, ", "))
	}
	if dropped := unknownColumns(st, nil, fields); len(dropped) > 0 {
		s.log.Warn("insert: columns missing from header, values dropped", "table", table, "columns", dropped)
	}

	row := make(models.Row, len(fields)+2)
	for k, v := range fields {
		row[k] = v
	}
	if st.index("id") >= 0 && row["id"] == "" {
		row["id"], err = s.newID(ctx, table)
		if err != nil {
			return "", err
		}
	}
	if st.index("createdAt") >= 0 && row["createdAt"] == "" {
		row["createdAt"] = s.now().Format(util.TimestampLayout)
	}

	values := make([]string, len(st.header))
	for i, col := range st.header {
		values[i] = row[col]
	}
	defer s.invalidate(table)
	if err := s.backend.AppendRow(ctx, st.handle, values); err != nil {
		return "", fmt.Errorf("insert into %s: %w", table, err)
	}
	return row["id"], nil
}

// UpdateFields overwrites, in place, each cell of the row with the given id
// whose column is named in fields. Other columns are left alone, keys that
// are not header columns are ignored and the id itself is never rewritten.
// It reports false when no row has that id.
func (s *Store) UpdateFields(ctx context.Context, table, id string, fields models.Row) (ok bool, err error) {
	start := time.Now()
	defer func() { metrics.Observe(table, "update", start, err) }()

	st, pos, err := s.locate(ctx, table, id)
	if errors.Is(err, tabular.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	defer s.invalidate(table)
	for i, col := range st.header {
		v, ok := fields[col]
		if !ok || col == "id" {
			continue
		}
		if err := s.backend.WriteCell(ctx, st.handle, pos, i, v); err != nil {
			return false, fmt.Errorf("update %s/%s.%s: %w", table, id, col, err)
		}
	}
	return true, nil
}

func (s *Store) UpdateField(ctx context.Context, table, id, column, value string) (bool, error) {
	return s.UpdateFields(ctx, table, id, models.Row{column: value})
}

// Delete removes the row with the given id, reporting false when absent.
func (s *Store) Delete(ctx context.Context, table, id string) (ok bool, err error) {
	start := time.Now()
	defer func() { metrics.Observe(table, "delete", start, err) }()

	st, pos, err := s.locate(ctx, table, id)
	if errors.Is(err, tabular.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer s.invalidate(table)
	if err := s.backend.DeleteRow(ctx, st.handle, pos); err != nil {
		if errors.Is(err, tabular.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	return true, nil
}

// Invalidate drops the cached rows of a table.
func (s *Store) Invalidate(table string) { s.invalidate(table) }

func (s *Store) locate(ctx context.Context, table, id string) (*tableState, int, error) {
	st, err := s.table(ctx, table)
	if err != nil {
		return nil, 0, err
	}
	col := st.index("id")
	if col < 0 {
		return nil, 0, fmt.Errorf("table %s has no id column", table)
	}
	if id == "" {
		return nil, 0, tabular.ErrNotFound
	}
	pos, err := s.backend.FindRowByValue(ctx, st.handle, col, id)
	if err != nil {
		return nil, 0, err
	}
	return st, pos, nil
}

// newID draws random ids until one is not already used in the table.
func (s *Store) newID(ctx context.Context, table string) (string, error) {
	rows, err := s.List(ctx, table)
	if err != nil {
		return "", err
	}
	used := make(map[string]bool, len(rows))
	for _, r := range rows {
		used[r["id"]] = true
	}
	for i := 0; i < idGenAttempts; i++ {
		id := util.RandomCode(idLength)
		if !used[id] {
			return id, nil
		}
		s.log.Warn("generated id collided, retrying", "table", table, "id", id)
	}
	return "", fmt.Errorf("could not generate a unique id for %s", table)
}

func (s *Store) cached(table string) ([]models.Row, bool) {
	if s.cache == nil {
		return nil, false
	}
	rows, ok := s.cache.Get(table)
	if !ok {
		return nil, false
	}
	return copyRows(rows), true
}

func (s *Store) invalidate(table string) {
	if s.cache != nil {
		s.cache.Remove(table)
	}
}

// unknownColumns lists the keys of fields found neither in the live header
// nor in expected.
func unknownColumns(st *tableState, expected []string, fields models.Row) []string {
	var out []string
	for k := range fields {
		if st.index(k) < 0 && !slices.Contains(expected, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func copyRows(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, r := range rows {
		c := make(models.Row, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}
