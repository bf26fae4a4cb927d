package store

import (
	"context"
	"errors"
	"fmt"

	"sportsreg/internal/tabular"
)

type tableState struct {
	handle tabular.Handle
	header []string
}

func (t *tableState) index(col string) int {
	for i, c := range t.header {
		if c == col {
			return i
		}
	}
	return -1
}

// OpenOrCreateTable makes sure the table exists and its header holds every
// expected column. Missing columns are appended after the existing ones;
// existing columns and data rows are never touched. Running it again on a
// synchronized table writes nothing.
func (s *Store) OpenOrCreateTable(ctx context.Context, name string) (tabular.Handle, error) {
	st, err := s.syncTable(ctx, name)
	if err != nil {
		return tabular.Handle{}, err
	}
	return st.handle, nil
}

// Open synchronizes every known table.
func (s *Store) Open(ctx context.Context) error {
	for _, name := range tableOrder {
		if _, err := s.syncTable(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) syncTable(ctx context.Context, name string) (*tableState, error) {
	expected, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", name)
	}

	h, err := s.backend.OpenTable(ctx, name)
	if errors.Is(err, tabular.ErrNotFound) {
		h, err = s.backend.CreateTable(ctx, name, expected)
		if err != nil {
			return nil, fmt.Errorf("create table %s: %w", name, err)
		}
		s.log.Info("table created", "table", name, "columns", len(expected))
		st := &tableState{handle: h, header: append([]string(nil), expected...)}
		s.setState(name, st)
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", name, err)
	}

	header, err := s.backend.ReadHeader(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", name, err)
	}
	live, complete := s.appendMissing(ctx, h, header, expected)
	st := &tableState{handle: h, header: live}
	// A partially synced table is synced again on next use.
	if complete {
		s.setState(name, st)
	}
	return st, nil
}

// appendMissing writes each absent expected column at the end of the header.
// A failed write is logged and skipped; reads back-fill the column anyway.
// complete is false when some expected column is still missing.
func (s *Store) appendMissing(ctx context.Context, h tabular.Handle, header, expected []string) (live []string, complete bool) {
	present := make(map[string]bool, len(header))
	for _, c := range header {
		present[c] = true
	}
	live = append([]string(nil), header...)
	complete = true
	added := 0
	for _, col := range expected {
		if present[col] {
			continue
		}
		if err := s.backend.WriteHeaderCell(ctx, h, len(live), col); err != nil {
			s.log.Warn("schema sync: append column failed", "table", h.Name, "column", col, "error", err)
			complete = false
			break
		}
		live = append(live, col)
		present[col] = true
		added++
	}
	if added > 0 {
		s.log.Info("schema sync: columns appended", "table", h.Name, "added", added)
		s.invalidate(h.Name)
	}
	return live, complete
}

func (s *Store) setState(name string, st *tableState) {
	s.mu.Lock()
	s.tables[name] = st
	s.mu.Unlock()
}

// table returns the synchronized state, syncing on first use.
func (s *Store) table(ctx context.Context, name string) (*tableState, error) {
	s.mu.Lock()
	st, ok := s.tables[name]
	s.mu.Unlock()
	if ok {
		return st, nil
	}
	return s.syncTable(ctx, name)
}
