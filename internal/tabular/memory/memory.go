// Package memory is an in-process tabular backend for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sportsreg/internal/tabular"
)

type table struct {
	id     int64
	header []string
	rows   [][]string
}

type Backend struct {
	mu     sync.Mutex
	nextID int64
	tables map[string]*table
	down   bool
}

func New() *Backend {
	return &Backend{tables: map[string]*table{}}
}

var _ tabular.Backend = (*Backend)(nil)

// SetUnavailable makes every call fail with ErrBackendUnavailable.
func (b *Backend) SetUnavailable(down bool) {
	b.mu.Lock()
	b.down = down
	b.mu.Unlock()
}

// Seed replaces a table wholesale, bypassing schema handling. Rows may be
// ragged.
func (b *Backend) Seed(name string, header []string, rows [][]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tables[name]
	if !ok {
		b.nextID++
		t = &table{id: b.nextID}
		b.tables[name] = t
	}
	t.header = append([]string(nil), header...)
	t.rows = nil
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
	}
}

// Snapshot returns copies of a table's header and rows.
func (b *Backend) Snapshot(name string) ([]string, [][]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tables[name]
	if !ok {
		return nil, nil, false
	}
	rows := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rows[i] = append([]string(nil), r...)
	}
	return append([]string(nil), t.header...), rows, true
}

func (b *Backend) lookup(h tabular.Handle) (*table, error) {
	if b.down {
		return nil, tabular.ErrBackendUnavailable
	}
	t, ok := b.tables[h.Name]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", h.Name, tabular.ErrNotFound)
	}
	return t, nil
}

func (b *Backend) OpenTable(ctx context.Context, name string) (tabular.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(tabular.Handle{Name: name})
	if err != nil {
		return tabular.Handle{}, err
	}
	return tabular.Handle{Name: name, ID: t.id}, nil
}

func (b *Backend) CreateTable(ctx context.Context, name string, header []string) (tabular.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.down {
		return tabular.Handle{}, tabular.ErrBackendUnavailable
	}
	if _, ok := b.tables[name]; ok {
		return tabular.Handle{}, fmt.Errorf("table %s already exists", name)
	}
	b.nextID++
	b.tables[name] = &table{id: b.nextID, header: append([]string(nil), header...)}
	return tabular.Handle{Name: name, ID: b.nextID}, nil
}

func (b *Backend) ReadHeader(ctx context.Context, h tabular.Handle) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), t.header...), nil
}

func (b *Backend) WriteHeaderCell(ctx context.Context, h tabular.Handle, col int, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	t.header = setCell(t.header, col, value)
	return nil
}

func (b *Backend) ReadAllRows(ctx context.Context, h tabular.Handle) ([][]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (b *Backend) AppendRow(ctx context.Context, h tabular.Handle, values []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

func (b *Backend) FindRowByValue(ctx context.Context, h tabular.Handle, col int, value string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return 0, err
	}
	for i, r := range t.rows {
		if col < len(r) && r[col] == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("row %q in %s: %w", value, h.Name, tabular.ErrNotFound)
}

func (b *Backend) WriteCell(ctx context.Context, h tabular.Handle, row, col int, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d in %s: %w", row, h.Name, tabular.ErrNotFound)
	}
	t.rows[row] = setCell(t.rows[row], col, value)
	return nil
}

func (b *Backend) DeleteRow(ctx context.Context, h tabular.Handle, row int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, err := b.lookup(h)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d in %s: %w", row, h.Name, tabular.ErrNotFound)
	}
	t.rows = append(t.rows[:row], t.rows[row+1:]...)
	return nil
}

func setCell(cells []string, col int, value string) []string {
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	return cells
}
