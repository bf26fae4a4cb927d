package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportsreg/internal/tabular"
)

func TestBackendLifecycle(t *testing.T) {
	ctx := context.Background()
	b := New()

	_, err := b.OpenTable(ctx, "units")
	require.ErrorIs(t, err, tabular.ErrNotFound)

	h, err := b.CreateTable(ctx, "units", []string{"id", "name"})
	require.NoError(t, err)

	require.NoError(t, b.AppendRow(ctx, h, []string{"A", "10A1"}))
	require.NoError(t, b.AppendRow(ctx, h, []string{"B", "10A2"}))

	pos, err := b.FindRowByValue(ctx, h, 0, "B")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	require.NoError(t, b.WriteCell(ctx, h, pos, 3, "x"))
	rows, err := b.ReadAllRows(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "10A2", "", "x"}, rows[1])

	require.NoError(t, b.DeleteRow(ctx, h, 0))
	rows, err = b.ReadAllRows(ctx, h)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0][0])

	_, err = b.FindRowByValue(ctx, h, 0, "A")
	assert.ErrorIs(t, err, tabular.ErrNotFound)
}

func TestBackendUnavailable(t *testing.T) {
	ctx := context.Background()
	b := New()
	h, err := b.CreateTable(ctx, "config", []string{"key", "value"})
	require.NoError(t, err)

	b.SetUnavailable(true)
	_, err = b.ReadAllRows(ctx, h)
	assert.True(t, errors.Is(err, tabular.ErrBackendUnavailable))

	b.SetUnavailable(false)
	_, err = b.ReadAllRows(ctx, h)
	assert.NoError(t, err)
}

func TestSeedAndSnapshotAreCopies(t *testing.T) {
	b := New()
	rows := [][]string{{"1", "a"}}
	b.Seed("t", []string{"id", "v"}, rows)
	rows[0][1] = "mutated"

	_, got, ok := b.Snapshot("t")
	require.True(t, ok)
	assert.Equal(t, "a", got[0][1])
}
