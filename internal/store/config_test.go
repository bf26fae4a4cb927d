package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetIsUpsert(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, time.Minute)
	cfg := s.Config()

	_, ok, err := cfg.Get(ctx, KeyDeadline)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cfg.Set(ctx, KeyDeadline, "2099-01-01"))
	v, ok, err := cfg.Get(ctx, KeyDeadline)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2099-01-01", v)

	require.NoError(t, cfg.Set(ctx, KeyDeadline, "2099-06-30"))
	v, _, err = cfg.Get(ctx, KeyDeadline)
	require.NoError(t, err)
	assert.Equal(t, "2099-06-30", v)

	_, rows, _ := b.Snapshot(TableConfig)
	count := 0
	for _, r := range rows {
		if r[0] == KeyDeadline {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestConfigAll(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, 0)
	cfg := s.Config()

	require.NoError(t, cfg.Set(ctx, KeyTournamentName, "Hội khỏe Phù Đổng"))
	require.NoError(t, cfg.Set(ctx, KeyDeadline, "2099-01-01"))

	all, err := cfg.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, KeyTournamentName, all[0].Key)
	assert.Equal(t, "Hội khỏe Phù Đổng", all[0].Value)
}

func TestConfigSetEmptyKey(t *testing.T) {
	s, _ := newTestStore(t, 0)
	assert.Error(t, s.Config().Set(context.Background(), "", "x"))
}

func TestConfigOnReorderedHeader(t *testing.T) {
	ctx := context.Background()
	s, b := newTestStore(t, 0)
	b.Seed(TableConfig, []string{"value", "key"}, [][]string{{"Old name", KeyTournamentName}})

	require.NoError(t, s.Config().Set(ctx, KeyTournamentName, "New name"))
	_, rows, _ := b.Snapshot(TableConfig)
	assert.Equal(t, [][]string{{"New name", KeyTournamentName}}, rows)
}
