package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sportsreg/internal/metrics"
	"sportsreg/internal/models"
	"sportsreg/internal/tabular"
)

// Well-known config keys.
const (
	KeyTournamentName = "tournament_name"
	KeyDeadline       = "deadline"
)

// ConfigStore is the key/value view of the config table. Keys are unique;
// Set updates the existing row or appends one.
type ConfigStore struct {
	s *Store
}

func (s *Store) Config() *ConfigStore {
	return &ConfigStore{s: s}
}

func (c *ConfigStore) Get(ctx context.Context, key string) (string, bool, error) {
	rows, err := c.s.List(ctx, TableConfig)
	if err != nil {
		return "", false, err
	}
	for _, r := range rows {
		if r["key"] == key {
			return r["value"], true, nil
		}
	}
	return "", false, nil
}

func (c *ConfigStore) All(ctx context.Context) ([]models.ConfigEntry, error) {
	rows, err := c.s.List(ctx, TableConfig)
	if err != nil {
		return nil, err
	}
	out := make([]models.ConfigEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ConfigEntry{Key: r["key"], Value: r["value"]})
	}
	return out, nil
}

func (c *ConfigStore) Set(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() { metrics.Observe(TableConfig, "set", start, err) }()

	if key == "" {
		return fmt.Errorf("config key is empty")
	}
	st, err := c.s.table(ctx, TableConfig)
	if err != nil {
		return err
	}
	keyCol, valueCol := st.index("key"), st.index("value")
	if keyCol < 0 || valueCol < 0 {
		return fmt.Errorf("config table header %v lacks key/value", st.header)
	}
	defer c.s.invalidate(TableConfig)

	pos, err := c.s.backend.FindRowByValue(ctx, st.handle, keyCol, key)
	switch {
	case err == nil:
		if err := c.s.backend.WriteCell(ctx, st.handle, pos, valueCol, value); err != nil {
			return fmt.Errorf("set config %s: %w", key, err)
		}
		return nil
	case errors.Is(err, tabular.ErrNotFound):
		values := make([]string, len(st.header))
		values[keyCol] = key
		values[valueCol] = value
		if err := c.s.backend.AppendRow(ctx, st.handle, values); err != nil {
			return fmt.Errorf("set config %s: %w", key, err)
		}
		return nil
	default:
		return fmt.Errorf("set config %s: %w", key, err)
	}
}
