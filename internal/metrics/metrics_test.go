package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"sportsreg/internal/tabular"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "not_found", outcome(fmt.Errorf("x: %w", tabular.ErrNotFound)))
	assert.Equal(t, "unavailable", outcome(fmt.Errorf("x: %w", tabular.ErrBackendUnavailable)))
	assert.Equal(t, "error", outcome(errors.New("other")))
}

func TestObserveCounts(t *testing.T) {
	c := storeOps.WithLabelValues("metrics_test", "insert", "ok")
	before := testutil.ToFloat64(c)
	Observe("metrics_test", "insert", time.Now(), nil)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
