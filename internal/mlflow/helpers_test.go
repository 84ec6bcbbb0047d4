package mlflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlpipe/mlpipe/internal/models"
)

func TestSeriesMetrics(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	metrics := seriesMetrics("train_rmse", []float64{1.0, 0.8, 0.6}, now)
	require.Len(t, metrics, 3)

	for i, m := range metrics {
		assert.Equal(t, "train_rmse", m.Key)
		assert.Equal(t, int64(i), m.Step)
		assert.Equal(t, now, m.Timestamp)
	}
	assert.Equal(t, []float64{1.0, 0.8, 0.6}, []float64{metrics[0].Value, metrics[1].Value, metrics[2].Value})

	assert.Empty(t, seriesMetrics("train_rmse", nil, now))
}

func TestParamList(t *testing.T) {
	params := map[string]string{
		"rounds":        "50",
		"learning_rate": "0.1",
		"max_depth":     "5",
	}

	list := paramList(params)
	assert.Equal(t, []models.Parameter{
		{Key: "learning_rate", Value: "0.1"},
		{Key: "max_depth", Value: "5"},
		{Key: "rounds", Value: "50"},
	}, list)

	// Every entry round-trips unchanged.
	for _, p := range list {
		assert.Equal(t, params[p.Key], p.Value)
	}

	assert.Empty(t, paramList(nil))
}
