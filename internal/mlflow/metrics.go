package mlflow

import (
	"context"
	"fmt"
	"time"

	"github.com/databricks/databricks-sdk-go/service/ml"

	"github.com/mlpipe/mlpipe/internal/models"
)

func (c *Client) LogMetric(ctx context.Context, runID string, key string, value float64, timestamp *time.Time, step *int64) error {
	logMetric := ml.LogMetric{
		RunId: runID,
		Key:   key,
		Value: value,
	}

	if timestamp != nil {
		logMetric.Timestamp = timestamp.UnixMilli()
	} else {
		logMetric.Timestamp = time.Now().UnixMilli()
	}

	if step != nil {
		logMetric.Step = *step
	}

	err := c.client.Experiments.LogMetric(ctx, logMetric)
	if err != nil {
		return fmt.Errorf("failed to log metric %s: %w", key, err)
	}

	return nil
}

func (c *Client) LogMetrics(ctx context.Context, runID string, metrics []models.Metric) error {
	for _, metric := range metrics {
		if err := c.LogMetric(ctx, runID, metric.Key, metric.Value, &metric.Timestamp, &metric.Step); err != nil {
			return err
		}
	}

	return nil
}

// LogSeries logs one metric key with a value per step, step indices
// starting at zero. Used for per-boosting-round training curves.
func (c *Client) LogSeries(ctx context.Context, runID string, key string, values []float64) error {
	return c.LogMetrics(ctx, runID, seriesMetrics(key, values, time.Now()))
}

// seriesMetrics expands a value curve into step-indexed metric points
// sharing one timestamp.
func seriesMetrics(key string, values []float64, now time.Time) []models.Metric {
	metrics := make([]models.Metric, 0, len(values))
	for i, value := range values {
		metrics = append(metrics, models.Metric{
			Key:       key,
			Value:     value,
			Timestamp: now,
			Step:      int64(i),
		})
	}
	return metrics
}
