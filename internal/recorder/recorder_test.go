package recorder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlpipe/mlpipe/internal/models"
	"github.com/mlpipe/mlpipe/internal/recorder"
)

// fakeTracker stores everything logged against it, keyed by run ID, so
// tests can assert the round-trip.
type fakeTracker struct {
	nextRunID string

	params   map[string]string
	metrics  map[string][]float64
	tags     map[string]string
	uploads  []string
	statuses []models.RunStatus

	failLogParams bool
	failUpdate    bool
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		nextRunID: "run-1",
		params:    make(map[string]string),
		metrics:   make(map[string][]float64),
		tags:      make(map[string]string),
	}
}

func (f *fakeTracker) CreateRun(ctx context.Context, config *models.RunConfig) (*models.RunInfo, error) {
	return &models.RunInfo{
		RunID:        f.nextRunID,
		ExperimentID: *config.ExperimentID,
		Status:       string(models.RunStatusRunning),
	}, nil
}

func (f *fakeTracker) UpdateRun(ctx context.Context, runID string, status models.RunStatus) error {
	if f.failUpdate {
		return errors.New("tracking store unavailable")
	}
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeTracker) SetTag(ctx context.Context, runID, key, value string) error {
	f.tags[key] = value
	return nil
}

func (f *fakeTracker) LogParamsFromMap(ctx context.Context, runID string, params map[string]string) error {
	if f.failLogParams {
		return errors.New("tracking store unavailable")
	}
	for k, v := range params {
		f.params[k] = v
	}
	return nil
}

func (f *fakeTracker) LogMetric(ctx context.Context, runID string, key string, value float64, timestamp *time.Time, step *int64) error {
	f.metrics[key] = append(f.metrics[key], value)
	return nil
}

func (f *fakeTracker) LogSeries(ctx context.Context, runID string, key string, values []float64) error {
	f.metrics[key] = append(f.metrics[key], values...)
	return nil
}

func (f *fakeTracker) UploadDir(ctx context.Context, runID, localDir, artifactRoot string) error {
	f.uploads = append(f.uploads, localDir+"=>"+artifactRoot)
	return nil
}

func sampleSpec() recorder.RunSpec {
	return recorder.RunSpec{
		Name: "train-1",
		Params: map[string]string{
			"learning_rate": "0.1",
			"max_depth":     "5",
			"rounds":        "50",
		},
		Scores: models.ScoreReport{
			CVScore:      0.71,
			HoldoutScore: 0.68,
			TrainCurve:   []float64{1.0, 0.8, 0.6},
		},
		Features: []string{"alcohol", "acidity"},
		ModelDir: "/tmp/model",
	}
}

func TestRecord(t *testing.T) {
	tracker := newFakeTracker()
	rec := recorder.New(tracker, hclog.NewNullLogger(), "7")

	info, err := rec.Record(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.Equal(t, "run-1", info.RunID)

	// Parameters round-trip unchanged.
	assert.Equal(t, sampleSpec().Params, tracker.params)

	assert.Equal(t, []float64{0.71}, tracker.metrics[recorder.MetricCV])
	assert.Equal(t, []float64{0.68}, tracker.metrics[recorder.MetricHoldout])
	assert.Equal(t, []float64{1.0, 0.8, 0.6}, tracker.metrics[recorder.MetricTrain])

	assert.Equal(t, "alcohol,acidity", tracker.tags[recorder.TagFeatures])
	assert.Equal(t, []string{"/tmp/model=>model"}, tracker.uploads)
	assert.Equal(t, []models.RunStatus{models.RunStatusFinished}, tracker.statuses)
}

func TestRecordMarksRunFailed(t *testing.T) {
	tracker := newFakeTracker()
	tracker.failLogParams = true
	rec := recorder.New(tracker, hclog.NewNullLogger(), "7")

	_, err := rec.Record(context.Background(), sampleSpec())
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to log parameters")

	assert.Equal(t, []models.RunStatus{models.RunStatusFailed}, tracker.statuses)
	assert.Empty(t, tracker.uploads)
}

func TestRecordFinalizeFailure(t *testing.T) {
	tracker := newFakeTracker()
	tracker.failUpdate = true
	rec := recorder.New(tracker, hclog.NewNullLogger(), "7")

	_, err := rec.Record(context.Background(), sampleSpec())
	assert.ErrorContains(t, err, "failed to finalize run")
}
