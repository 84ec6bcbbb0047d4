package models

import "time"

type Metric struct {
	Key       string    `json:"key"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Step      int64     `json:"step"`
}

// ScoreReport holds the evaluation results of one training invocation:
// the cross-validated error, the held-out error, and the per-round
// training error curve produced while boosting.
type ScoreReport struct {
	CVScore      float64   `json:"cv_score"`
	HoldoutScore float64   `json:"holdout_score"`
	TrainCurve   []float64 `json:"train_curve,omitempty"`
}
