package train

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mlpipe/mlpipe/internal/models"
)

// LoaderID names the flavor written into MLmodel descriptors so a
// serving process knows which deserializer to use.
const LoaderID = "mlpipe.boosted_trees"

const modelFileName = "model.yaml"

// Params are the boosting hyperparameters.
type Params struct {
	LearningRate float64 `yaml:"learning_rate"`
	MaxDepth     int     `yaml:"max_depth"`
	Rounds       int     `yaml:"rounds"`
}

func (p Params) validate() error {
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], got %g", p.LearningRate)
	}
	if p.MaxDepth < 1 {
		return fmt.Errorf("max depth must be at least 1, got %d", p.MaxDepth)
	}
	if p.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", p.Rounds)
	}
	return nil
}

// Map renders the hyperparameters as strings for run logging.
func (p Params) Map() map[string]string {
	return map[string]string{
		"learning_rate": fmt.Sprintf("%g", p.LearningRate),
		"max_depth":     fmt.Sprintf("%d", p.MaxDepth),
		"rounds":        fmt.Sprintf("%d", p.Rounds),
	}
}

// Model is a gradient-boosted ensemble of depth-limited regression
// trees fit with squared loss.
type Model struct {
	Params   Params   `yaml:"params"`
	Base     float64  `yaml:"base"`
	Features []string `yaml:"features"`
	Trees    []*Node  `yaml:"trees"`
}

// Fit trains a model on the dataset and returns it with the per-round
// training RMSE curve (one point per boosting round).
func Fit(ds *Dataset, params Params) (*Model, []float64, error) {
	if err := params.validate(); err != nil {
		return nil, nil, err
	}
	if ds.Len() == 0 {
		return nil, nil, fmt.Errorf("empty dataset")
	}

	model := &Model{
		Params:   params,
		Base:     mean(ds.Y),
		Features: ds.Features,
	}

	pred := make([]float64, ds.Len())
	for i := range pred {
		pred[i] = model.Base
	}

	curve := make([]float64, 0, params.Rounds)
	residual := make([]float64, ds.Len())
	for round := 0; round < params.Rounds; round++ {
		for i := range residual {
			residual[i] = ds.Y[i] - pred[i]
		}

		tree := fitTree(ds.X, residual, params.MaxDepth)
		model.Trees = append(model.Trees, tree)

		for i, row := range ds.X {
			pred[i] += params.LearningRate * tree.predict(row)
		}
		curve = append(curve, rmse(pred, ds.Y))
	}

	return model, curve, nil
}

// Predict scores one feature row, which must follow the training
// column order.
func (m *Model) Predict(row []float64) float64 {
	out := m.Base
	for _, tree := range m.Trees {
		out += m.Params.LearningRate * tree.predict(row)
	}
	return out
}

// Evaluate returns the RMSE of the model on a dataset.
func (m *Model) Evaluate(ds *Dataset) float64 {
	pred := make([]float64, ds.Len())
	for i, row := range ds.X {
		pred[i] = m.Predict(row)
	}
	return rmse(pred, ds.Y)
}

// CrossValidate fits one model per fold on the remaining folds and
// returns the mean validation RMSE.
func CrossValidate(ds *Dataset, params Params, k int, seed int64) (float64, error) {
	if k < 2 {
		return 0, fmt.Errorf("cross-validation needs at least 2 folds, got %d", k)
	}
	if ds.Len() < k {
		return 0, fmt.Errorf("dataset has %d rows, fewer than %d folds", ds.Len(), k)
	}

	folds := ds.folds(k, seed)
	var total float64
	for held := 0; held < k; held++ {
		var trainIdx []int
		for f, indices := range folds {
			if f != held {
				trainIdx = append(trainIdx, indices...)
			}
		}

		model, _, err := Fit(ds.subset(trainIdx), params)
		if err != nil {
			return 0, err
		}
		total += model.Evaluate(ds.subset(folds[held]))
	}

	return total / float64(k), nil
}

// InferSignature derives the model signature from the training feature
// matrix and a sample prediction: every input column is a double, and
// the output type follows the prediction value.
func (m *Model) InferSignature(ds *Dataset) models.Signature {
	inputs := make([]models.Field, 0, len(ds.Features))
	for _, name := range ds.Features {
		inputs = append(inputs, models.Field{Name: name, Type: "double"})
	}

	output := "double"
	if ds.Len() > 0 {
		// A sample prediction confirms the output is a finite scalar.
		if v := m.Predict(ds.X[0]); math.IsNaN(v) || math.IsInf(v, 0) {
			output = "unknown"
		}
	}

	return models.Signature{Inputs: inputs, Output: output}
}

// Save serializes the model into dir: the model file itself plus an
// MLmodel descriptor carrying the signature and loader identifier. The
// directory is created if needed and is suitable for attaching to a
// run as its model artifact.
func (m *Model) Save(dir string, sig models.Signature) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory %s: %w", dir, err)
	}

	modelData, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, modelFileName), modelData, 0o644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}

	descriptor := models.ModelDescriptor{
		ArtifactPath: "model",
		Loader:       LoaderID,
		ModelFile:    modelFileName,
		Environment:  "system",
		Signature:    &sig,
	}
	descriptorData, err := yaml.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("failed to serialize MLmodel descriptor: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "MLmodel"), descriptorData, 0o644); err != nil {
		return fmt.Errorf("failed to write MLmodel descriptor: %w", err)
	}

	return nil
}

// Load reads a model serialized by Save.
func Load(dir string) (*Model, error) {
	data, err := os.ReadFile(filepath.Join(dir, modelFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}
	return &m, nil
}

func rmse(pred, actual []float64) float64 {
	var total float64
	for i := range pred {
		d := pred[i] - actual[i]
		total += d * d
	}
	return math.Sqrt(total / float64(len(pred)))
}
