package train_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlpipe/mlpipe/internal/train"
)

const sampleCSV = `alcohol,acidity,quality
9.4,0.70,5
9.8,0.88,5
9.8,0.76,5
11.2,0.28,6
9.9,0.58,6
10.5,0.32,7
11.0,0.30,7
12.8,0.29,8
9.5,0.66,5
10.2,0.41,6
11.4,0.31,7
12.1,0.27,8
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func defaultParams() train.Params {
	return train.Params{LearningRate: 0.1, MaxDepth: 2, Rounds: 20}
}

func TestLoadCSV(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	assert.Equal(t, []string{"alcohol", "acidity"}, ds.Features)
	assert.Equal(t, 12, ds.Len())
	assert.Equal(t, []float64{9.4, 0.70}, ds.X[0])
	assert.Equal(t, 5.0, ds.Y[0])
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("missing target column", func(t *testing.T) {
		_, err := train.LoadCSV(writeCSV(t, sampleCSV), "price")
		assert.ErrorContains(t, err, "target column price not found")
	})

	t.Run("non-numeric cell", func(t *testing.T) {
		_, err := train.LoadCSV(writeCSV(t, "a,b\n1,\n"), "b")
		assert.ErrorContains(t, err, "is not numeric")
	})
}

func TestSplit(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	trainSet, testSet := ds.Split(0.25, 42)
	assert.Equal(t, 9, trainSet.Len())
	assert.Equal(t, 3, testSet.Len())
	assert.Equal(t, ds.Features, trainSet.Features)

	// Same seed, same split.
	again, _ := ds.Split(0.25, 42)
	assert.Equal(t, trainSet.X, again.X)
}

func TestFitReducesTrainError(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	model, curve, err := train.Fit(ds, defaultParams())
	require.NoError(t, err)
	require.Len(t, curve, 20)

	// Squared-loss boosting on the training set never gets worse.
	for i := 1; i < len(curve); i++ {
		assert.LessOrEqual(t, curve[i], curve[i-1]+1e-9, "round %d", i)
	}
	assert.Less(t, curve[len(curve)-1], curve[0])

	holdout := model.Evaluate(ds)
	assert.Less(t, holdout, 1.0)
}

func TestFitRejectsBadParams(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	for name, params := range map[string]train.Params{
		"zero learning rate": {LearningRate: 0, MaxDepth: 2, Rounds: 5},
		"zero depth":         {LearningRate: 0.1, MaxDepth: 0, Rounds: 5},
		"zero rounds":        {LearningRate: 0.1, MaxDepth: 2, Rounds: 0},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := train.Fit(ds, params)
			assert.Error(t, err)
		})
	}
}

func TestCrossValidate(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	score, err := train.CrossValidate(ds, defaultParams(), 3, 42)
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)

	_, err = train.CrossValidate(ds, defaultParams(), 1, 42)
	assert.ErrorContains(t, err, "at least 2 folds")
}

func TestInferSignature(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	model, _, err := train.Fit(ds, defaultParams())
	require.NoError(t, err)

	sig := model.InferSignature(ds)
	require.Len(t, sig.Inputs, 2)
	assert.Equal(t, "alcohol", sig.Inputs[0].Name)
	assert.Equal(t, "double", sig.Inputs[0].Type)
	assert.Equal(t, "acidity", sig.Inputs[1].Name)
	assert.Equal(t, "double", sig.Output)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ds, err := train.LoadCSV(writeCSV(t, sampleCSV), "quality")
	require.NoError(t, err)

	model, _, err := train.Fit(ds, defaultParams())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, model.Save(dir, model.InferSignature(ds)))

	// Descriptor sits next to the model file.
	descriptor, err := os.ReadFile(filepath.Join(dir, "MLmodel"))
	require.NoError(t, err)
	assert.Contains(t, string(descriptor), train.LoaderID)
	assert.Contains(t, string(descriptor), "alcohol")

	loaded, err := train.Load(dir)
	require.NoError(t, err)

	for _, row := range ds.X {
		assert.InDelta(t, model.Predict(row), loaded.Predict(row), 1e-9)
	}
}

func TestPreprocess(t *testing.T) {
	in := writeCSV(t, "alcohol,acidity,quality\n9.4,0.7,5\n9.8,,5\nbad,0.3,6\n10.1,0.4,6\n")
	out := filepath.Join(t.TempDir(), "clean.csv")

	kept, dropped, err := train.Preprocess(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, kept)
	assert.Equal(t, 2, dropped)

	ds, err := train.LoadCSV(out, "quality")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}
