package train

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Dataset is a numeric feature matrix with a target column. Rows are
// kept in file order until Split shuffles them.
type Dataset struct {
	Features []string
	X        [][]float64
	Y        []float64
}

// LoadCSV reads a headered CSV file, taking the named column as the
// target and every other column as a numeric feature. A row with any
// unparsable cell is an error; run preprocess first to drop them.
func LoadCSV(path, target string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := records[0]
	targetIdx := -1
	var features []string
	for i, name := range header {
		if strings.TrimSpace(name) == target {
			targetIdx = i
		} else {
			features = append(features, strings.TrimSpace(name))
		}
	}
	if targetIdx == -1 {
		return nil, fmt.Errorf("target column %s not found in %s", target, path)
	}

	ds := &Dataset{Features: features}
	for rowNum, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", rowNum+2, len(header), len(record))
		}

		row := make([]float64, 0, len(features))
		var y float64
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %q is not numeric", rowNum+2, header[i], cell)
			}
			if i == targetIdx {
				y = v
			} else {
				row = append(row, v)
			}
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, y)
	}

	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Y) }

// Split shuffles the rows with the given seed and carves off the last
// holdout fraction as the test set.
func (d *Dataset) Split(holdout float64, seed int64) (train, test *Dataset) {
	n := d.Len()
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	testSize := int(float64(n) * holdout)
	if testSize < 1 {
		testSize = 1
	}
	trainSize := n - testSize

	train = &Dataset{Features: d.Features}
	test = &Dataset{Features: d.Features}
	for i, idx := range perm {
		if i < trainSize {
			train.X = append(train.X, d.X[idx])
			train.Y = append(train.Y, d.Y[idx])
		} else {
			test.X = append(test.X, d.X[idx])
			test.Y = append(test.Y, d.Y[idx])
		}
	}
	return train, test
}

// folds partitions row indices into k contiguous folds after a seeded
// shuffle, for cross-validation.
func (d *Dataset) folds(k int, seed int64) [][]int {
	perm := rand.New(rand.NewSource(seed)).Perm(d.Len())
	out := make([][]int, k)
	for i, idx := range perm {
		out[i%k] = append(out[i%k], idx)
	}
	return out
}

// subset returns the rows at the given indices.
func (d *Dataset) subset(indices []int) *Dataset {
	out := &Dataset{Features: d.Features}
	for _, idx := range indices {
		out.X = append(out.X, d.X[idx])
		out.Y = append(out.Y, d.Y[idx])
	}
	return out
}
