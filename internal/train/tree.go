package train

import "sort"

// Node is one node of a regression tree. Leaves carry the predicted
// value; internal nodes route on feature <= threshold.
type Node struct {
	Feature   int     `yaml:"feature,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty"`
	Value     float64 `yaml:"value"`
	Left      *Node   `yaml:"left,omitempty"`
	Right     *Node   `yaml:"right,omitempty"`
}

const minSplitSamples = 4

func (n *Node) isLeaf() bool { return n.Left == nil && n.Right == nil }

func (n *Node) predict(row []float64) float64 {
	if n.isLeaf() {
		return n.Value
	}
	if row[n.Feature] <= n.Threshold {
		return n.Left.predict(row)
	}
	return n.Right.predict(row)
}

// fitTree grows a depth-limited regression tree on (X, target) by
// greedy variance reduction.
func fitTree(X [][]float64, target []float64, maxDepth int) *Node {
	node := &Node{Value: mean(target)}
	if maxDepth <= 0 || len(target) < minSplitSamples {
		return node
	}

	feature, threshold, ok := bestSplit(X, target)
	if !ok {
		return node
	}

	var leftX, rightX [][]float64
	var leftY, rightY []float64
	for i, row := range X {
		if row[feature] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, target[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, target[i])
		}
	}

	node.Feature = feature
	node.Threshold = threshold
	node.Left = fitTree(leftX, leftY, maxDepth-1)
	node.Right = fitTree(rightX, rightY, maxDepth-1)
	return node
}

// bestSplit scans every feature and every adjacent-value midpoint,
// returning the split with the lowest total squared error. ok is false
// when no split separates the rows.
func bestSplit(X [][]float64, target []float64) (feature int, threshold float64, ok bool) {
	bestErr := sse(target)
	improved := false

	for f := 0; f < len(X[0]); f++ {
		thresholds := candidateThresholds(X, f)
		for _, th := range thresholds {
			var left, right []float64
			for i, row := range X {
				if row[f] <= th {
					left = append(left, target[i])
				} else {
					right = append(right, target[i])
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}
			if err := sse(left) + sse(right); err < bestErr {
				bestErr = err
				feature = f
				threshold = th
				improved = true
			}
		}
	}

	return feature, threshold, improved
}

func candidateThresholds(X [][]float64, feature int) []float64 {
	seen := make(map[float64]bool)
	var values []float64
	for _, row := range X {
		if !seen[row[feature]] {
			seen[row[feature]] = true
			values = append(values, row[feature])
		}
	}
	if len(values) < 2 {
		return nil
	}

	sort.Float64s(values)
	midpoints := make([]float64, 0, len(values)-1)
	for i := 0; i < len(values)-1; i++ {
		midpoints = append(midpoints, (values[i]+values[i+1])/2)
	}
	return midpoints
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sse(values []float64) float64 {
	m := mean(values)
	var total float64
	for _, v := range values {
		d := v - m
		total += d * d
	}
	return total
}
