package model

import "sort"

// treeNode is one node of a regression tree in the flat node array. Leaves
// carry the predicted value; internal nodes carry the split and child
// indexes.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
	Leaf      bool    `json:"leaf"`
}

// regressionTree is a binary decision tree minimizing squared error, stored
// as a flat node array so it serializes cleanly.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

func (t *regressionTree) predict(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeParams bound the growth of a single tree.
type treeParams struct {
	maxDepth int
	minLeaf  int
}

// growTree fits a regression tree to targets[samples] using only the given
// candidate features. Split gains (sum-of-squares reduction) are accumulated
// into gains, indexed by feature, which later become the model's
// impurity-based importances.
func growTree(X [][]float64, targets []float64, samples []int, candidates []int, p treeParams, gains []float64) *regressionTree {
	t := &regressionTree{}
	t.build(X, targets, samples, candidates, p, gains, 0)
	return t
}

func (t *regressionTree) build(X [][]float64, targets []float64, samples []int, candidates []int, p treeParams, gains []float64, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range samples {
		sum += targets[i]
		sumSq += targets[i] * targets[i]
	}
	n := float64(len(samples))
	mean := sum / n
	sse := sumSq - sum*sum/n

	idx := len(t.Nodes)
	if depth >= p.maxDepth || len(samples) < 2*p.minLeaf || sse <= 1e-12 {
		t.Nodes = append(t.Nodes, treeNode{Leaf: true, Value: mean})
		return idx
	}

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	sorted := make([]int, len(samples))
	for _, f := range candidates {
		copy(sorted, samples)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		leftSum, leftSq := 0.0, 0.0
		for k := 0; k < len(sorted)-1; k++ {
			i := sorted[k]
			leftSum += targets[i]
			leftSq += targets[i] * targets[i]

			// Only split between distinct values with enough mass each side.
			if X[i][f] == X[sorted[k+1]][f] {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			if int(nl) < p.minLeaf || int(nr) < p.minLeaf {
				continue
			}

			rightSum := sum - leftSum
			rightSq := sumSq - leftSq
			sseLeft := leftSq - leftSum*leftSum/nl
			sseRight := rightSq - rightSum*rightSum/nr
			gain := sse - sseLeft - sseRight
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (X[i][f] + X[sorted[k+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		t.Nodes = append(t.Nodes, treeNode{Leaf: true, Value: mean})
		return idx
	}

	gains[bestFeature] += bestGain

	var left, right []int
	for _, i := range samples {
		if X[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// Reserve the node before recursing so child indexes land after it.
	t.Nodes = append(t.Nodes, treeNode{Feature: bestFeature, Threshold: bestThreshold})
	l := t.build(X, targets, left, candidates, p, gains, depth+1)
	r := t.build(X, targets, right, candidates, p, gains, depth+1)
	t.Nodes[idx].Left = l
	t.Nodes[idx].Right = r
	return idx
}
